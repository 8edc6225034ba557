package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

// HandleIngestTask is the queue-consumer entrypoint. Delivery is
// at-least-once, so the orchestrator underneath is idempotent; the only
// decision made here is whether a failure deserves a redelivery.
func (q *Queue) HandleIngestTask(ctx context.Context, task *asynq.Task) error {
	var event transfer.MessagingEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return fmt.Errorf("unmarshal event payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := validateEvent(event); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := q.ig.HandleEvent(ctx, event); err != nil {
		if ClassifyError(err) == SeverityPermanent {
			slog.Error("permanent ingest failure", "mid", event.MID, "error", err.Error())
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		slog.Info("retryable ingest failure", "mid", event.MID, "error", err.Error())
		return err
	}

	return nil
}

// HandleProcessMessageTask receives the downstream hand-off. Full processing
// lives outside this service; the handler just acknowledges the task so the
// pipeline can be exercised end to end.
func (q *Queue) HandleProcessMessageTask(ctx context.Context, task *asynq.Task) error {
	var payload ProcessMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal process payload: %v: %w", err, asynq.SkipRetry)
	}

	slog.Info("message handed off for processing", "mid", payload.MID, "user_id", payload.UserID)
	return nil
}

func validateEvent(event transfer.MessagingEvent) error {
	switch {
	case event.MID == "":
		return fmt.Errorf("%w: missing mid", ErrValidation)
	case event.SenderIGID == "":
		return fmt.Errorf("%w: missing sender_ig_id", ErrValidation)
	case event.RecipientIGID == "":
		return fmt.Errorf("%w: missing recipient_ig_id", ErrValidation)
	case event.Timestamp == "":
		return fmt.Errorf("%w: missing timestamp", ErrValidation)
	}
	return nil
}
