package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

const (
	TaskTypeIngestEvent    = "ig:ingest_event"
	TaskTypeProcessMessage = "message:process"
)

const (
	// Bound on queue redeliveries of one event, on top of the queue's own
	// backoff schedule.
	ingestMaxRetry = 5
	ingestTimeout  = 2 * time.Minute

	// Client-side enqueue deadline. Must stay well below the platform's
	// webhook response deadline.
	enqueueTimeout = 5 * time.Second
)

// EnqueueEvents publishes every decoded event concurrently and waits for the
// batch to settle. The task id is derived from the mid, so a retried webhook
// delivery collapses into the already-queued task instead of duplicating it.
// Failures are logged and swallowed: the webhook response must acknowledge
// receipt no matter what happened here.
func EnqueueEvents(ctx context.Context, client *asynq.Client, events []transfer.MessagingEvent) {
	var wg sync.WaitGroup

	for _, ev := range events {
		wg.Add(1)
		go func(ev transfer.MessagingEvent) {
			defer wg.Done()

			payload, err := json.Marshal(ev)
			if err != nil {
				slog.Error("unable to marshal event", "mid", ev.MID, "error", err.Error())
				return
			}

			task := asynq.NewTask(TaskTypeIngestEvent, payload,
				asynq.TaskID("ig:event:"+ev.MID),
				asynq.MaxRetry(ingestMaxRetry),
				asynq.Timeout(ingestTimeout),
			)

			enqCtx, cancel := context.WithTimeout(ctx, enqueueTimeout)
			defer cancel()

			_, err = client.EnqueueContext(enqCtx, task)
			if err != nil {
				if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
					slog.Info("event already queued", "mid", ev.MID)
					return
				}
				slog.Error("unable to enqueue event", "mid", ev.MID, "error", err.Error())
			}
		}(ev)
	}

	wg.Wait()
}

type ProcessMessagePayload struct {
	MID    string `json:"mid"`
	IGID   string `json:"ig_id"`
	UserID int64  `json:"user_id"`
}
