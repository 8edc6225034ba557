package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/pra2107tham/Reeva/internal/models"
)

// ProcessorSubmitter implements the downstream hand-off by enqueueing a
// message:process task. The mid-derived task id keeps replays of the same
// message from fanning out into duplicate processing jobs.
type ProcessorSubmitter struct {
	client *asynq.Client
}

func NewProcessSubmitter(client *asynq.Client) *ProcessorSubmitter {
	return &ProcessorSubmitter{client: client}
}

func (s *ProcessorSubmitter) Submit(ctx context.Context, msg *models.Message, profile *models.InstagramProfile) bool {
	payload, err := json.Marshal(ProcessMessagePayload{
		MID:    msg.MID,
		IGID:   profile.IGID,
		UserID: profile.ConnectedUserID.Int64,
	})
	if err != nil {
		slog.Error("unable to marshal process payload", "mid", msg.MID, "error", err.Error())
		return false
	}

	task := asynq.NewTask(TaskTypeProcessMessage, payload,
		asynq.TaskID("process:"+msg.MID),
		asynq.MaxRetry(ingestMaxRetry),
	)

	enqCtx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	_, err = s.client.EnqueueContext(enqCtx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return true
		}
		slog.Error("unable to enqueue process task", "mid", msg.MID, "error", err.Error())
		return false
	}
	return true
}
