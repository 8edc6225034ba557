package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

type stubIngestService struct {
	err     error
	handled int
}

func (s *stubIngestService) HandleEvent(ctx context.Context, event transfer.MessagingEvent) error {
	s.handled++
	return s.err
}

func ingestTask(t *testing.T, ev transfer.MessagingEvent) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return asynq.NewTask(TaskTypeIngestEvent, payload)
}

func validIngestEvent() transfer.MessagingEvent {
	return transfer.MessagingEvent{
		MID:           "M1",
		SenderIGID:    "U1",
		RecipientIGID: "P1",
		Timestamp:     "1700000000000",
	}
}

func TestHandleIngestTask_Success(t *testing.T) {
	svc := &stubIngestService{}
	q := NewQueue(svc)

	if err := q.HandleIngestTask(context.Background(), ingestTask(t, validIngestEvent())); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if svc.handled != 1 {
		t.Errorf("handled = %d, want 1", svc.handled)
	}
}

func TestHandleIngestTask_MalformedPayloadSkipsRetry(t *testing.T) {
	svc := &stubIngestService{}
	q := NewQueue(svc)

	err := q.HandleIngestTask(context.Background(), asynq.NewTask(TaskTypeIngestEvent, []byte("not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry", err)
	}
	if svc.handled != 0 {
		t.Error("malformed payload must not reach the orchestrator")
	}
}

func TestHandleIngestTask_InvalidEventSkipsRetry(t *testing.T) {
	svc := &stubIngestService{}
	q := NewQueue(svc)

	for _, mutate := range []func(*transfer.MessagingEvent){
		func(ev *transfer.MessagingEvent) { ev.MID = "" },
		func(ev *transfer.MessagingEvent) { ev.SenderIGID = "" },
		func(ev *transfer.MessagingEvent) { ev.RecipientIGID = "" },
		func(ev *transfer.MessagingEvent) { ev.Timestamp = "" },
	} {
		ev := validIngestEvent()
		mutate(&ev)
		err := q.HandleIngestTask(context.Background(), ingestTask(t, ev))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Errorf("event %+v: err = %v, want SkipRetry", ev, err)
		}
	}
	if svc.handled != 0 {
		t.Error("invalid events must not reach the orchestrator")
	}
}

func TestHandleIngestTask_PermanentFailureSkipsRetry(t *testing.T) {
	svc := &stubIngestService{err: fmt.Errorf("%w: bad recipient", ErrValidation)}
	q := NewQueue(svc)

	err := q.HandleIngestTask(context.Background(), ingestTask(t, validIngestEvent()))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want SkipRetry on a permanent failure", err)
	}
}

func TestHandleIngestTask_RetryableFailureRedelivers(t *testing.T) {
	svc := &stubIngestService{err: fmt.Errorf("message insert: %w", context.DeadlineExceeded)}
	q := NewQueue(svc)

	err := q.HandleIngestTask(context.Background(), ingestTask(t, validIngestEvent()))
	if err == nil {
		t.Fatal("expected an error so the queue redelivers")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, must not be SkipRetry on a retryable failure", err)
	}
}
