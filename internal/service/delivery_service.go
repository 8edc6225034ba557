package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/internal/models"
	"github.com/pra2107tham/Reeva/internal/repository"
)

const (
	maxSendAttempts = 3
	sendCallTimeout = 10 * time.Second
	maxBackoff      = 10 * time.Second
)

type SendResult struct {
	RemoteMessageID   string
	OutboundMessageID string
}

type DeliveryService interface {
	SendWithRetry(ctx context.Context, igID, text, kind string) (*SendResult, error)
}

type deliveryService struct {
	cfg    config.Config
	om     repository.OutboundMessageRepository
	client *http.Client
}

func NewDeliveryService(cfg config.Config, om repository.OutboundMessageRepository) DeliveryService {
	return &deliveryService{
		cfg:    cfg,
		om:     om,
		client: &http.Client{Timeout: sendCallTimeout},
	}
}

type sendRequest struct {
	Recipient     idRef       `json:"recipient"`
	Message       textMessage `json:"message"`
	MessagingType string      `json:"messaging_type"`
}

type idRef struct {
	ID string `json:"id"`
}

type textMessage struct {
	Text string `json:"text"`
}

// SendWithRetry records an outbound_messages row before the first attempt,
// then tries the platform send up to maxSendAttempts times with capped
// exponential backoff. Every attempt updates the row, so the audit trail
// survives whatever happens to the caller.
func (s *deliveryService) SendWithRetry(ctx context.Context, igID, text, kind string) (*SendResult, error) {
	payload, err := json.Marshal(sendRequest{
		Recipient:     idRef{ID: igID},
		Message:       textMessage{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	err = s.om.Create(ctx, &models.OutboundMessage{
		ID:            id,
		RecipientIGID: igID,
		Kind:          kind,
		Payload:       payload,
		Status:        models.OutboundStatusPending,
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		remoteID, err := s.sendOnce(ctx, payload)
		if err == nil {
			if err := s.om.MarkSent(ctx, id, attempt, remoteID); err != nil {
				slog.Error("unable to mark outbound message sent", "id", id, "error", err.Error())
			}
			return &SendResult{RemoteMessageID: remoteID, OutboundMessageID: id}, nil
		}

		lastErr = err
		slog.Info("outbound send attempt failed", "id", id, "attempt", attempt, "error", err.Error())

		status := models.OutboundStatusPending
		if attempt == maxSendAttempts {
			status = models.OutboundStatusFailed
		}
		if err := s.om.RecordAttempt(ctx, id, attempt, status, lastErr.Error()); err != nil {
			slog.Error("unable to record send attempt", "id", id, "error", err.Error())
		}

		if attempt < maxSendAttempts {
			if err := sleepBackoff(ctx, attempt); err != nil {
				// The request context is done; the audit write gets its own.
				recCtx := context.WithoutCancel(ctx)
				if recErr := s.om.RecordAttempt(recCtx, id, attempt, models.OutboundStatusFailed, err.Error()); recErr != nil {
					slog.Error("unable to record cancelled send", "id", id, "error", recErr.Error())
				}
				return nil, err
			}
		}
	}

	return nil, lastErr
}

func (s *deliveryService) sendOnce(ctx context.Context, payload []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, sendCallTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/messages", s.cfg.GraphAPIBase, s.cfg.PageScopedSenderID)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.PageAccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("error response from Instagram: %s (status code: %d)", body, resp.StatusCode)
	}

	var result struct {
		MessageID string `json:"message_id"`
		ID        string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode send response: %v", err)
	}

	if result.MessageID != "" {
		return result.MessageID, nil
	}
	return result.ID, nil
}

// sleepBackoff waits min(1s * 2^(attempt-1), 10s), bailing out early if the
// context is cancelled.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Second << (attempt - 1)
	if delay > maxBackoff {
		delay = maxBackoff
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
