package service

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/pra2107tham/Reeva/internal/transfer"
)

// ParseWebhookEvents normalizes a raw webhook body into messaging events.
// It accepts both the dashboard test shape (field/value) and the standard
// object/entry[].messaging[] shape, and silently drops anything it cannot
// interpret: echoes, receipts, entries without a mid.
func ParseWebhookEvents(raw []byte) []transfer.MessagingEvent {
	var probe struct {
		Field  string `json:"field"`
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		slog.Info("webhook payload is not valid json", "error", err.Error())
		return nil
	}

	var events []transfer.MessagingEvent

	if probe.Field != "" {
		var test transfer.WebhookTestPayload
		if err := json.Unmarshal(raw, &test); err != nil {
			slog.Info("unable to decode test-shape payload", "error", err.Error())
			return nil
		}
		if ev, ok := decodeMessaging(test.Value); ok {
			events = append(events, ev)
		}
		return events
	}

	var envelope transfer.WebhookEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		slog.Info("unable to decode webhook envelope", "error", err.Error())
		return nil
	}

	for _, entry := range envelope.Entry {
		for _, mp := range entry.Messaging {
			if ev, ok := decodeMessaging(mp); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

func decodeMessaging(mp transfer.MessagingPayload) (transfer.MessagingEvent, bool) {
	if mp.Message == nil || mp.Message.MID == "" {
		// Delivery/read receipts and other non-content events carry no mid.
		return transfer.MessagingEvent{}, false
	}
	if mp.Message.IsEcho {
		return transfer.MessagingEvent{}, false
	}

	return transfer.MessagingEvent{
		MID:           mp.Message.MID,
		SenderIGID:    mp.Sender.ID,
		RecipientIGID: mp.Recipient.ID,
		Timestamp:     coerceTimestamp(mp.Timestamp),
		MessageText:   mp.Message.Text,
		Attachments:   mp.Message.Attachments,
	}, true
}

// coerceTimestamp turns the platform timestamp, whatever JSON type it arrived
// as, into a decimal string. An absent timestamp falls back to wall-clock
// time; that is a last resort, not something callers should depend on.
func coerceTimestamp(v any) string {
	switch ts := v.(type) {
	case string:
		if ts != "" {
			return ts
		}
	case float64:
		if ts > 0 {
			return strconv.FormatInt(int64(ts), 10)
		}
	case json.Number:
		if ts.String() != "" {
			return ts.String()
		}
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
