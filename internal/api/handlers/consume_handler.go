package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pra2107tham/Reeva/internal/queue"
	"github.com/pra2107tham/Reeva/internal/service"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

// ConsumeHandler is the push-queue variant of the consumer: an external
// at-least-once queue POSTs one normalized event per call. The response code
// steers redelivery — 200 done, 400 stop retrying, 500 retry later.
type ConsumeHandler struct {
	ig service.IngestService
}

func NewConsumeHandler(ig service.IngestService) *ConsumeHandler {
	return &ConsumeHandler{ig: ig}
}

func (h *ConsumeHandler) Consume(c *fiber.Ctx) error {
	var event transfer.MessagingEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event payload",
		})
	}

	if event.MID == "" || event.SenderIGID == "" || event.RecipientIGID == "" || event.Timestamp == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required event fields",
		})
	}

	if err := h.ig.HandleEvent(c.Context(), event); err != nil {
		if queue.ClassifyError(err) == queue.SeverityPermanent {
			slog.Error("permanent ingest failure", "mid", event.MID, "error", err.Error())
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		slog.Info("retryable ingest failure", "mid", event.MID, "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Event processed",
	})
}
