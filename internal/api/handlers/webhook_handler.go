package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/internal/queue"
	"github.com/pra2107tham/Reeva/internal/service"
)

type WebhookHandler struct {
	cfg         config.Config
	AsynqClient *asynq.Client
	archive     service.ArchiveService
}

func NewWebhookHandler(cfg config.Config, asynqClient *asynq.Client, archive service.ArchiveService) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, AsynqClient: asynqClient, archive: archive}
}

// Verify answers the platform's subscription handshake.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.cfg.WebhookVerifyToken {
		slog.Info("webhook verification successful")
		return c.SendString(challenge)
	}

	slog.Info("webhook verification failed", "mode", mode)
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Verification failed",
	})
}

// Receive ingests a webhook delivery: authenticate the sender, archive the
// raw body, decode, and publish every event to the queue. The response is
// 200 no matter how processing went — a non-200 makes the platform retry
// the whole delivery, which only multiplies duplicates.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if h.cfg.InstagramAppSecret != "" {
		if !verifySignature(h.cfg.InstagramAppSecret, body, c.Get("X-Hub-Signature-256")) {
			slog.Info("webhook signature mismatch")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}
	}

	if h.archive != nil {
		if err := h.archive.SavePayload(c.Context(), body); err != nil {
			slog.Info("payload archive failed", "error", err.Error())
		}
	}

	events := service.ParseWebhookEvents(body)
	if len(events) > 0 {
		queue.EnqueueEvents(c.Context(), h.AsynqClient, events)
	}

	return c.Status(fiber.StatusOK).SendString("OK")
}

// verifySignature checks an X-Hub-Signature-256 header ("sha256=<hexdigest>")
// against the HMAC of the body.
func verifySignature(secret string, body []byte, sigHeader string) bool {
	if len(sigHeader) < 8 || sigHeader[:7] != "sha256=" {
		return false
	}
	provided := sigHeader[7:]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(provided), []byte(expected))
}
