package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/pra2107tham/Reeva/configs"
)

type SignatureMiddleware struct {
	cfg config.Config
}

func NewSignatureMiddleware(cfg config.Config) *SignatureMiddleware {
	return &SignatureMiddleware{cfg: cfg}
}

// VerifyQueueSignature authenticates calls from the external push queue.
// The queue signs the body with its current key and rotates to a next key,
// so both are accepted.
func (m *SignatureMiddleware) VerifyQueueSignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Queue-Signature")
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing queue signature",
			})
		}

		body := c.Body()
		if !matchSignature(m.cfg.QueueSigningKey, body, signature) &&
			!matchSignature(m.cfg.QueueNextSigningKey, body, signature) {
			slog.Info("queue signature mismatch")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid queue signature",
			})
		}

		return c.Next()
	}
}

func matchSignature(key string, body []byte, signature string) bool {
	if key == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
