package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/pra2107tham/Reeva/internal/repository"
	"github.com/pra2107tham/Reeva/internal/service"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

type LinkHandler struct {
	ts service.TokenService
	pr repository.ProfileRepository
}

func NewLinkHandler(ts service.TokenService, pr repository.ProfileRepository) *LinkHandler {
	return &LinkHandler{ts: ts, pr: pr}
}

// LinkAccount consumes a verification token for the signed-in user and binds
// the Instagram profile to their account. Runs behind the session
// middleware, so user identity is already established.
func (h *LinkHandler) LinkAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if req.Token == "" || req.IGID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token and ig_id are required",
		})
	}

	if err := h.ts.Consume(c.Context(), req.Token, req.IGID); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid or already used token",
			})
		case errors.Is(err, service.ErrTokenExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Token expired",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unable to verify token",
			})
		}
	}

	if err := h.pr.Link(c.Context(), req.IGID, userID); err != nil {
		if errors.Is(err, repository.ErrProfileLinkConflict) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Profile is already linked",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to link account",
		})
	}

	slog.Info("instagram profile linked", "ig_id", req.IGID, "user_id", userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account linked successfully",
	})
}
