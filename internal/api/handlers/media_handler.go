package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pra2107tham/Reeva/internal/repository"
)

type MediaHandler struct {
	mr repository.MediaRepository
}

func NewMediaHandler(mr repository.MediaRepository) *MediaHandler {
	return &MediaHandler{mr: mr}
}

// ListMedia returns the saved media for the signed-in user.
func (h *MediaHandler) ListMedia(c *fiber.Ctx) error {
	userID := GetUserID(c)

	media, err := h.mr.ListByUserID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list saved media",
		})
	}

	return c.Status(fiber.StatusOK).JSON(media)
}
