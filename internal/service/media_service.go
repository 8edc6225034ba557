package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/models"
	"github.com/pra2107tham/Reeva/internal/repository"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

type MediaService interface {
	Extract(attachments []any) []transfer.MediaAttachment
	Store(ctx context.Context, event transfer.MessagingEvent, profile *models.InstagramProfile) error
}

type mediaService struct {
	mr repository.MediaRepository
}

func NewMediaService(mr repository.MediaRepository) MediaService {
	return &mediaService{mr: mr}
}

// Extract pulls reel and post references out of a raw attachment payload.
// Shares, unknown types, and malformed entries are skipped without error.
func (s *mediaService) Extract(attachments []any) []transfer.MediaAttachment {
	var items []transfer.MediaAttachment

	for _, raw := range attachments {
		att, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		payload, ok := att["payload"].(map[string]any)
		if !ok {
			continue
		}

		attType, _ := att["type"].(string)
		url, _ := payload["url"].(string)
		title, _ := payload["title"].(string)

		switch attType {
		case "ig_reel":
			mediaID, _ := payload["reel_video_id"].(string)
			if mediaID == "" || url == "" {
				continue
			}
			items = append(items, transfer.MediaAttachment{
				MediaType: models.MediaTypeReel,
				MediaID:   mediaID,
				URL:       url,
				Title:     title,
			})
		case "media_share":
			mediaID, _ := payload["media_id"].(string)
			if mediaID == "" || url == "" {
				continue
			}
			items = append(items, transfer.MediaAttachment{
				MediaType: models.MediaTypePost,
				MediaID:   mediaID,
				URL:       url,
				Title:     title,
			})
		}
	}
	return items
}

// Store persists extracted media for a linked profile. Each item is handled
// independently: an existing row is skipped, and losing the uniqueness race
// on insert counts as saved. Unlinked profiles are a no-op.
func (s *mediaService) Store(ctx context.Context, event transfer.MessagingEvent, profile *models.InstagramProfile) error {
	if !profile.IsConnected() {
		return nil
	}
	userID := profile.ConnectedUserID.Int64

	for _, item := range s.Extract(event.Attachments) {
		exists, err := s.mr.Exists(ctx, userID, item.MediaID)
		if err != nil {
			slog.Info("media existence check failed", "media_id", item.MediaID, "error", err.Error())
			continue
		}
		if exists {
			continue
		}

		_, err = s.mr.Create(ctx, &models.SavedMedia{
			UserID:    userID,
			MediaType: item.MediaType,
			MediaID:   item.MediaID,
			URL:       item.URL,
			Title:     sql.NullString{String: item.Title, Valid: item.Title != ""},
		})
		if err != nil && !errors.Is(err, repository.ErrDuplicateMedia) {
			slog.Info("unable to save media", "media_id", item.MediaID, "error", err.Error())
		}
	}
	return nil
}
