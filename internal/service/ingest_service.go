package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	config "github.com/pra2107tham/Reeva/configs"
	"github.com/pra2107tham/Reeva/internal/models"
	"github.com/pra2107tham/Reeva/internal/repository"
	"github.com/pra2107tham/Reeva/internal/transfer"
)

// ProcessSubmitter hands a persisted message off for downstream processing.
// Implementations report whether the hand-off was accepted; they never block
// ingestion with an error.
type ProcessSubmitter interface {
	Submit(ctx context.Context, msg *models.Message, profile *models.InstagramProfile) bool
}

type IngestService interface {
	HandleEvent(ctx context.Context, event transfer.MessagingEvent) error
}

type ingestService struct {
	cfg       config.Config
	pr        repository.ProfileRepository
	mr        repository.MessageRepository
	ts        TokenService
	ds        DeliveryService
	ms        MediaService
	ps        ProfileService
	submitter ProcessSubmitter
}

func NewIngestService(
	cfg config.Config,
	pr repository.ProfileRepository,
	mr repository.MessageRepository,
	ts TokenService,
	ds DeliveryService,
	ms MediaService,
	ps ProfileService,
	submitter ProcessSubmitter) IngestService {
	return &ingestService{
		cfg:       cfg,
		pr:        pr,
		mr:        mr,
		ts:        ts,
		ds:        ds,
		ms:        ms,
		ps:        ps,
		submitter: submitter,
	}
}

// HandleEvent runs the per-event state machine: upsert profile, insert
// message idempotently, then branch on whether the profile is linked to an
// application account. The queue delivers at-least-once, so every step here
// must tolerate replays. Errors from the two mandatory persistence steps
// propagate to the consumer for retry classification; everything after the
// branch point is best-effort per item.
func (s *ingestService) HandleEvent(ctx context.Context, event transfer.MessagingEvent) error {
	profileRow := models.InstagramProfile{IGID: event.SenderIGID}
	if s.ps != nil {
		if info, err := s.ps.FetchDisplay(ctx, event.SenderIGID); err == nil {
			profileRow.Username = info.Username
			profileRow.Name = info.Name
			profileRow.ProfilePicture = info.ProfilePicture
		} else {
			slog.Info("profile display fetch failed", "ig_id", event.SenderIGID, "error", err.Error())
		}
	}

	profile, err := s.pr.Upsert(ctx, &profileRow)
	if err != nil {
		return fmt.Errorf("profile upsert: %w", err)
	}

	var attachments []byte
	if len(event.Attachments) > 0 {
		attachments, err = json.Marshal(event.Attachments)
		if err != nil {
			slog.Info("unable to marshal attachments", "mid", event.MID, "error", err.Error())
			attachments = nil
		}
	}

	msg, created, err := s.mr.InsertIfAbsent(ctx, &models.Message{
		MID:           event.MID,
		SenderIGID:    event.SenderIGID,
		RecipientIGID: event.RecipientIGID,
		MessageText:   sql.NullString{String: event.MessageText, Valid: event.MessageText != ""},
		Attachments:   attachments,
		ReceivedAt:    ParseReceivedAt(event.Timestamp),
	})
	if err != nil {
		return fmt.Errorf("message insert: %w", err)
	}

	if !profile.IsConnected() {
		return s.handleUnverified(ctx, event, created)
	}
	return s.handleVerified(ctx, event, msg, profile, created)
}

// handleUnverified mints a verification token and DMs the account-link URL.
// Redeliveries of an already-stored message do not mint another token or
// send another DM. Notification failures are swallowed: the inbound event is
// already persisted, and the outbound_messages row tracks the failed send.
func (s *ingestService) handleUnverified(ctx context.Context, event transfer.MessagingEvent, created bool) error {
	if !created {
		return nil
	}

	token, err := s.ts.Create(ctx, event.SenderIGID, event.MID)
	if err != nil {
		slog.Error("unable to create verification token", "ig_id", event.SenderIGID, "error", err.Error())
		return nil
	}

	link := fmt.Sprintf("%s/link/instagram?token=%s&ig_id=%s", s.cfg.FrontendURL, token.Plain, event.SenderIGID)
	text := fmt.Sprintf("Hey! To save reels and posts you send here, connect your account first: %s (link valid for 1 hour)", link)

	if _, err := s.ds.SendWithRetry(ctx, event.SenderIGID, text, models.OutboundKindVerification); err != nil {
		slog.Error("verification dm failed", "ig_id", event.SenderIGID, "error", err.Error())
	}
	return nil
}

// handleVerified acknowledges the sender, stores any media, and hands the
// message off downstream. processed flips true only after the hand-off is
// accepted, so a rejected hand-off leaves the message eligible for the next
// redelivery.
func (s *ingestService) handleVerified(ctx context.Context, event transfer.MessagingEvent, msg *models.Message, profile *models.InstagramProfile, created bool) error {
	if created {
		if _, err := s.ds.SendWithRetry(ctx, event.SenderIGID, "Got it! Saving that for you.", models.OutboundKindAcknowledgement); err != nil {
			slog.Error("acknowledgement dm failed", "ig_id", event.SenderIGID, "error", err.Error())
		}
	}

	if msg.Processed {
		return nil
	}

	if err := s.ms.Store(ctx, event, profile); err != nil {
		slog.Info("media store failed", "mid", event.MID, "error", err.Error())
	}

	if !s.submitter.Submit(ctx, msg, profile) {
		slog.Info("downstream hand-off rejected, leaving message unprocessed", "mid", event.MID)
		return nil
	}

	if err := s.mr.MarkProcessed(ctx, event.MID); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}
