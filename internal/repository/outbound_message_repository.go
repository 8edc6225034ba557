package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/models"
)

type OutboundMessageRepository interface {
	Create(ctx context.Context, m *models.OutboundMessage) error
	RecordAttempt(ctx context.Context, id string, attempts int, status, errText string) error
	MarkSent(ctx context.Context, id string, attempts int, remoteMessageID string) error
	GetByID(ctx context.Context, id string) (*models.OutboundMessage, bool, error)
}

type outboundMessageRepository struct {
	db *sql.DB
}

func NewOutboundMessageRepository(db *sql.DB) OutboundMessageRepository {
	return &outboundMessageRepository{db: db}
}

func (r *outboundMessageRepository) Create(ctx context.Context, m *models.OutboundMessage) error {
	query := `
		INSERT INTO outbound_messages (id, recipient_ig_id, kind, payload, status, attempts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.RecipientIGID, m.Kind, m.Payload, m.Status, m.Attempts)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *outboundMessageRepository) RecordAttempt(ctx context.Context, id string, attempts int, status, errText string) error {
	query := `
		UPDATE outbound_messages
		SET attempts = $2,
			status = $3,
			error_message = NULLIF($4, ''),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, attempts, status, errText)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *outboundMessageRepository) MarkSent(ctx context.Context, id string, attempts int, remoteMessageID string) error {
	query := `
		UPDATE outbound_messages
		SET status = $2,
			attempts = $3,
			remote_message_id = $4,
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, models.OutboundStatusSent, attempts, remoteMessageID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *outboundMessageRepository) GetByID(ctx context.Context, id string) (*models.OutboundMessage, bool, error) {
	var m models.OutboundMessage
	query := `
		SELECT id, recipient_ig_id, kind, payload, status, attempts, remote_message_id, error_message, created_at, updated_at
		FROM outbound_messages WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.RecipientIGID, &m.Kind, &m.Payload, &m.Status, &m.Attempts,
			&m.RemoteMessageID, &m.ErrorMessage, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &m, true, nil
}
