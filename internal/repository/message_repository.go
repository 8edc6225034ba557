package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/models"
)

type MessageRepository interface {
	InsertIfAbsent(ctx context.Context, m *models.Message) (*models.Message, bool, error)
	GetByMID(ctx context.Context, mid string) (*models.Message, bool, error)
	MarkProcessed(ctx context.Context, mid string) error
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

// InsertIfAbsent inserts the message keyed by its platform mid. On conflict
// the existing row is fetched and returned instead; the bool reports whether
// this call created the row.
func (r *messageRepository) InsertIfAbsent(ctx context.Context, m *models.Message) (*models.Message, bool, error) {
	query := `
		INSERT INTO messages (mid, sender_ig_id, recipient_ig_id, message_text, attachments, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (mid) DO NOTHING
		RETURNING mid, sender_ig_id, recipient_ig_id, message_text, attachments, received_at, processed, created_at
	`

	var out models.Message
	err := r.db.QueryRowContext(ctx, query,
		m.MID, m.SenderIGID, m.RecipientIGID, m.MessageText, m.Attachments, m.ReceivedAt).
		Scan(&out.MID, &out.SenderIGID, &out.RecipientIGID, &out.MessageText,
			&out.Attachments, &out.ReceivedAt, &out.Processed, &out.CreatedAt)
	if err == nil {
		return &out, true, nil
	}
	if err != sql.ErrNoRows {
		slog.Info(err.Error())
		return nil, false, err
	}

	// Conflict path: another delivery won the insert. Return the winner.
	existing, found, err := r.GetByMID(ctx, m.MID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, errors.New("message vanished after insert conflict")
	}
	return existing, false, nil
}

func (r *messageRepository) GetByMID(ctx context.Context, mid string) (*models.Message, bool, error) {
	var m models.Message
	query := `
		SELECT mid, sender_ig_id, recipient_ig_id, message_text, attachments, received_at, processed, created_at
		FROM messages WHERE mid = $1
	`
	err := r.db.QueryRowContext(ctx, query, mid).
		Scan(&m.MID, &m.SenderIGID, &m.RecipientIGID, &m.MessageText,
			&m.Attachments, &m.ReceivedAt, &m.Processed, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &m, true, nil
}

func (r *messageRepository) MarkProcessed(ctx context.Context, mid string) error {
	query := `UPDATE messages SET processed = TRUE WHERE mid = $1`
	_, err := r.db.ExecContext(ctx, query, mid)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
