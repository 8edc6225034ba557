package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/models"
)

type VerificationTokenRepository interface {
	Create(ctx context.Context, t *models.VerificationToken) error
	GetActive(ctx context.Context, tokenHash, igID string) (*models.VerificationToken, bool, error)
	Consume(ctx context.Context, tokenHash string) (bool, error)
	DeleteStale(ctx context.Context) (int64, error)
}

type verificationTokenRepository struct {
	db *sql.DB
}

func NewVerificationTokenRepository(db *sql.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, t *models.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (token_hash, ig_id, message_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, t.TokenHash, t.IGID, t.MessageID, t.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *verificationTokenRepository) GetActive(ctx context.Context, tokenHash, igID string) (*models.VerificationToken, bool, error) {
	var t models.VerificationToken
	query := `
		SELECT token_hash, ig_id, message_id, expires_at, consumed, created_at
		FROM verification_tokens
		WHERE token_hash = $1 AND ig_id = $2 AND consumed = FALSE
	`
	err := r.db.QueryRowContext(ctx, query, tokenHash, igID).
		Scan(&t.TokenHash, &t.IGID, &t.MessageID, &t.ExpiresAt, &t.Consumed, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &t, true, nil
}

// Consume flips the one-way consumed flag. The consumed = FALSE guard makes
// two racing consumers resolve to exactly one winner.
func (r *verificationTokenRepository) Consume(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE verification_tokens SET consumed = TRUE WHERE token_hash = $1 AND consumed = FALSE`
	result, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *verificationTokenRepository) DeleteStale(ctx context.Context) (int64, error) {
	query := `DELETE FROM verification_tokens WHERE consumed = TRUE OR expires_at < CURRENT_TIMESTAMP`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return deleted, nil
}
