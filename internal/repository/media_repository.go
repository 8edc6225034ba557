package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/pra2107tham/Reeva/internal/models"
)

// ErrDuplicateMedia reports an insert that lost the (user_id, media_id)
// uniqueness race. Callers treat it as "already saved".
var ErrDuplicateMedia = errors.New("media already saved for this user")

type MediaRepository interface {
	Exists(ctx context.Context, userID int64, mediaID string) (bool, error)
	Create(ctx context.Context, m *models.SavedMedia) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SavedMedia, error)
}

type mediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Exists(ctx context.Context, userID int64, mediaID string) (bool, error) {
	query := `SELECT 1 FROM saved_media WHERE user_id = $1 AND media_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, userID, mediaID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *mediaRepository) Create(ctx context.Context, m *models.SavedMedia) (int64, error) {
	query := `
		INSERT INTO saved_media (user_id, media_type, media_id, url, title)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, m.UserID, m.MediaType, m.MediaID, m.URL, m.Title).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateMedia
		}
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *mediaRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SavedMedia, error) {
	query := `
		SELECT id, user_id, media_type, media_id, url, title, created_at
		FROM saved_media WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var media []*models.SavedMedia
	for rows.Next() {
		var m models.SavedMedia
		err := rows.Scan(&m.ID, &m.UserID, &m.MediaType, &m.MediaID, &m.URL, &m.Title, &m.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		media = append(media, &m)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return media, nil
}
