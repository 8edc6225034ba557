package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/pra2107tham/Reeva/internal/models"
)

// ErrProfileLinkConflict reports a link attempt against a profile that does
// not exist or is already bound to an account.
var ErrProfileLinkConflict = errors.New("profile is missing or already linked")

type ProfileRepository interface {
	Upsert(ctx context.Context, p *models.InstagramProfile) (*models.InstagramProfile, error)
	GetByIGID(ctx context.Context, igID string) (*models.InstagramProfile, bool, error)
	Link(ctx context.Context, igID string, userID int64) error
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Upsert inserts the profile or merges non-empty display fields into the
// existing row. connected_user_id is never touched here.
func (r *profileRepository) Upsert(ctx context.Context, p *models.InstagramProfile) (*models.InstagramProfile, error) {
	query := `
		INSERT INTO instagram_profiles (ig_id, username, name, profile_picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ig_id) DO UPDATE
		SET username = COALESCE(NULLIF($2, ''), instagram_profiles.username),
			name = COALESCE(NULLIF($3, ''), instagram_profiles.name),
			profile_picture_url = COALESCE(NULLIF($4, ''), instagram_profiles.profile_picture_url),
			updated_at = CURRENT_TIMESTAMP
		RETURNING ig_id, username, name, profile_picture_url, connected_user_id, connected_at, created_at, updated_at
	`

	var out models.InstagramProfile
	err := r.db.QueryRowContext(ctx, query, p.IGID, p.Username, p.Name, p.ProfilePicture).
		Scan(&out.IGID, &out.Username, &out.Name, &out.ProfilePicture,
			&out.ConnectedUserID, &out.ConnectedAt, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &out, nil
}

func (r *profileRepository) GetByIGID(ctx context.Context, igID string) (*models.InstagramProfile, bool, error) {
	var p models.InstagramProfile
	query := `
		SELECT ig_id, username, name, profile_picture_url, connected_user_id, connected_at, created_at, updated_at
		FROM instagram_profiles WHERE ig_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, igID).
		Scan(&p.IGID, &p.Username, &p.Name, &p.ProfilePicture,
			&p.ConnectedUserID, &p.ConnectedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &p, true, nil
}

// Link binds the profile to an application user. The guard on
// connected_user_id keeps the binding set-once: a second attempt affects
// zero rows and fails.
func (r *profileRepository) Link(ctx context.Context, igID string, userID int64) error {
	query := `
		UPDATE instagram_profiles
		SET connected_user_id = $2,
			connected_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE ig_id = $1 AND connected_user_id IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, igID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrProfileLinkConflict
	}
	return nil
}
