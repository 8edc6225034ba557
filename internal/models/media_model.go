package models

import (
	"database/sql"
	"time"
)

const (
	MediaTypeReel = "reel"
	MediaTypePost = "post"
)

type SavedMedia struct {
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	MediaType string         `db:"media_type" json:"media_type"`
	MediaID   string         `db:"media_id" json:"media_id"`
	URL       string         `db:"url" json:"url"`
	Title     sql.NullString `db:"title" json:"title,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
