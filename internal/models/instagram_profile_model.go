package models

import (
	"database/sql"
	"time"
)

type InstagramProfile struct {
	IGID            string         `db:"ig_id" json:"ig_id"`
	Username        string         `db:"username" json:"username"`
	Name            string         `db:"name" json:"name"`
	ProfilePicture  string         `db:"profile_picture_url" json:"profile_picture"`
	ConnectedUserID sql.NullInt64  `db:"connected_user_id" json:"connected_user_id"`
	ConnectedAt     sql.NullTime   `db:"connected_at" json:"connected_at"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

func (p *InstagramProfile) IsConnected() bool {
	return p != nil && p.ConnectedUserID.Valid
}
