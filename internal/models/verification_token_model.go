package models

import "time"

type VerificationToken struct {
	TokenHash string    `db:"token_hash" json:"-"`
	IGID      string    `db:"ig_id" json:"ig_id"`
	MessageID string    `db:"message_id" json:"message_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Consumed  bool      `db:"consumed" json:"consumed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
