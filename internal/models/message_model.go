package models

import (
	"database/sql"
	"time"
)

type Message struct {
	MID           string         `db:"mid" json:"mid"`
	SenderIGID    string         `db:"sender_ig_id" json:"sender_ig_id"`
	RecipientIGID string         `db:"recipient_ig_id" json:"recipient_ig_id"`
	MessageText   sql.NullString `db:"message_text" json:"message_text"`
	Attachments   []byte         `db:"attachments" json:"attachments,omitempty"`
	ReceivedAt    time.Time      `db:"received_at" json:"received_at"`
	Processed     bool           `db:"processed" json:"processed"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}
