package models

import (
	"database/sql"
	"time"
)

const (
	OutboundStatusPending = "pending"
	OutboundStatusSent    = "sent"
	OutboundStatusFailed  = "failed"
)

const (
	OutboundKindVerification    = "verification"
	OutboundKindAcknowledgement = "acknowledgement"
	OutboundKindCustom          = "custom"
)

type OutboundMessage struct {
	ID              string         `db:"id" json:"id"`
	RecipientIGID   string         `db:"recipient_ig_id" json:"recipient_ig_id"`
	Kind            string         `db:"kind" json:"kind"`
	Payload         []byte         `db:"payload" json:"payload"`
	Status          string         `db:"status" json:"status"` // pending, sent, failed
	Attempts        int            `db:"attempts" json:"attempts"`
	RemoteMessageID sql.NullString `db:"remote_message_id" json:"remote_message_id,omitempty"`
	ErrorMessage    sql.NullString `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
