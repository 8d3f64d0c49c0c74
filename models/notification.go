package models

import (
	"encoding/json"
	"time"
)

// NotificationStatus matches the ENUM on the notification queue table. An item
// moves from pending to exactly one of sent or failed and never back.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationQueueItem is one durable push-notification intent. Failed items
// are terminal; callers that want a retry enqueue a fresh item.
type NotificationQueueItem struct {
	ID           int                `json:"id" db:"id"`
	UserID       int                `json:"user_id" db:"user_id"`
	Title        string             `json:"title" db:"title"`
	Body         string             `json:"body" db:"body"`
	Payload      json.RawMessage    `json:"payload,omitempty" db:"payload"`
	ScheduledFor time.Time          `json:"scheduled_for" db:"scheduled_for"`
	Status       NotificationStatus `json:"status" db:"status"`
	SentAt       *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
