package models

import "time"

// ChatMessage is one append-only message in a game's chat. No edit, no delete.
type ChatMessage struct {
	ID        int       `json:"id" db:"id"`
	GameID    int       `json:"game_id" db:"game_id"`
	SenderID  int       `json:"sender_id" db:"sender_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Sender *User `json:"sender,omitempty" db:"-"`
}
