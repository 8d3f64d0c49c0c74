package models

import "time"

// RosterEntry is one (game, player) membership row. The existence of rows is
// the only source of truth for occupancy; no cached counter is trusted.
type RosterEntry struct {
	ID       int       `json:"id" db:"id"`
	GameID   int       `json:"game_id" db:"game_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	Player *User `json:"player,omitempty" db:"-"`
}
