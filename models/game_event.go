package models

import "time"

// GameEventStatus represents the lifecycle states of a game event, matching the ENUM in the DB.
type GameEventStatus string

const (
	StatusWaiting   GameEventStatus = "waiting"
	StatusConfirmed GameEventStatus = "confirmed"
	StatusCompleted GameEventStatus = "completed"
	StatusCancelled GameEventStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed out of the status.
func (s GameEventStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TimeType describes how the scheduled time of a game was specified.
type TimeType string

const (
	TimeTypeNow       TimeType = "now"
	TimeTypeTimeOfDay TimeType = "time_of_day"
	TimeTypePrecise   TimeType = "precise"
)

// GameEvent represents one posted pickup game. Events are never physically
// deleted; retired ones stay around for history.
type GameEvent struct {
	ID            int             `json:"id" db:"id"`
	SportID       int             `json:"sport_id" db:"sport_id"`
	CreatorID     int             `json:"creator_id" db:"creator_id"`
	MinPlayers    int             `json:"min_players" db:"min_players"`
	MaxPlayers    int             `json:"max_players" db:"max_players"`
	SkillMin      *int            `json:"skill_min,omitempty" db:"skill_min"`
	SkillMax      *int            `json:"skill_max,omitempty" db:"skill_max"`
	ScheduledTime time.Time       `json:"scheduled_time" db:"scheduled_time"`
	TimeType      TimeType        `json:"time_type" db:"time_type"`
	Status        GameEventStatus `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	// Optional related entities (not mapped directly).
	Sport       *Sport        `json:"sport,omitempty" db:"-"`
	Creator     *User         `json:"creator,omitempty" db:"-"`
	Roster      []RosterEntry `json:"roster,omitempty" db:"-"`
	PlayerCount int           `json:"player_count" db:"-"`
}
