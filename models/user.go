package models

import "time"

// User represents an account in the app. PushToken is the opaque destination
// token issued by the push provider; it is validated only by a format check.
type User struct {
	ID           int        `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	SkillLevel   *int       `json:"skill_level,omitempty" db:"skill_level"`
	PushToken    *string    `json:"-" db:"push_token"`
	AvatarKey    *string    `json:"-" db:"avatar_key"`
	AvatarURL    *string    `json:"avatar_url,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
}
