package models

// Sport represents a kind of sport that games can be posted for.
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	IconKey *string `json:"-" db:"icon_key"`
	IconURL *string `json:"icon_url,omitempty" db:"-"`
}
