package cms

import "time"

type Tag struct {
	ID        string    `json:"id" db:"id"`
	SiteID    *string   `json:"site_id" db:"site_id"`
	CreatorID string    `json:"creator_id" db:"creator_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color,omitempty" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TagRef is a requested tag: resolved by name, created with Color if missing.
type TagRef struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}
