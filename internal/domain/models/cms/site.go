package cms

import "time"

// Site is a tenant, addressed by its subdomain.
type Site struct {
	ID         string    `json:"id" db:"id"`
	CreatorID  string    `json:"creator_id" db:"creator_id"`
	Subdomain  string    `json:"subdomain" db:"subdomain"`
	SiteName   string    `json:"site_name" db:"site_name"`
	OwnerName  string    `json:"name" db:"owner_name"`
	Profession string    `json:"profession,omitempty" db:"profession"`
	IsCore     bool      `json:"is_core" db:"is_core"`
	IsPass     bool      `json:"is_pass" db:"is_pass"`
	IsOff      bool      `json:"is_off" db:"is_off"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
