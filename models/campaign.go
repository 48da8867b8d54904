package models

import "time"

// Campaign is a single tournament instance (the tenant boundary).
// The slug is globally unique and forms the public URL of the campaign.
type Campaign struct {
	ID             int       `json:"id" db:"id"`
	Slug           string    `json:"slug" db:"slug"`
	Name           string    `json:"name" db:"name"`
	OrganizerEmail string    `json:"organizer_email" db:"organizer_email"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	IsDemo         bool      `json:"is_demo" db:"is_demo"`
	PurchaseID     *int      `json:"purchase_id,omitempty" db:"purchase_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
