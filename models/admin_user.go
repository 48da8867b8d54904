package models

import "time"

// AdminUser is a campaign-scoped credential for the admin panel.
// The first admin of a campaign is the owner and may manage the others.
type AdminUser struct {
	ID                  int        `json:"id" db:"id"`
	CampaignID          int        `json:"campaign_id" db:"campaign_id"`
	Username            string     `json:"username" db:"username"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	IsOwner             bool       `json:"is_owner" db:"is_owner"`
	Active              bool       `json:"active" db:"active"`
	NeedsPasswordChange bool       `json:"needs_password_change" db:"needs_password_change"`
	ResetToken          *string    `json:"-" db:"reset_token"`
	ResetTokenExpiresAt *time.Time `json:"-" db:"reset_token_expires_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

type AdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
