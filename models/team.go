package models

import "time"

type Team struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Name       string    `json:"name" db:"name"`
	Lodge      *string   `json:"lodge,omitempty" db:"lodge"`
	GroupID    *int      `json:"group_id,omitempty" db:"group_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Players []Player `json:"players,omitempty" db:"-"`
}

// Group is a round-robin pool of teams within a campaign.
type Group struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}

type Player struct {
	ID        int       `json:"id" db:"id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Name      string    `json:"name" db:"name"`
	Number    *int      `json:"number,omitempty" db:"number"`
	Position  *string   `json:"position,omitempty" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
