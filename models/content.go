package models

import "time"

// Comment is the only public write on a campaign site. Approved defaults to
// true; moderation can hide a comment without deleting it.
type Comment struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Author     string    `json:"author" db:"author"`
	Body       string    `json:"body" db:"body"`
	Approved   bool      `json:"approved" db:"approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Photo struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Key        string    `json:"-" db:"key"`
	URL        string    `json:"url" db:"-"`
	Caption    *string   `json:"caption,omitempty" db:"caption"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Announcement struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	Pinned     bool      `json:"pinned" db:"pinned"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Sponsor struct {
	ID         int       `json:"id" db:"id"`
	CampaignID int       `json:"campaign_id" db:"campaign_id"`
	Name       string    `json:"name" db:"name"`
	LinkURL    *string   `json:"link_url,omitempty" db:"link_url"`
	ImageKey   *string   `json:"-" db:"image_key"`
	ImageURL   *string   `json:"image_url,omitempty" db:"-"`
	Position   int       `json:"position" db:"position"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
