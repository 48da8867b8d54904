package models

import "time"

// Coupon applies a percentage discount at checkout.
type Coupon struct {
	ID              int        `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discount_percent" db:"discount_percent"`
	MaxUses         *int       `json:"max_uses,omitempty" db:"max_uses"`
	Uses            int        `json:"uses" db:"uses"`
	Active          bool       `json:"active" db:"active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
