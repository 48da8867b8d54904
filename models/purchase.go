package models

import "time"

// PlanType are the sellable subscription windows.
type PlanType string

const (
	PlanTwoMonths  PlanType = "2_months"
	PlanThreeMonth PlanType = "3_months"
	PlanSixMonths  PlanType = "6_months"
	PlanOneYear    PlanType = "1_year"
	// PlanTrial is never sold; it backs the 7-day demo signup.
	PlanTrial PlanType = "trial"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
	PurchaseRefunded  PurchaseStatus = "refunded"
	PurchaseExpired   PurchaseStatus = "expired"
)

// ProvisionState tracks how far the post-payment pipeline got for a purchase.
// Any state short of ProvisionComplete is resumable by the recovery sweep.
type ProvisionState string

const (
	ProvisionPending           ProvisionState = "pending"
	ProvisionCampaignCreated   ProvisionState = "campaign_created"
	ProvisionUserProvisioned   ProvisionState = "user_provisioned"
	ProvisionCredentialsIssued ProvisionState = "credentials_issued"
	ProvisionNotified          ProvisionState = "notified"
	ProvisionComplete          ProvisionState = "complete"
)

// Purchase funds one campaign's active lifetime window.
type Purchase struct {
	ID                int            `json:"id" db:"id"`
	ExternalID        string         `json:"external_id" db:"external_id"`
	CustomerEmail     string         `json:"customer_email" db:"customer_email"`
	CampaignSlug      string         `json:"campaign_slug" db:"campaign_slug"`
	PlanType          PlanType       `json:"plan_type" db:"plan_type"`
	AmountPaid        int64          `json:"amount_paid" db:"amount_paid"` // cents
	Status            PurchaseStatus `json:"status" db:"status"`
	Provider          string         `json:"provider" db:"provider"`
	ProviderPaymentID string         `json:"provider_payment_id" db:"provider_payment_id"`
	ProvisionState    ProvisionState `json:"provision_state" db:"provision_state"`
	ExpiresAt         time.Time      `json:"expires_at" db:"expires_at"`
	WarnedAt          *time.Time     `json:"warned_at,omitempty" db:"warned_at"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}
