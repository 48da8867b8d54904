package payments

import (
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Metadata keys attached to every checkout so the webhook can provision the
// right campaign.
const (
	MetaCampaignSlug = "campaign_slug"
	MetaCampaignName = "campaign_name"
	MetaPlanID       = "plan_id"
	MetaMonths       = "months"
	MetaCouponCode   = "coupon_code"
)

// CheckoutInput is provider-agnostic checkout material.
type CheckoutInput struct {
	Slug         string
	CampaignName string
	Email        string
	Plan         Plan
	AmountCents  int64  // price after any coupon
	CouponCode   string // empty when no coupon was applied
	SuccessURL   string
	CancelURL    string
}

type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}
}

// CreateCheckoutSession builds a hosted Stripe Checkout session and returns
// its redirect URL.
func (g *StripeGateway) CreateCheckoutSession(input CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(input.Email),
		SuccessURL:    stripe.String(input.SuccessURL),
		CancelURL:     stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyBRL)),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s - %s", input.CampaignName, input.Plan.Name)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata(MetaCampaignSlug, input.Slug)
	params.AddMetadata(MetaCampaignName, input.CampaignName)
	params.AddMetadata(MetaPlanID, string(input.Plan.ID))
	params.AddMetadata(MetaMonths, fmt.Sprintf("%d", input.Plan.Months))
	if input.CouponCode != "" {
		params.AddMetadata(MetaCouponCode, input.CouponCode)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
func (g *StripeGateway) VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
}

// CompletedSession extracts the checkout session object from a
// checkout.session.completed event.
func CompletedSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &sess, nil
}
