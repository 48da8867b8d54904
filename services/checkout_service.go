package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/payments"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/utils"
)

const (
	ProviderStripe      = "stripe"
	ProviderMercadoPago = "mercadopago"
	ProviderTrial       = "trial"
)

// StripeCheckout is the slice of the Stripe gateway checkout needs.
type StripeCheckout interface {
	CreateCheckoutSession(input payments.CheckoutInput) (string, error)
}

// MercadoPagoCheckout is the slice of the Mercado Pago client checkout needs.
type MercadoPagoCheckout interface {
	CreatePreference(ctx context.Context, input payments.CheckoutInput) (string, error)
}

type StartCheckoutInput struct {
	Slug         string `json:"slug"`
	CampaignName string `json:"campaign_name"`
	Email        string `json:"email"`
	PlanID       string `json:"plan_id"`
	CouponCode   string `json:"coupon_code,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type CheckoutQuote struct {
	Plan            payments.Plan `json:"plan"`
	AmountCents     int64         `json:"amount_cents"`
	DiscountPercent int           `json:"discount_percent"`
}

type CheckoutService interface {
	Plans() []payments.Plan
	// CheckSlug validates the desired campaign slug without starting a
	// checkout (availability endpoint for the signup form).
	CheckSlug(ctx context.Context, slug string) (string, error)
	Quote(ctx context.Context, planID, couponCode string) (*CheckoutQuote, error)
	// Start creates a hosted checkout session with the chosen provider and
	// returns the redirect URL.
	Start(ctx context.Context, input StartCheckoutInput) (string, error)
}

type checkoutService struct {
	campaignRepo repositories.CampaignRepository
	reservedRepo repositories.ReservedSlugRepository
	couponRepo   repositories.CouponRepository
	stripe       StripeCheckout
	mercadoPago  MercadoPagoCheckout
	cfg          *config.Config
	logger       *slog.Logger
}

func NewCheckoutService(
	campaignRepo repositories.CampaignRepository,
	reservedRepo repositories.ReservedSlugRepository,
	couponRepo repositories.CouponRepository,
	stripe StripeCheckout,
	mercadoPago MercadoPagoCheckout,
	cfg *config.Config,
	logger *slog.Logger,
) CheckoutService {
	return &checkoutService{
		campaignRepo: campaignRepo,
		reservedRepo: reservedRepo,
		couponRepo:   couponRepo,
		stripe:       stripe,
		mercadoPago:  mercadoPago,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *checkoutService) Plans() []payments.Plan {
	return payments.Plans()
}

// CheckSlug normalizes the raw slug and verifies it is valid, not reserved
// and not taken. The normalized form is returned so the caller uses it from
// here on.
func (s *checkoutService) CheckSlug(ctx context.Context, raw string) (string, error) {
	slug := utils.NormalizeSlug(raw)
	if !utils.IsValidSlug(slug) {
		return "", ErrSlugInvalid
	}
	reserved, err := s.reservedRepo.IsReserved(ctx, slug)
	if err != nil {
		return "", err
	}
	if reserved {
		return "", ErrSlugReserved
	}
	taken, err := s.campaignRepo.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrSlugTaken
	}
	return slug, nil
}

func (s *checkoutService) Quote(ctx context.Context, planID, couponCode string) (*CheckoutQuote, error) {
	plan, ok := payments.PlanByID(planID)
	if !ok {
		return nil, ErrPlanUnknown
	}

	quote := &CheckoutQuote{Plan: plan, AmountCents: plan.PriceCents}
	if couponCode == "" {
		return quote, nil
	}

	coupon, err := s.validCoupon(ctx, couponCode)
	if err != nil {
		return nil, err
	}
	quote.DiscountPercent = coupon.DiscountPercent
	quote.AmountCents = payments.ApplyDiscount(plan.PriceCents, coupon.DiscountPercent)
	return quote, nil
}

func (s *checkoutService) Start(ctx context.Context, input StartCheckoutInput) (string, error) {
	if strings.TrimSpace(input.Email) == "" {
		return "", ErrEmailRequired
	}
	slug, err := s.CheckSlug(ctx, input.Slug)
	if err != nil {
		return "", err
	}
	plan, ok := payments.PlanByID(input.PlanID)
	if !ok {
		return "", ErrPlanUnknown
	}

	amount := plan.PriceCents
	var coupon *models.Coupon
	if input.CouponCode != "" {
		coupon, err = s.validCoupon(ctx, input.CouponCode)
		if err != nil {
			return "", err
		}
		amount = payments.ApplyDiscount(plan.PriceCents, coupon.DiscountPercent)
	}

	name := strings.TrimSpace(input.CampaignName)
	if name == "" {
		name = slug
	}
	checkout := payments.CheckoutInput{
		Slug:         slug,
		CampaignName: name,
		Email:        input.Email,
		Plan:         plan,
		AmountCents:  amount,
		SuccessURL:   fmt.Sprintf("%s/checkout/sucesso?slug=%s", s.cfg.PublicBaseURL, slug),
		CancelURL:    fmt.Sprintf("%s/checkout/cancelado", s.cfg.PublicBaseURL),
	}
	if coupon != nil {
		// Carried in the provider metadata; the use is counted only when the
		// payment completes, so abandoned checkouts do not burn uses.
		checkout.CouponCode = coupon.Code
	}

	var redirectURL string
	switch input.Provider {
	case ProviderMercadoPago:
		redirectURL, err = s.mercadoPago.CreatePreference(ctx, checkout)
	case ProviderStripe, "":
		redirectURL, err = s.stripe.CreateCheckoutSession(checkout)
	default:
		return "", fmt.Errorf("%w: unknown payment provider %q", ErrValidationFailed, input.Provider)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info("checkout started",
		"slug", slug, "plan", plan.ID, "provider", input.Provider, "amount_cents", amount)
	return redirectURL, nil
}

func (s *checkoutService) validCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrCouponNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, err
	}
	if !coupon.Active {
		return nil, ErrCouponInvalid
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrCouponInvalid
	}
	if coupon.MaxUses != nil && coupon.Uses >= *coupon.MaxUses {
		return nil, ErrCouponInvalid
	}
	return coupon, nil
}
