package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	stripe "github.com/stripe/stripe-go/v78"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/payments"
)

// StripeWebhook is the slice of the Stripe gateway webhook handling needs.
type StripeWebhook interface {
	VerifyEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

// MercadoPagoWebhook is the slice of the Mercado Pago client webhook
// handling needs.
type MercadoPagoWebhook interface {
	VerifySignature(signatureHeader, requestID, dataID string) error
	GetPayment(ctx context.Context, paymentID string) (*payments.Payment, error)
}

// WebhookService turns verified provider notifications into provisioned
// campaigns. Signature failures are returned as errors; everything past
// verification is routed through the idempotent provisioning pipeline.
type WebhookService interface {
	HandleStripe(ctx context.Context, payload []byte, signatureHeader string) error
	HandleMercadoPago(ctx context.Context, notification payments.WebhookNotification, signatureHeader, requestID string) error
}

type webhookService struct {
	stripe       StripeWebhook
	mercadoPago  MercadoPagoWebhook
	provisioning ProvisioningService
	logger       *slog.Logger
}

func NewWebhookService(
	stripeGateway StripeWebhook,
	mercadoPago MercadoPagoWebhook,
	provisioning ProvisioningService,
	logger *slog.Logger,
) WebhookService {
	return &webhookService{
		stripe:       stripeGateway,
		mercadoPago:  mercadoPago,
		provisioning: provisioning,
		logger:       logger,
	}
}

func (s *webhookService) HandleStripe(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.stripe.VerifyEvent(payload, signatureHeader)
	if err != nil {
		return ErrWebhookSignature
	}

	if event.Type != "checkout.session.completed" {
		s.logger.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}
	sess, err := payments.CompletedSession(event)
	if err != nil {
		return err
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	paymentID := ""
	if sess.PaymentIntent != nil {
		paymentID = sess.PaymentIntent.ID
	}
	months, _ := strconv.Atoi(sess.Metadata[payments.MetaMonths])

	input := ProvisionInput{
		ExternalID:        sess.ID,
		Provider:          ProviderStripe,
		ProviderPaymentID: paymentID,
		CustomerEmail:     email,
		CampaignSlug:      sess.Metadata[payments.MetaCampaignSlug],
		CampaignName:      sess.Metadata[payments.MetaCampaignName],
		PlanType:          models.PlanType(sess.Metadata[payments.MetaPlanID]),
		Months:            months,
		CouponCode:        sess.Metadata[payments.MetaCouponCode],
		AmountPaid:        sess.AmountTotal,
	}
	if _, err := s.provisioning.Provision(ctx, input); err != nil {
		return fmt.Errorf("stripe provisioning failed for session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *webhookService) HandleMercadoPago(ctx context.Context, notification payments.WebhookNotification, signatureHeader, requestID string) error {
	if err := s.mercadoPago.VerifySignature(signatureHeader, requestID, notification.Data.ID); err != nil {
		return ErrWebhookSignature
	}
	if notification.Type != "payment" {
		s.logger.Debug("ignoring mercado pago event", "type", notification.Type)
		return nil
	}

	payment, err := s.mercadoPago.GetPayment(ctx, notification.Data.ID)
	if err != nil {
		return err
	}
	if payment.Status != "approved" {
		s.logger.Info("skipping mercado pago payment", "payment_id", payment.ID, "status", payment.Status)
		return nil
	}

	months, _ := strconv.Atoi(payment.MetadataString(payments.MetaMonths))
	if months == 0 {
		// Mercado Pago returns numeric metadata as numbers.
		if v, ok := payment.Metadata[payments.MetaMonths].(float64); ok {
			months = int(v)
		}
	}

	input := ProvisionInput{
		ExternalID:        fmt.Sprintf("mp-%d", payment.ID),
		Provider:          ProviderMercadoPago,
		ProviderPaymentID: strconv.FormatInt(payment.ID, 10),
		CustomerEmail:     payment.Payer.Email,
		CampaignSlug:      payment.MetadataString(payments.MetaCampaignSlug),
		CampaignName:      payment.MetadataString(payments.MetaCampaignName),
		PlanType:          models.PlanType(payment.MetadataString(payments.MetaPlanID)),
		Months:            months,
		CouponCode:        payment.MetadataString(payments.MetaCouponCode),
		AmountPaid:        int64(payment.TransactionAmount * 100),
	}
	if _, err := s.provisioning.Provision(ctx, input); err != nil {
		return fmt.Errorf("mercado pago provisioning failed for payment %d: %w", payment.ID, err)
	}
	return nil
}
