package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/copafacil/copa-manager/models"
)

const trialDays = 7

type StartTrialInput struct {
	Slug         string `json:"slug"`
	CampaignName string `json:"campaign_name"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
}

// TrialService spins up a 7-day demo campaign without payment; the trial
// goes through the same provisioning pipeline as a purchase.
type TrialService interface {
	Start(ctx context.Context, input StartTrialInput) (*models.Purchase, error)
}

type trialService struct {
	checkout     CheckoutService
	provisioning ProvisioningService
	logger       *slog.Logger
}

func NewTrialService(checkout CheckoutService, provisioning ProvisioningService, logger *slog.Logger) TrialService {
	return &trialService{checkout: checkout, provisioning: provisioning, logger: logger}
}

func (s *trialService) Start(ctx context.Context, input StartTrialInput) (*models.Purchase, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrEmailRequired
	}
	slug, err := s.checkout.CheckSlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.CampaignName)
	if name == "" {
		name = slug
	}

	purchase, err := s.provisioning.Provision(ctx, ProvisionInput{
		ExternalID:    "trial-" + uuid.NewString(),
		Provider:      ProviderTrial,
		CustomerEmail: input.Email,
		CustomerName:  input.Name,
		CampaignSlug:  slug,
		CampaignName:  name,
		PlanType:      models.PlanTrial,
		TrialDays:     trialDays,
		AmountPaid:    0,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trial campaign created", "slug", slug, "email", input.Email)
	return purchase, nil
}
