package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

const expiryWarningWindow = 7 * 24 * time.Hour

// ExpirationService sweeps purchases whose paid window is ending: it warns
// organizers a week ahead and deactivates campaigns once the window closes.
// Per-purchase failures are logged and skipped so one broken row cannot
// stall the sweep.
type ExpirationService interface {
	Run(ctx context.Context) error
}

type expirationService struct {
	purchaseRepo repositories.PurchaseRepository
	campaignRepo repositories.CampaignRepository
	mailer       ExpiryMailer
	cfg          *config.Config
	logger       *slog.Logger
}

// ExpiryMailer is the slice of the email service the sweep needs.
type ExpiryMailer interface {
	SendExpiryWarningEmail(to, campaignName, campaignURL string, daysLeft int) error
	SendExpiredEmail(to, campaignName string) error
}

func NewExpirationService(
	purchaseRepo repositories.PurchaseRepository,
	campaignRepo repositories.CampaignRepository,
	mailer ExpiryMailer,
	cfg *config.Config,
	logger *slog.Logger,
) ExpirationService {
	return &expirationService{
		purchaseRepo: purchaseRepo,
		campaignRepo: campaignRepo,
		mailer:       mailer,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *expirationService) Run(ctx context.Context) error {
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.warnExpiring(gctx, now) })
	g.Go(func() error { return s.deactivateExpired(gctx, now) })
	return g.Wait()
}

func (s *expirationService) warnExpiring(ctx context.Context, now time.Time) error {
	expiring, err := s.purchaseRepo.ListExpiringBetween(ctx, now, now.Add(expiryWarningWindow))
	if err != nil {
		return fmt.Errorf("failed to list expiring purchases: %w", err)
	}

	for _, purchase := range expiring {
		campaign, err := s.campaignRepo.GetBySlug(ctx, purchase.CampaignSlug)
		if err != nil {
			s.logCampaignLookup(purchase, err)
			continue
		}
		if !campaign.IsActive {
			// Already deactivated (manually or by refund); nothing to warn
			// about.
			continue
		}
		daysLeft := int(purchase.ExpiresAt.Sub(now).Hours() / 24)
		campaignURL := fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, campaign.Slug)

		if err := s.mailer.SendExpiryWarningEmail(campaign.OrganizerEmail, campaign.Name, campaignURL, daysLeft); err != nil {
			s.logger.Error("failed to send expiry warning",
				"campaign_slug", campaign.Slug, "error", err)
			continue
		}
		// Only mark warned after the email went out, so a failed send is
		// retried on the next sweep.
		if err := s.purchaseRepo.MarkWarned(ctx, purchase.ID, now); err != nil {
			s.logger.Error("failed to mark purchase warned",
				"purchase_id", purchase.ID, "error", err)
		}
	}
	return nil
}

func (s *expirationService) deactivateExpired(ctx context.Context, now time.Time) error {
	expired, err := s.purchaseRepo.ListExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list expired purchases: %w", err)
	}

	for _, purchase := range expired {
		campaign, err := s.campaignRepo.GetBySlug(ctx, purchase.CampaignSlug)
		if err != nil {
			s.logCampaignLookup(purchase, err)
			continue
		}
		if campaign.IsActive {
			if err := s.campaignRepo.SetActive(ctx, campaign.ID, false); err != nil {
				s.logger.Error("failed to deactivate expired campaign",
					"campaign_slug", campaign.Slug, "error", err)
				continue
			}
		}
		if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, models.PurchaseExpired); err != nil {
			s.logger.Error("failed to mark purchase expired",
				"purchase_id", purchase.ID, "error", err)
			continue
		}
		if err := s.mailer.SendExpiredEmail(campaign.OrganizerEmail, campaign.Name); err != nil {
			s.logger.Warn("failed to send expiration notice",
				"campaign_slug", campaign.Slug, "error", err)
		}
		s.logger.Info("campaign expired and deactivated",
			"campaign_slug", campaign.Slug, "purchase_id", purchase.ID)
	}
	return nil
}

func (s *expirationService) logCampaignLookup(purchase *models.Purchase, err error) {
	level := slog.LevelError
	if errors.Is(err, repositories.ErrCampaignNotFound) {
		// Purchase without a campaign means provisioning never finished;
		// the recovery sweep owns that case.
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "campaign lookup failed during expiration sweep",
		"campaign_slug", purchase.CampaignSlug, "purchase_id", purchase.ID, "error", err)
}
