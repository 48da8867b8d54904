package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/utils"
)

const (
	ownerUsername        = "admin"
	resetTokenLength     = 48
	resetTokenValidity   = 48 * time.Hour
	provisionResumeGrace = 5 * time.Minute
)

// ProvisionInput carries everything a confirmed payment (or trial signup)
// tells us about the campaign to set up.
type ProvisionInput struct {
	ExternalID        string
	Provider          string
	ProviderPaymentID string
	CustomerEmail     string
	CustomerName      string
	CampaignSlug      string
	CampaignName      string
	PlanType          models.PlanType
	Months            int
	TrialDays         int    // when > 0 the campaign is a demo and Months is ignored
	CouponCode        string // counted against the coupon once the payment is confirmed
	AmountPaid        int64
}

// ProvisionMailer is the slice of the email service provisioning needs.
type ProvisionMailer interface {
	SendWelcomeEmail(to string, data WelcomeEmailData) error
	SendPasswordResetEmail(to, username, resetURL string) error
	SendOwnerNotification(subject, message string) error
}

// ProvisioningService turns a completed purchase into a working campaign:
// campaign row, organizer account, admin credentials, welcome email. Every
// step persists its progress on the purchase so a crash mid-pipeline is
// picked up by ResumeStuck.
type ProvisioningService interface {
	Provision(ctx context.Context, input ProvisionInput) (*models.Purchase, error)
	Resume(ctx context.Context, purchase *models.Purchase) error
	// ResumeStuck finds purchases left short of the complete state and runs
	// the remaining steps. Returns how many purchases were resumed.
	ResumeStuck(ctx context.Context) (int, error)
}

type provisioningService struct {
	purchaseRepo repositories.PurchaseRepository
	campaignRepo repositories.CampaignRepository
	userRepo     repositories.UserRepository
	adminRepo    repositories.AdminUserRepository
	couponRepo   repositories.CouponRepository
	mailer       ProvisionMailer
	cfg          *config.Config
	logger       *slog.Logger
}

func NewProvisioningService(
	purchaseRepo repositories.PurchaseRepository,
	campaignRepo repositories.CampaignRepository,
	userRepo repositories.UserRepository,
	adminRepo repositories.AdminUserRepository,
	couponRepo repositories.CouponRepository,
	mailer ProvisionMailer,
	cfg *config.Config,
	logger *slog.Logger,
) ProvisioningService {
	return &provisioningService{
		purchaseRepo: purchaseRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		adminRepo:    adminRepo,
		couponRepo:   couponRepo,
		mailer:       mailer,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *provisioningService) Provision(ctx context.Context, input ProvisionInput) (*models.Purchase, error) {
	if input.CampaignSlug == "" {
		return nil, ErrProvisionSlugMissing
	}
	if input.CustomerEmail == "" {
		return nil, ErrProvisionEmailMissing
	}

	// Webhook deliveries are retried; the external id makes the whole
	// pipeline idempotent.
	existing, err := s.purchaseRepo.GetByExternalID(ctx, input.ExternalID)
	if err == nil {
		if existing.ProvisionState != models.ProvisionComplete {
			if errResume := s.Resume(ctx, existing); errResume != nil {
				return existing, errResume
			}
		}
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrPurchaseNotFound) {
		return nil, err
	}

	purchase := &models.Purchase{
		ExternalID:        input.ExternalID,
		CustomerEmail:     input.CustomerEmail,
		CampaignSlug:      input.CampaignSlug,
		PlanType:          input.PlanType,
		AmountPaid:        input.AmountPaid,
		Status:            models.PurchaseCompleted,
		Provider:          input.Provider,
		ProviderPaymentID: input.ProviderPaymentID,
		ProvisionState:    models.ProvisionPending,
		ExpiresAt:         expiryFor(input, time.Now().UTC()),
	}
	if err := s.purchaseRepo.Create(ctx, nil, purchase); err != nil {
		if errors.Is(err, repositories.ErrPurchaseIDConflict) {
			// Lost a race with a concurrent delivery of the same event.
			return s.purchaseRepo.GetByExternalID(ctx, input.ExternalID)
		}
		return nil, err
	}

	// The purchase row is created exactly once per external id, so this is
	// the spot where a confirmed payment burns its coupon use.
	s.recordCouponUse(ctx, input.CouponCode)

	if err := s.run(ctx, purchase, input.CampaignName, input.CustomerName, input.TrialDays > 0); err != nil {
		return purchase, err
	}
	return purchase, nil
}

func (s *provisioningService) Resume(ctx context.Context, purchase *models.Purchase) error {
	// The campaign name is not stored on the purchase; when resuming we
	// reuse the slug as a display name only if the campaign row was never
	// created. The demo flag survives a resume through the plan type.
	return s.run(ctx, purchase, purchase.CampaignSlug, "", purchase.PlanType == models.PlanTrial)
}

func (s *provisioningService) ResumeStuck(ctx context.Context) (int, error) {
	stuck, err := s.purchaseRepo.ListUnprovisioned(ctx, time.Now().UTC().Add(-provisionResumeGrace))
	if err != nil {
		return 0, fmt.Errorf("failed to list unprovisioned purchases: %w", err)
	}

	resumed := 0
	for _, purchase := range stuck {
		if errResume := s.Resume(ctx, purchase); errResume != nil {
			s.logger.Error("failed to resume provisioning",
				"purchase_id", purchase.ID,
				"campaign_slug", purchase.CampaignSlug,
				"state", purchase.ProvisionState,
				"error", errResume)
			continue
		}
		resumed++
	}
	return resumed, nil
}

// run executes the pipeline from the purchase's current state forward.
// Each step is individually idempotent.
func (s *provisioningService) run(ctx context.Context, purchase *models.Purchase, campaignName, customerName string, isDemo bool) error {
	tempPassword := ""

	if purchase.ProvisionState == models.ProvisionPending {
		if err := s.ensureCampaign(ctx, purchase, campaignName, isDemo); err != nil {
			return err
		}
		if err := s.advance(ctx, purchase, models.ProvisionCampaignCreated); err != nil {
			return err
		}
	}

	if purchase.ProvisionState == models.ProvisionCampaignCreated {
		if err := s.ensureUser(ctx, purchase, customerName); err != nil {
			return err
		}
		if err := s.advance(ctx, purchase, models.ProvisionUserProvisioned); err != nil {
			return err
		}
	}

	if purchase.ProvisionState == models.ProvisionUserProvisioned {
		password, err := s.ensureOwnerAdmin(ctx, purchase)
		if err != nil {
			return err
		}
		tempPassword = password
		if err := s.advance(ctx, purchase, models.ProvisionCredentialsIssued); err != nil {
			return err
		}
	}

	if purchase.ProvisionState == models.ProvisionCredentialsIssued {
		if err := s.notify(ctx, purchase, tempPassword); err != nil {
			return err
		}
		if err := s.advance(ctx, purchase, models.ProvisionNotified); err != nil {
			return err
		}
	}

	if purchase.ProvisionState == models.ProvisionNotified {
		if err := s.advance(ctx, purchase, models.ProvisionComplete); err != nil {
			return err
		}
		s.logger.Info("campaign provisioned",
			"campaign_slug", purchase.CampaignSlug,
			"purchase_id", purchase.ID,
			"provider", purchase.Provider)
	}
	return nil
}

func (s *provisioningService) advance(ctx context.Context, purchase *models.Purchase, state models.ProvisionState) error {
	if err := s.purchaseRepo.UpdateProvisionState(ctx, purchase.ID, state); err != nil {
		return fmt.Errorf("failed to advance purchase %d to %s: %w", purchase.ID, state, err)
	}
	purchase.ProvisionState = state
	return nil
}

func (s *provisioningService) ensureCampaign(ctx context.Context, purchase *models.Purchase, name string, isDemo bool) error {
	exists, err := s.campaignRepo.SlugExists(ctx, purchase.CampaignSlug)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if name == "" {
		name = purchase.CampaignSlug
	}
	campaign := &models.Campaign{
		Slug:           purchase.CampaignSlug,
		Name:           name,
		OrganizerEmail: purchase.CustomerEmail,
		IsActive:       true,
		IsDemo:         isDemo,
		PurchaseID:     &purchase.ID,
	}
	if err := s.campaignRepo.Create(ctx, nil, campaign); err != nil {
		if errors.Is(err, repositories.ErrCampaignSlugConflict) {
			return nil
		}
		return fmt.Errorf("failed to create campaign %q: %w", purchase.CampaignSlug, err)
	}
	return nil
}

func (s *provisioningService) ensureUser(ctx context.Context, purchase *models.Purchase, name string) error {
	_, err := s.userRepo.GetByEmail(ctx, nil, purchase.CustomerEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	// Organizer accounts created through provisioning have no usable
	// password until a reset; the hash is random.
	random, err := utils.GenerateRandomToken(32)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(random)
	if err != nil {
		return err
	}
	if name == "" {
		name = purchase.CustomerEmail
	}
	user := &models.User{Email: purchase.CustomerEmail, Name: name, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil
		}
		return fmt.Errorf("failed to create organizer account: %w", err)
	}
	return nil
}

// ensureOwnerAdmin creates the campaign owner credential with a temporary
// password. The plain password is returned for the welcome email and never
// stored; on resume it is empty and the reset token covers recovery.
func (s *provisioningService) ensureOwnerAdmin(ctx context.Context, purchase *models.Purchase) (string, error) {
	campaign, err := s.campaignRepo.GetBySlug(ctx, purchase.CampaignSlug)
	if err != nil {
		return "", err
	}

	if _, err := s.adminRepo.GetOwner(ctx, nil, campaign.ID); err == nil {
		return "", nil
	} else if !errors.Is(err, repositories.ErrAdminUserNotFound) {
		return "", err
	}

	tempPassword, err := utils.GenerateTempPassword()
	if err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		return "", err
	}
	token, err := utils.GenerateRandomToken(resetTokenLength)
	if err != nil {
		return "", err
	}
	tokenExpiry := time.Now().UTC().Add(resetTokenValidity)

	admin := &models.AdminUser{
		CampaignID:          campaign.ID,
		Username:            ownerUsername,
		PasswordHash:        hash,
		IsOwner:             true,
		Active:              true,
		NeedsPasswordChange: true,
		ResetToken:          &token,
		ResetTokenExpiresAt: &tokenExpiry,
	}
	if err := s.adminRepo.Create(ctx, nil, admin); err != nil {
		if errors.Is(err, repositories.ErrAdminUsernameConflict) {
			return "", nil
		}
		return "", fmt.Errorf("failed to create owner admin: %w", err)
	}
	return tempPassword, nil
}

func (s *provisioningService) notify(ctx context.Context, purchase *models.Purchase, tempPassword string) error {
	campaign, err := s.campaignRepo.GetBySlug(ctx, purchase.CampaignSlug)
	if err != nil {
		return err
	}
	owner, err := s.adminRepo.GetOwner(ctx, nil, campaign.ID)
	if err != nil {
		return err
	}

	campaignURL := fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, campaign.Slug)
	adminURL := fmt.Sprintf("%s/%s", s.cfg.AdminBaseURL, campaign.Slug)

	if tempPassword != "" {
		data := WelcomeEmailData{
			CampaignName: campaign.Name,
			CampaignURL:  campaignURL,
			AdminURL:     adminURL,
			Username:     owner.Username,
			TempPassword: tempPassword,
			SetupURL:     s.setupURL(owner),
		}
		if errMail := s.mailer.SendWelcomeEmail(purchase.CustomerEmail, data); errMail != nil {
			return fmt.Errorf("failed to send welcome email: %w", errMail)
		}
	} else {
		// Resumed after credentials were issued: the temporary password is
		// gone, so recovery goes through the reset link.
		resetURL := s.setupURL(owner)
		if resetURL == "" {
			token, errToken := s.rotateResetToken(ctx, owner)
			if errToken != nil {
				return errToken
			}
			resetURL = fmt.Sprintf("%s/reset-password?token=%s", s.cfg.AdminBaseURL, token)
		}
		if errMail := s.mailer.SendPasswordResetEmail(purchase.CustomerEmail, owner.Username, resetURL); errMail != nil {
			return fmt.Errorf("failed to send credentials recovery email: %w", errMail)
		}
	}

	// Internal heads-up only; failure must not stall the pipeline.
	subject := fmt.Sprintf("Nova campanha: %s", campaign.Slug)
	message := fmt.Sprintf("Campanha %q provisionada para %s (plano %s, R$ %.2f).",
		campaign.Name, purchase.CustomerEmail, purchase.PlanType, float64(purchase.AmountPaid)/100)
	if errNotify := s.mailer.SendOwnerNotification(subject, message); errNotify != nil {
		s.logger.Warn("owner notification failed", "campaign_slug", campaign.Slug, "error", errNotify)
	}
	return nil
}

func (s *provisioningService) setupURL(owner *models.AdminUser) string {
	if owner.ResetToken == nil || owner.ResetTokenExpiresAt == nil {
		return ""
	}
	if owner.ResetTokenExpiresAt.Before(time.Now().UTC()) {
		return ""
	}
	return fmt.Sprintf("%s/reset-password?token=%s", s.cfg.AdminBaseURL, *owner.ResetToken)
}

func (s *provisioningService) rotateResetToken(ctx context.Context, owner *models.AdminUser) (string, error) {
	token, err := utils.GenerateRandomToken(resetTokenLength)
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().UTC().Add(resetTokenValidity)
	if err := s.adminRepo.SetResetToken(ctx, nil, owner.ID, token, expiresAt); err != nil {
		return "", err
	}
	owner.ResetToken = &token
	owner.ResetTokenExpiresAt = &expiresAt
	return token, nil
}

// recordCouponUse counts a confirmed payment against its coupon. Failures
// are logged and never stall provisioning.
func (s *provisioningService) recordCouponUse(ctx context.Context, code string) {
	if code == "" {
		return
	}
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Warn("coupon lookup failed after payment", "coupon", code, "error", err)
		return
	}
	if err := s.couponRepo.IncrementUses(ctx, coupon.ID); err != nil {
		s.logger.Warn("failed to record coupon use", "coupon", code, "error", err)
	}
}

func expiryFor(input ProvisionInput, now time.Time) time.Time {
	if input.TrialDays > 0 {
		return now.AddDate(0, 0, input.TrialDays)
	}
	months := input.Months
	if months <= 0 {
		months = 1
	}
	return now.AddDate(0, months, 0)
}
