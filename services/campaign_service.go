package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/storage"
)

// CampaignStatus is the public lifecycle view of a campaign.
type CampaignStatus struct {
	Campaign  *models.Campaign `json:"campaign"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	PlanType  models.PlanType  `json:"plan_type,omitempty"`
}

type CampaignService interface {
	// GetBySlug returns the campaign for public rendering; inactive
	// campaigns are reported as ErrCampaignInactive so the site can show
	// an expired page instead of a 404.
	GetBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	GetByID(ctx context.Context, id int) (*models.Campaign, error)
	Status(ctx context.Context, slug string) (*CampaignStatus, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	UploadLogo(ctx context.Context, campaignID int, contentType string, file io.Reader) (*models.Campaign, error)
	List(ctx context.Context) ([]*models.Campaign, error)
}

type campaignService struct {
	campaignRepo repositories.CampaignRepository
	purchaseRepo repositories.PurchaseRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	purchaseRepo repositories.PurchaseRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		purchaseRepo: purchaseRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *campaignService) GetBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	s.fillLogoURL(campaign)
	if !campaign.IsActive {
		return campaign, ErrCampaignInactive
	}
	return campaign, nil
}

func (s *campaignService) GetByID(ctx context.Context, id int) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	s.fillLogoURL(campaign)
	return campaign, nil
}

func (s *campaignService) Status(ctx context.Context, slug string) (*CampaignStatus, error) {
	campaign, err := s.campaignRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	s.fillLogoURL(campaign)

	status := &CampaignStatus{Campaign: campaign}
	purchase, err := s.purchaseRepo.GetByCampaignSlug(ctx, slug)
	if err == nil {
		status.ExpiresAt = &purchase.ExpiresAt
		status.PlanType = purchase.PlanType
	} else if !errors.Is(err, repositories.ErrPurchaseNotFound) {
		return nil, err
	}
	return status, nil
}

func (s *campaignService) Update(ctx context.Context, campaign *models.Campaign) error {
	campaign.Name = strings.TrimSpace(campaign.Name)
	if campaign.Name == "" {
		return ErrValidationFailed
	}
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	return nil
}

func (s *campaignService) UploadLogo(ctx context.Context, campaignID int, contentType string, file io.Reader) (*models.Campaign, error) {
	campaign, err := s.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("campaigns/%d/logo-%s", campaignID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload campaign logo: %w", err)
	}

	oldKey := campaign.LogoKey
	campaign.LogoKey = &result.Key
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if errDel := s.uploader.Delete(ctx, *oldKey); errDel != nil {
			s.logger.Warn("failed to delete old campaign logo", "key", *oldKey, "error", errDel)
		}
	}
	s.fillLogoURL(campaign)
	return campaign, nil
}

func (s *campaignService) List(ctx context.Context) ([]*models.Campaign, error) {
	campaigns, err := s.campaignRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, campaign := range campaigns {
		s.fillLogoURL(campaign)
	}
	return campaigns, nil
}

func (s *campaignService) fillLogoURL(campaign *models.Campaign) {
	if campaign.LogoKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*campaign.LogoKey)
	campaign.LogoURL = &url
}
