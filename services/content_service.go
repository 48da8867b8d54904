package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/storage"
)

type PhotoService interface {
	Upload(ctx context.Context, campaignID int, caption *string, contentType string, file io.Reader) (*models.Photo, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Photo, error)
	UpdateCaption(ctx context.Context, id int, caption *string) error
	Delete(ctx context.Context, id int) error
}

type AnnouncementService interface {
	Create(ctx context.Context, a *models.Announcement) error
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	SetPinned(ctx context.Context, id int, pinned bool) error
	Delete(ctx context.Context, id int) error
}

type SponsorService interface {
	Create(ctx context.Context, sponsor *models.Sponsor) error
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Sponsor, error)
	Update(ctx context.Context, sponsor *models.Sponsor) error
	UploadImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Sponsor, error)
	// Reorder rewrites positions to match the given id order.
	Reorder(ctx context.Context, campaignID int, orderedIDs []int) error
	Delete(ctx context.Context, id int) error
}

type photoService struct {
	photoRepo repositories.PhotoRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewPhotoService(photoRepo repositories.PhotoRepository, uploader storage.FileUploader, logger *slog.Logger) PhotoService {
	return &photoService{photoRepo: photoRepo, uploader: uploader, logger: logger}
}

func (s *photoService) Upload(ctx context.Context, campaignID int, caption *string, contentType string, file io.Reader) (*models.Photo, error) {
	key := fmt.Sprintf("campaigns/%d/photos/%s", campaignID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	photo := &models.Photo{
		CampaignID: campaignID,
		Key:        result.Key,
		Caption:    caption,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		if errDel := s.uploader.Delete(ctx, result.Key); errDel != nil {
			s.logger.Warn("failed to delete orphaned photo object", "key", result.Key, "error", errDel)
		}
		return nil, err
	}
	photo.URL = s.uploader.GetPublicURL(photo.Key)
	return photo, nil
}

func (s *photoService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Photo, error) {
	photos, err := s.photoRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for _, photo := range photos {
		photo.URL = s.uploader.GetPublicURL(photo.Key)
	}
	return photos, nil
}

func (s *photoService) UpdateCaption(ctx context.Context, id int, caption *string) error {
	if err := s.photoRepo.UpdateCaption(ctx, id, caption); err != nil {
		if errors.Is(err, repositories.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *photoService) Delete(ctx context.Context, id int) error {
	photo, err := s.photoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.photoRepo.Delete(ctx, id); err != nil {
		return err
	}
	if errDel := s.uploader.Delete(ctx, photo.Key); errDel != nil {
		s.logger.Warn("failed to delete photo object", "key", photo.Key, "error", errDel)
	}
	return nil
}

type announcementService struct {
	announcementRepo repositories.AnnouncementRepository
}

func NewAnnouncementService(announcementRepo repositories.AnnouncementRepository) AnnouncementService {
	return &announcementService{announcementRepo: announcementRepo}
}

func (s *announcementService) Create(ctx context.Context, a *models.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return ErrValidationFailed
	}
	return s.announcementRepo.Create(ctx, a)
}

func (s *announcementService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Announcement, error) {
	return s.announcementRepo.ListByCampaign(ctx, campaignID)
}

func (s *announcementService) Update(ctx context.Context, a *models.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return ErrValidationFailed
	}
	if err := s.announcementRepo.Update(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *announcementService) SetPinned(ctx context.Context, id int, pinned bool) error {
	if err := s.announcementRepo.SetPinned(ctx, id, pinned); err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *announcementService) Delete(ctx context.Context, id int) error {
	if err := s.announcementRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAnnouncementNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type sponsorService struct {
	sponsorRepo repositories.SponsorRepository
	uploader    storage.FileUploader
	logger      *slog.Logger
}

func NewSponsorService(sponsorRepo repositories.SponsorRepository, uploader storage.FileUploader, logger *slog.Logger) SponsorService {
	return &sponsorService{sponsorRepo: sponsorRepo, uploader: uploader, logger: logger}
}

func (s *sponsorService) Create(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.Name = strings.TrimSpace(sponsor.Name)
	if sponsor.Name == "" {
		return ErrValidationFailed
	}
	return s.sponsorRepo.Create(ctx, sponsor)
}

func (s *sponsorService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Sponsor, error) {
	sponsors, err := s.sponsorRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for _, sponsor := range sponsors {
		s.fillImageURL(sponsor)
	}
	return sponsors, nil
}

func (s *sponsorService) Update(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.Name = strings.TrimSpace(sponsor.Name)
	if sponsor.Name == "" {
		return ErrValidationFailed
	}
	if err := s.sponsorRepo.Update(ctx, sponsor); err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *sponsorService) UploadImage(ctx context.Context, id int, contentType string, file io.Reader) (*models.Sponsor, error) {
	sponsor, err := s.sponsorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("campaigns/%d/sponsors/%d-%s", sponsor.CampaignID, id, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sponsor image: %w", err)
	}

	oldKey := sponsor.ImageKey
	sponsor.ImageKey = &result.Key
	if err := s.sponsorRepo.Update(ctx, sponsor); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if errDel := s.uploader.Delete(ctx, *oldKey); errDel != nil {
			s.logger.Warn("failed to delete old sponsor image", "key", *oldKey, "error", errDel)
		}
	}
	s.fillImageURL(sponsor)
	return sponsor, nil
}

func (s *sponsorService) Reorder(ctx context.Context, campaignID int, orderedIDs []int) error {
	sponsors, err := s.sponsorRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.Sponsor, len(sponsors))
	for _, sponsor := range sponsors {
		byID[sponsor.ID] = sponsor
	}

	for position, id := range orderedIDs {
		sponsor, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: sponsor %d does not belong to campaign %d", ErrValidationFailed, id, campaignID)
		}
		if sponsor.Position == position {
			continue
		}
		sponsor.Position = position
		if err := s.sponsorRepo.Update(ctx, sponsor); err != nil {
			return err
		}
	}
	return nil
}

func (s *sponsorService) Delete(ctx context.Context, id int) error {
	sponsor, err := s.sponsorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSponsorNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.sponsorRepo.Delete(ctx, id); err != nil {
		return err
	}
	if sponsor.ImageKey != nil {
		if errDel := s.uploader.Delete(ctx, *sponsor.ImageKey); errDel != nil {
			s.logger.Warn("failed to delete sponsor image", "key", *sponsor.ImageKey, "error", errDel)
		}
	}
	return nil
}

func (s *sponsorService) fillImageURL(sponsor *models.Sponsor) {
	if sponsor.ImageKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*sponsor.ImageKey)
	sponsor.ImageURL = &url
}
