package services

import (
	"context"
	"errors"
	"strings"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/utils"
)

// AdminUserService manages the secondary admin accounts of a campaign.
// Every operation is restricted to the campaign owner.
type AdminUserService interface {
	// Create adds an admin and returns its one-time credentials; the plain
	// password is not stored and cannot be shown again.
	Create(ctx context.Context, actor *AdminClaims, username string) (*models.AdminCredentials, error)
	ListByCampaign(ctx context.Context, actor *AdminClaims) ([]*models.AdminUser, error)
	SetActive(ctx context.Context, actor *AdminClaims, adminID int, active bool) error
	Delete(ctx context.Context, actor *AdminClaims, adminID int) error
}

type adminUserService struct {
	adminRepo repositories.AdminUserRepository
}

func NewAdminUserService(adminRepo repositories.AdminUserRepository) AdminUserService {
	return &adminUserService{adminRepo: adminRepo}
}

func (s *adminUserService) Create(ctx context.Context, actor *AdminClaims, username string) (*models.AdminCredentials, error) {
	if !actor.IsOwner {
		return nil, ErrOwnerActionForbidden
	}
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, ErrValidationFailed
	}

	password, err := utils.GenerateTempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &models.AdminUser{
		CampaignID:          actor.CampaignID,
		Username:            username,
		PasswordHash:        hash,
		IsOwner:             false,
		Active:              true,
		NeedsPasswordChange: true,
	}
	if err := s.adminRepo.Create(ctx, nil, admin); err != nil {
		if errors.Is(err, repositories.ErrAdminUsernameConflict) {
			return nil, ErrAdminUsernameTaken
		}
		return nil, err
	}
	return &models.AdminCredentials{Username: username, Password: password}, nil
}

func (s *adminUserService) ListByCampaign(ctx context.Context, actor *AdminClaims) ([]*models.AdminUser, error) {
	if !actor.IsOwner {
		return nil, ErrOwnerActionForbidden
	}
	return s.adminRepo.ListByCampaign(ctx, actor.CampaignID)
}

func (s *adminUserService) SetActive(ctx context.Context, actor *AdminClaims, adminID int, active bool) error {
	target, err := s.ownedAdmin(ctx, actor, adminID)
	if err != nil {
		return err
	}
	if target.IsOwner {
		return ErrForbiddenOperation
	}
	return s.adminRepo.SetActive(ctx, adminID, active)
}

func (s *adminUserService) Delete(ctx context.Context, actor *AdminClaims, adminID int) error {
	target, err := s.ownedAdmin(ctx, actor, adminID)
	if err != nil {
		return err
	}
	if target.IsOwner {
		return ErrForbiddenOperation
	}
	return s.adminRepo.Delete(ctx, adminID)
}

// ownedAdmin loads the target admin and checks the actor may manage it.
func (s *adminUserService) ownedAdmin(ctx context.Context, actor *AdminClaims, adminID int) (*models.AdminUser, error) {
	if !actor.IsOwner {
		return nil, ErrOwnerActionForbidden
	}
	target, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	if target.CampaignID != actor.CampaignID {
		return nil, ErrAdminNotFound
	}
	return target, nil
}
