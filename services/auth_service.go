package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
	"github.com/copafacil/copa-manager/utils"
)

const (
	tokenValidity     = 24 * time.Hour
	minPasswordLength = 8
)

type LoginResult struct {
	Token               string            `json:"token"`
	Admin               *models.AdminUser `json:"admin"`
	NeedsPasswordChange bool              `json:"needs_password_change"`
}

// AuthService authenticates campaign admins and manages their credentials.
type AuthService interface {
	// Login authenticates an admin of the campaign behind slug and returns
	// a signed token scoped to that campaign.
	Login(ctx context.Context, slug, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, adminID int, currentPassword, newPassword string) error
	// RequestPasswordReset issues a one-time reset token and emails it. It
	// never reveals whether the username exists.
	RequestPasswordReset(ctx context.Context, slug, username string) error
	ResetPasswordByToken(ctx context.Context, token, newPassword string) error
	ParseToken(tokenString string) (*AdminClaims, error)
}

// AdminClaims is the verified content of an admin token.
type AdminClaims struct {
	AdminID    int
	CampaignID int
	IsOwner    bool
}

type authService struct {
	adminRepo    repositories.AdminUserRepository
	campaignRepo repositories.CampaignRepository
	mailer       ProvisionMailer
	cfg          *config.Config
	logger       *slog.Logger
}

func NewAuthService(
	adminRepo repositories.AdminUserRepository,
	campaignRepo repositories.CampaignRepository,
	mailer ProvisionMailer,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	return &authService{
		adminRepo:    adminRepo,
		campaignRepo: campaignRepo,
		mailer:       mailer,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *authService) Login(ctx context.Context, slug, username, password string) (*LoginResult, error) {
	campaign, err := s.campaignRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	admin, err := s.adminRepo.GetByUsername(ctx, campaign.ID, username)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.Active {
		return nil, ErrAdminInactive
	}
	if !utils.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(admin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:               token,
		Admin:               admin,
		NeedsPasswordChange: admin.NeedsPasswordChange,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, adminID int, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	if !utils.CheckPasswordHash(currentPassword, admin.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.adminRepo.UpdatePassword(ctx, nil, admin.ID, hash, false); err != nil {
		return err
	}
	// A successful change invalidates any pending reset token.
	if err := s.adminRepo.ClearResetToken(ctx, admin.ID); err != nil {
		s.logger.Warn("failed to clear reset token after password change", "admin_id", admin.ID, "error", err)
	}
	return nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, slug, username string) error {
	campaign, err := s.campaignRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrCampaignNotFound) {
			return nil
		}
		return err
	}
	admin, err := s.adminRepo.GetByUsername(ctx, campaign.ID, username)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminUserNotFound) {
			return nil
		}
		return err
	}
	if !admin.Active {
		return nil
	}

	token, err := utils.GenerateRandomToken(resetTokenLength)
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(resetTokenValidity)
	if err := s.adminRepo.SetResetToken(ctx, nil, admin.ID, token, expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.AdminBaseURL, token)
	if err := s.mailer.SendPasswordResetEmail(campaign.OrganizerEmail, admin.Username, resetURL); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPasswordByToken(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	admin, err := s.adminRepo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminResetTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if admin.ResetTokenExpiresAt == nil || admin.ResetTokenExpiresAt.Before(time.Now().UTC()) {
		return ErrResetTokenInvalid
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.adminRepo.UpdatePassword(ctx, nil, admin.ID, hash, false); err != nil {
		return err
	}
	return s.adminRepo.ClearResetToken(ctx, admin.ID)
}

func (s *authService) signToken(admin *models.AdminUser) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"admin_id":    admin.ID,
		"campaign_id": admin.CampaignID,
		"is_owner":    admin.IsOwner,
		"iat":         now.Unix(),
		"exp":         now.Add(tokenValidity).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ParseToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrAuthenticationFailed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrAuthenticationFailed
	}
	adminID, okAdmin := claims["admin_id"].(float64)
	campaignID, okCampaign := claims["campaign_id"].(float64)
	if !okAdmin || !okCampaign {
		return nil, ErrAuthenticationFailed
	}
	isOwner, _ := claims["is_owner"].(bool)

	return &AdminClaims{
		AdminID:    int(adminID),
		CampaignID: int(campaignID),
		IsOwner:    isOwner,
	}, nil
}
