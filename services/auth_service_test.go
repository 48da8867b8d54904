package services

import (
	"context"
	"testing"
	"time"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	service   AuthService
	campaigns *fakeCampaignRepo
	admins    *fakeAdminRepo
	mailer    *fakeMailer
	campaign  *models.Campaign
	admin     *models.AdminUser
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		campaigns: newFakeCampaignRepo(),
		admins:    newFakeAdminRepo(),
		mailer:    &fakeMailer{},
	}
	cfg := &config.Config{
		JWTSecretKey: "test-secret",
		AdminBaseURL: "https://admin.copafacil.example",
	}
	f.service = NewAuthService(f.admins, f.campaigns, f.mailer, cfg, discardLogger())

	f.campaign = &models.Campaign{Slug: "copa-teste", Name: "Copa Teste", OrganizerEmail: "dona@example.com", IsActive: true}
	require.NoError(t, f.campaigns.Create(context.Background(), nil, f.campaign))

	hash, err := utils.HashPassword("senha-segura")
	require.NoError(t, err)
	f.admin = &models.AdminUser{
		CampaignID:   f.campaign.ID,
		Username:     "admin",
		PasswordHash: hash,
		IsOwner:      true,
		Active:       true,
	}
	require.NoError(t, f.admins.Create(context.Background(), nil, f.admin))
	return f
}

func TestLoginIssuesScopedToken(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), "copa-teste", "admin", "senha-segura")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.NeedsPasswordChange)

	claims, err := f.service.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.AdminID)
	assert.Equal(t, f.campaign.ID, claims.CampaignID)
	assert.True(t, claims.IsOwner)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), "copa-teste", "admin", "senha-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(context.Background(), "copa-teste", "ninguem", "senha-segura")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// An unknown campaign looks exactly like a bad password.
	_, err = f.service.Login(context.Background(), "copa-fantasma", "admin", "senha-segura")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDeactivatedAdmin(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.admins.SetActive(context.Background(), f.admin.ID, false))

	_, err := f.service.Login(context.Background(), "copa-teste", "admin", "senha-segura")
	assert.ErrorIs(t, err, ErrAdminInactive)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)

	err := f.service.ChangePassword(context.Background(), f.admin.ID, "senha-segura", "curta")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	err = f.service.ChangePassword(context.Background(), f.admin.ID, "senha-errada", "nova-senha-longa")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.service.ChangePassword(context.Background(), f.admin.ID, "senha-segura", "nova-senha-longa"))

	_, err = f.service.Login(context.Background(), "copa-teste", "admin", "nova-senha-longa")
	assert.NoError(t, err)
	_, err = f.service.Login(context.Background(), "copa-teste", "admin", "senha-segura")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordClearsResetToken(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.admins.SetResetToken(context.Background(), nil, f.admin.ID, "pending-token", time.Now().UTC().Add(time.Hour)))

	require.NoError(t, f.service.ChangePassword(context.Background(), f.admin.ID, "senha-segura", "nova-senha-longa"))

	assert.Nil(t, f.admin.ResetToken)
}

func TestRequestPasswordResetSendsEmail(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "copa-teste", "admin"))

	require.Len(t, f.mailer.resets, 1)
	assert.Equal(t, "dona@example.com", f.mailer.resets[0].to)
	require.NotNil(t, f.admin.ResetToken)
	assert.Contains(t, f.mailer.resetURLs[0], *f.admin.ResetToken)
}

func TestRequestPasswordResetNeverRevealsExistence(t *testing.T) {
	f := newAuthFixture(t)

	assert.NoError(t, f.service.RequestPasswordReset(context.Background(), "copa-fantasma", "admin"))
	assert.NoError(t, f.service.RequestPasswordReset(context.Background(), "copa-teste", "ninguem"))
	assert.Empty(t, f.mailer.resets)
}

func TestResetPasswordByToken(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "copa-teste", "admin"))
	token := *f.admin.ResetToken

	err := f.service.ResetPasswordByToken(context.Background(), token, "curta")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, f.service.ResetPasswordByToken(context.Background(), token, "senha-nova-valida"))

	_, err = f.service.Login(context.Background(), "copa-teste", "admin", "senha-nova-valida")
	assert.NoError(t, err)

	// The token is single-use.
	err = f.service.ResetPasswordByToken(context.Background(), token, "outra-senha-valida")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordByTokenRejectsExpired(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.admins.SetResetToken(context.Background(), nil, f.admin.ID, "old-token", time.Now().UTC().Add(-time.Minute)))

	err := f.service.ResetPasswordByToken(context.Background(), "old-token", "senha-nova-valida")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	err = f.service.ResetPasswordByToken(context.Background(), "token-inexistente", "senha-nova-valida")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
