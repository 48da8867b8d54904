package services

import (
	"context"
	"testing"
	"time"

	"github.com/copafacil/copa-manager/config"
	"github.com/copafacil/copa-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provisioningFixture struct {
	service   ProvisioningService
	purchases *fakePurchaseRepo
	campaigns *fakeCampaignRepo
	users     *fakeUserRepo
	admins    *fakeAdminRepo
	coupons   *fakeCouponRepo
	mailer    *fakeMailer
}

func newProvisioningFixture() *provisioningFixture {
	f := &provisioningFixture{
		purchases: newFakePurchaseRepo(),
		campaigns: newFakeCampaignRepo(),
		users:     newFakeUserRepo(),
		admins:    newFakeAdminRepo(),
		coupons:   newFakeCouponRepo(),
		mailer:    &fakeMailer{},
	}
	cfg := &config.Config{
		JWTSecretKey:  "test-secret",
		PublicBaseURL: "https://copafacil.example",
		AdminBaseURL:  "https://admin.copafacil.example",
	}
	f.service = NewProvisioningService(f.purchases, f.campaigns, f.users, f.admins, f.coupons, f.mailer, cfg, discardLogger())
	return f
}

func paidInput() ProvisionInput {
	return ProvisionInput{
		ExternalID:        "cs_test_123",
		Provider:          ProviderStripe,
		ProviderPaymentID: "pi_123",
		CustomerEmail:     "organizador@example.com",
		CustomerName:      "Organizador",
		CampaignSlug:      "copa-do-bairro",
		CampaignName:      "Copa do Bairro",
		PlanType:          models.PlanSixMonths,
		Months:            6,
		AmountPaid:        19900,
	}
}

func TestProvisionCreatesEverything(t *testing.T) {
	f := newProvisioningFixture()

	purchase, err := f.service.Provision(context.Background(), paidInput())
	require.NoError(t, err)
	assert.Equal(t, models.ProvisionComplete, purchase.ProvisionState)
	assert.Equal(t, models.PurchaseCompleted, purchase.Status)

	campaign, err := f.campaigns.GetBySlug(context.Background(), "copa-do-bairro")
	require.NoError(t, err)
	assert.Equal(t, "Copa do Bairro", campaign.Name)
	assert.True(t, campaign.IsActive)
	assert.False(t, campaign.IsDemo)

	_, err = f.users.GetByEmail(context.Background(), nil, "organizador@example.com")
	assert.NoError(t, err)

	owner, err := f.admins.GetOwner(context.Background(), nil, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", owner.Username)
	assert.True(t, owner.NeedsPasswordChange)
	assert.NotEmpty(t, owner.PasswordHash)
	require.NotNil(t, owner.ResetToken)

	require.Len(t, f.mailer.welcome, 1)
	assert.Equal(t, "organizador@example.com", f.mailer.welcomeTo[0])
	assert.NotEmpty(t, f.mailer.welcome[0].TempPassword)
	assert.Contains(t, f.mailer.welcome[0].CampaignURL, "copa-do-bairro")
	assert.Len(t, f.mailer.notifications, 1)
}

func TestProvisionExpirySixMonths(t *testing.T) {
	f := newProvisioningFixture()

	purchase, err := f.service.Provision(context.Background(), paidInput())
	require.NoError(t, err)

	expected := time.Now().UTC().AddDate(0, 6, 0)
	assert.WithinDuration(t, expected, purchase.ExpiresAt, time.Minute)
}

func TestProvisionTrialExpiresInDays(t *testing.T) {
	f := newProvisioningFixture()

	input := paidInput()
	input.ExternalID = "trial-abc"
	input.Provider = ProviderTrial
	input.PlanType = models.PlanTrial
	input.Months = 0
	input.TrialDays = 7
	input.AmountPaid = 0

	purchase, err := f.service.Provision(context.Background(), input)
	require.NoError(t, err)

	expected := time.Now().UTC().AddDate(0, 0, 7)
	assert.WithinDuration(t, expected, purchase.ExpiresAt, time.Minute)

	campaign, err := f.campaigns.GetBySlug(context.Background(), "copa-do-bairro")
	require.NoError(t, err)
	assert.True(t, campaign.IsDemo)
}

func TestProvisionIsIdempotent(t *testing.T) {
	f := newProvisioningFixture()

	first, err := f.service.Provision(context.Background(), paidInput())
	require.NoError(t, err)

	// A retried webhook delivery must not create anything twice.
	second, err := f.service.Provision(context.Background(), paidInput())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, f.campaigns.campaigns, 1)
	assert.Len(t, f.admins.admins, 1)
	assert.Len(t, f.mailer.welcome, 1, "welcome email goes out exactly once")
}

func TestProvisionCountsCouponUseOnce(t *testing.T) {
	f := newProvisioningFixture()
	coupon := &models.Coupon{Code: "COPA10", DiscountPercent: 10, Active: true}
	require.NoError(t, f.coupons.Create(context.Background(), coupon))

	input := paidInput()
	input.CouponCode = "COPA10"

	_, err := f.service.Provision(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.Uses)

	// The retried delivery must not count the coupon again.
	_, err = f.service.Provision(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.Uses)
}

func TestProvisionUnknownCouponDoesNotStall(t *testing.T) {
	f := newProvisioningFixture()

	input := paidInput()
	input.CouponCode = "SUMIU"

	purchase, err := f.service.Provision(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.ProvisionComplete, purchase.ProvisionState)
}

func TestProvisionRequiresSlugAndEmail(t *testing.T) {
	f := newProvisioningFixture()

	input := paidInput()
	input.CampaignSlug = ""
	_, err := f.service.Provision(context.Background(), input)
	assert.ErrorIs(t, err, ErrProvisionSlugMissing)

	input = paidInput()
	input.CustomerEmail = ""
	_, err = f.service.Provision(context.Background(), input)
	assert.ErrorIs(t, err, ErrProvisionEmailMissing)
}

func TestResumeAfterCredentialsSendsResetLink(t *testing.T) {
	f := newProvisioningFixture()

	// A pipeline that crashed right after issuing credentials: campaign,
	// user and owner exist, but no email ever went out.
	token := "existing-token"
	expiry := time.Now().UTC().Add(time.Hour)
	campaign := &models.Campaign{Slug: "copa-parada", Name: "Copa Parada", OrganizerEmail: "dona@example.com", IsActive: true}
	require.NoError(t, f.campaigns.Create(context.Background(), nil, campaign))
	require.NoError(t, f.admins.Create(context.Background(), nil, &models.AdminUser{
		CampaignID:          campaign.ID,
		Username:            "admin",
		PasswordHash:        "x",
		IsOwner:             true,
		Active:              true,
		ResetToken:          &token,
		ResetTokenExpiresAt: &expiry,
	}))
	purchase := &models.Purchase{
		ExternalID:     "cs_stuck",
		CustomerEmail:  "dona@example.com",
		CampaignSlug:   "copa-parada",
		PlanType:       models.PlanTwoMonths,
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionCredentialsIssued,
		ExpiresAt:      time.Now().UTC().AddDate(0, 2, 0),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	require.NoError(t, f.service.Resume(context.Background(), purchase))

	assert.Equal(t, models.ProvisionComplete, purchase.ProvisionState)
	assert.Empty(t, f.mailer.welcome, "the temporary password is gone after a restart")
	require.Len(t, f.mailer.resets, 1)
	assert.Equal(t, "dona@example.com", f.mailer.resets[0].to)
	assert.Contains(t, f.mailer.resetURLs[0], token)
}

func TestResumeRotatesExpiredResetToken(t *testing.T) {
	f := newProvisioningFixture()

	token := "stale-token"
	expiry := time.Now().UTC().Add(-time.Hour)
	campaign := &models.Campaign{Slug: "copa-velha", Name: "Copa Velha", OrganizerEmail: "dona@example.com", IsActive: true}
	require.NoError(t, f.campaigns.Create(context.Background(), nil, campaign))
	require.NoError(t, f.admins.Create(context.Background(), nil, &models.AdminUser{
		CampaignID:          campaign.ID,
		Username:            "admin",
		IsOwner:             true,
		Active:              true,
		ResetToken:          &token,
		ResetTokenExpiresAt: &expiry,
	}))
	purchase := &models.Purchase{
		ExternalID:     "cs_stale",
		CustomerEmail:  "dona@example.com",
		CampaignSlug:   "copa-velha",
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionCredentialsIssued,
		ExpiresAt:      time.Now().UTC().AddDate(0, 1, 0),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	require.NoError(t, f.service.Resume(context.Background(), purchase))

	require.Len(t, f.mailer.resetURLs, 1)
	assert.NotContains(t, f.mailer.resetURLs[0], token, "expired token must be replaced")

	owner, err := f.admins.GetOwner(context.Background(), nil, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, owner.ResetTokenExpiresAt)
	assert.True(t, owner.ResetTokenExpiresAt.After(time.Now().UTC()))
}

func TestResumeStuckPicksUpOldPurchases(t *testing.T) {
	f := newProvisioningFixture()

	purchase := &models.Purchase{
		ExternalID:     "cs_orphan",
		CustomerEmail:  "orfa@example.com",
		CampaignSlug:   "copa-orfa",
		PlanType:       models.PlanOneYear,
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionPending,
		ExpiresAt:      time.Now().UTC().AddDate(1, 0, 0),
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	resumed, err := f.service.ResumeStuck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)
	assert.Equal(t, models.ProvisionComplete, purchase.ProvisionState)

	_, err = f.campaigns.GetBySlug(context.Background(), "copa-orfa")
	assert.NoError(t, err)
}

func TestResumeStuckKeepsTrialDemoFlag(t *testing.T) {
	f := newProvisioningFixture()

	// A trial signup that crashed before its campaign row was created.
	purchase := &models.Purchase{
		ExternalID:     "trial-interrompido",
		CustomerEmail:  "demo@example.com",
		CampaignSlug:   "copa-demo",
		PlanType:       models.PlanTrial,
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionPending,
		ExpiresAt:      time.Now().UTC().AddDate(0, 0, 7),
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	resumed, err := f.service.ResumeStuck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	campaign, err := f.campaigns.GetBySlug(context.Background(), "copa-demo")
	require.NoError(t, err)
	assert.True(t, campaign.IsDemo, "resumed trial campaign must stay a demo")
}

func TestResumeStuckLeavesFreshPurchasesAlone(t *testing.T) {
	f := newProvisioningFixture()

	purchase := &models.Purchase{
		ExternalID:     "cs_fresh",
		CustomerEmail:  "nova@example.com",
		CampaignSlug:   "copa-nova",
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionPending,
		ExpiresAt:      time.Now().UTC().AddDate(0, 1, 0),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	// Still inside the grace window; the live request may finish on its own.
	resumed, err := f.service.ResumeStuck(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resumed)
	assert.Equal(t, models.ProvisionPending, purchase.ProvisionState)
}
