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

type expirationFixture struct {
	service   ExpirationService
	purchases *fakePurchaseRepo
	campaigns *fakeCampaignRepo
	mailer    *fakeMailer
}

func newExpirationFixture() *expirationFixture {
	f := &expirationFixture{
		purchases: newFakePurchaseRepo(),
		campaigns: newFakeCampaignRepo(),
		mailer:    &fakeMailer{},
	}
	cfg := &config.Config{PublicBaseURL: "https://copafacil.example"}
	f.service = NewExpirationService(f.purchases, f.campaigns, f.mailer, cfg, discardLogger())
	return f
}

func (f *expirationFixture) seed(t *testing.T, slug string, expiresAt time.Time) (*models.Campaign, *models.Purchase) {
	t.Helper()
	campaign := &models.Campaign{Slug: slug, Name: slug, OrganizerEmail: slug + "@example.com", IsActive: true}
	require.NoError(t, f.campaigns.Create(context.Background(), nil, campaign))
	purchase := &models.Purchase{
		ExternalID:     "ext-" + slug,
		CustomerEmail:  campaign.OrganizerEmail,
		CampaignSlug:   slug,
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionComplete,
		ExpiresAt:      expiresAt,
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))
	return campaign, purchase
}

func TestSweepWarnsExpiringOnce(t *testing.T) {
	f := newExpirationFixture()
	_, purchase := f.seed(t, "copa-acabando", time.Now().UTC().Add(3*24*time.Hour))

	require.NoError(t, f.service.Run(context.Background()))

	require.Len(t, f.mailer.warnings, 1)
	assert.Equal(t, "copa-acabando@example.com", f.mailer.warnings[0].to)
	assert.NotNil(t, purchase.WarnedAt)
	assert.Empty(t, f.mailer.expired)

	// A second sweep must not warn again.
	require.NoError(t, f.service.Run(context.Background()))
	assert.Len(t, f.mailer.warnings, 1)
}

func TestSweepIgnoresDistantExpiry(t *testing.T) {
	f := newExpirationFixture()
	_, purchase := f.seed(t, "copa-tranquila", time.Now().UTC().Add(30*24*time.Hour))

	require.NoError(t, f.service.Run(context.Background()))

	assert.Empty(t, f.mailer.warnings)
	assert.Nil(t, purchase.WarnedAt)
}

func TestSweepNeverWarnsDeactivatedCampaign(t *testing.T) {
	f := newExpirationFixture()
	campaign, purchase := f.seed(t, "copa-desativada", time.Now().UTC().Add(3*24*time.Hour))
	require.NoError(t, f.campaigns.SetActive(context.Background(), campaign.ID, false))

	require.NoError(t, f.service.Run(context.Background()))

	assert.Empty(t, f.mailer.warnings)
	assert.Nil(t, purchase.WarnedAt)
}

func TestSweepDeactivatesExpired(t *testing.T) {
	f := newExpirationFixture()
	campaign, purchase := f.seed(t, "copa-vencida", time.Now().UTC().Add(-time.Hour))

	require.NoError(t, f.service.Run(context.Background()))

	assert.False(t, campaign.IsActive)
	assert.Equal(t, models.PurchaseExpired, purchase.Status)
	require.Len(t, f.mailer.expired, 1)
	assert.Equal(t, "copa-vencida@example.com", f.mailer.expired[0].to)
}

func TestSweepSkipsPurchaseWithoutCampaign(t *testing.T) {
	f := newExpirationFixture()
	purchase := &models.Purchase{
		ExternalID:     "ext-orfa",
		CustomerEmail:  "orfa@example.com",
		CampaignSlug:   "copa-orfa",
		Status:         models.PurchaseCompleted,
		ProvisionState: models.ProvisionPending,
		ExpiresAt:      time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, f.purchases.Create(context.Background(), nil, purchase))

	// Provisioning never finished; the sweep leaves it for recovery.
	require.NoError(t, f.service.Run(context.Background()))
	assert.Equal(t, models.PurchaseCompleted, purchase.Status)
	assert.Empty(t, f.mailer.expired)
}
