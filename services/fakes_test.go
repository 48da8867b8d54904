package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

// In-memory repository fakes shared by the service tests. They implement
// only the semantics the services rely on: sentinel errors for missing rows
// and the uniqueness conflicts of the real schema.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePurchaseRepo struct {
	nextID    int
	purchases map[int]*models.Purchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{nextID: 1, purchases: make(map[int]*models.Purchase)}
}

func (r *fakePurchaseRepo) Create(_ context.Context, _ repositories.SQLExecutor, purchase *models.Purchase) error {
	for _, p := range r.purchases {
		if p.ExternalID == purchase.ExternalID {
			return repositories.ErrPurchaseIDConflict
		}
	}
	purchase.ID = r.nextID
	r.nextID++
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}
	r.purchases[purchase.ID] = purchase
	return nil
}

func (r *fakePurchaseRepo) GetByID(_ context.Context, id int) (*models.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, repositories.ErrPurchaseNotFound
	}
	return p, nil
}

func (r *fakePurchaseRepo) GetByExternalID(_ context.Context, externalID string) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, repositories.ErrPurchaseNotFound
}

func (r *fakePurchaseRepo) GetByCampaignSlug(_ context.Context, slug string) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.CampaignSlug == slug {
			return p, nil
		}
	}
	return nil, repositories.ErrPurchaseNotFound
}

func (r *fakePurchaseRepo) UpdateStatus(_ context.Context, id int, status models.PurchaseStatus) error {
	p, ok := r.purchases[id]
	if !ok {
		return repositories.ErrPurchaseNotFound
	}
	p.Status = status
	return nil
}

func (r *fakePurchaseRepo) UpdateProvisionState(_ context.Context, id int, state models.ProvisionState) error {
	p, ok := r.purchases[id]
	if !ok {
		return repositories.ErrPurchaseNotFound
	}
	p.ProvisionState = state
	return nil
}

func (r *fakePurchaseRepo) MarkWarned(_ context.Context, id int, at time.Time) error {
	p, ok := r.purchases[id]
	if !ok {
		return repositories.ErrPurchaseNotFound
	}
	p.WarnedAt = &at
	return nil
}

func (r *fakePurchaseRepo) ListExpiringBetween(_ context.Context, from, to time.Time) ([]*models.Purchase, error) {
	var out []*models.Purchase
	for _, p := range r.purchases {
		if p.WarnedAt == nil && p.ExpiresAt.After(from) && p.ExpiresAt.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) ListExpired(_ context.Context, now time.Time) ([]*models.Purchase, error) {
	var out []*models.Purchase
	for _, p := range r.purchases {
		if p.Status == models.PurchaseCompleted && p.ExpiresAt.Before(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) ListUnprovisioned(_ context.Context, olderThan time.Time) ([]*models.Purchase, error) {
	var out []*models.Purchase
	for _, p := range r.purchases {
		if p.ProvisionState != models.ProvisionComplete && p.CreatedAt.Before(olderThan) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCampaignRepo struct {
	nextID    int
	campaigns map[int]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{nextID: 1, campaigns: make(map[int]*models.Campaign)}
}

func (r *fakeCampaignRepo) Create(_ context.Context, _ repositories.SQLExecutor, campaign *models.Campaign) error {
	for _, c := range r.campaigns {
		if c.Slug == campaign.Slug {
			return repositories.ErrCampaignSlugConflict
		}
	}
	campaign.ID = r.nextID
	r.nextID++
	campaign.CreatedAt = time.Now().UTC()
	r.campaigns[campaign.ID] = campaign
	return nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id int) (*models.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, repositories.ErrCampaignNotFound
	}
	return c, nil
}

func (r *fakeCampaignRepo) GetBySlug(_ context.Context, slug string) (*models.Campaign, error) {
	for _, c := range r.campaigns {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repositories.ErrCampaignNotFound
}

func (r *fakeCampaignRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, c := range r.campaigns {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, campaign *models.Campaign) error {
	if _, ok := r.campaigns[campaign.ID]; !ok {
		return repositories.ErrCampaignNotFound
	}
	r.campaigns[campaign.ID] = campaign
	return nil
}

func (r *fakeCampaignRepo) SetActive(_ context.Context, id int, active bool) error {
	c, ok := r.campaigns[id]
	if !ok {
		return repositories.ErrCampaignNotFound
	}
	c.IsActive = active
	return nil
}

func (r *fakeCampaignRepo) List(_ context.Context) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		out = append(out, c)
	}
	return out, nil
}

type fakeUserRepo struct {
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ repositories.SQLExecutor, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

type fakeAdminRepo struct {
	nextID int
	admins map[int]*models.AdminUser
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{nextID: 1, admins: make(map[int]*models.AdminUser)}
}

func (r *fakeAdminRepo) Create(_ context.Context, _ repositories.SQLExecutor, admin *models.AdminUser) error {
	for _, a := range r.admins {
		if a.CampaignID == admin.CampaignID && a.Username == admin.Username {
			return repositories.ErrAdminUsernameConflict
		}
	}
	admin.ID = r.nextID
	r.nextID++
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id int) (*models.AdminUser, error) {
	a, ok := r.admins[id]
	if !ok {
		return nil, repositories.ErrAdminUserNotFound
	}
	return a, nil
}

func (r *fakeAdminRepo) GetByUsername(_ context.Context, campaignID int, username string) (*models.AdminUser, error) {
	for _, a := range r.admins {
		if a.CampaignID == campaignID && a.Username == username {
			return a, nil
		}
	}
	return nil, repositories.ErrAdminUserNotFound
}

func (r *fakeAdminRepo) GetOwner(_ context.Context, _ repositories.SQLExecutor, campaignID int) (*models.AdminUser, error) {
	for _, a := range r.admins {
		if a.CampaignID == campaignID && a.IsOwner {
			return a, nil
		}
	}
	return nil, repositories.ErrAdminUserNotFound
}

func (r *fakeAdminRepo) GetByResetToken(_ context.Context, token string) (*models.AdminUser, error) {
	for _, a := range r.admins {
		if a.ResetToken != nil && *a.ResetToken == token {
			return a, nil
		}
	}
	return nil, repositories.ErrAdminResetTokenNotFound
}

func (r *fakeAdminRepo) ListByCampaign(_ context.Context, campaignID int) ([]*models.AdminUser, error) {
	var out []*models.AdminUser
	for _, a := range r.admins {
		if a.CampaignID == campaignID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAdminRepo) UpdatePassword(_ context.Context, _ repositories.SQLExecutor, id int, passwordHash string, needsChange bool) error {
	a, ok := r.admins[id]
	if !ok {
		return repositories.ErrAdminUserNotFound
	}
	a.PasswordHash = passwordHash
	a.NeedsPasswordChange = needsChange
	return nil
}

func (r *fakeAdminRepo) SetResetToken(_ context.Context, _ repositories.SQLExecutor, id int, token string, expiresAt time.Time) error {
	a, ok := r.admins[id]
	if !ok {
		return repositories.ErrAdminUserNotFound
	}
	a.ResetToken = &token
	a.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeAdminRepo) ClearResetToken(_ context.Context, id int) error {
	a, ok := r.admins[id]
	if !ok {
		return repositories.ErrAdminUserNotFound
	}
	a.ResetToken = nil
	a.ResetTokenExpiresAt = nil
	return nil
}

func (r *fakeAdminRepo) SetActive(_ context.Context, id int, active bool) error {
	a, ok := r.admins[id]
	if !ok {
		return repositories.ErrAdminUserNotFound
	}
	a.Active = active
	return nil
}

func (r *fakeAdminRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.admins[id]; !ok {
		return repositories.ErrAdminUserNotFound
	}
	delete(r.admins, id)
	return nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{nextID: 1, matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	match.CreatedAt = time.Now().UTC()
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) ListByCampaign(_ context.Context, campaignID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.CampaignID == campaignID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListPlayedByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error) {
	all, _ := r.ListByCampaign(ctx, campaignID)
	var out []*models.Match
	for _, m := range all {
		if m.Played {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListPlayedByGroup(_ context.Context, groupID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.Played && m.GroupID != nil && *m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByPhase(_ context.Context, campaignID int, phase models.MatchPhase) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.CampaignID == campaignID && m.Phase == phase {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) GetBySlot(_ context.Context, _ repositories.SQLExecutor, campaignID int, phase models.MatchPhase, side *models.BracketSide, slot int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.CampaignID != campaignID || m.Phase != phase || m.Slot == nil || *m.Slot != slot {
			continue
		}
		if (side == nil) != (m.BracketSide == nil) {
			continue
		}
		if side != nil && *side != *m.BracketSide {
			continue
		}
		return m, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) RegisterResult(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakeCouponRepo struct {
	nextID  int
	coupons map[int]*models.Coupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{nextID: 1, coupons: make(map[int]*models.Coupon)}
}

func (r *fakeCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	coupon.ID = r.nextID
	r.nextID++
	r.coupons[coupon.ID] = coupon
	return nil
}

func (r *fakeCouponRepo) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, c := range r.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, repositories.ErrCouponNotFound
}

func (r *fakeCouponRepo) IncrementUses(_ context.Context, id int) error {
	c, ok := r.coupons[id]
	if !ok {
		return repositories.ErrCouponNotFound
	}
	c.Uses++
	return nil
}

func (r *fakeCouponRepo) List(_ context.Context) ([]*models.Coupon, error) {
	var out []*models.Coupon
	for _, c := range r.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCouponRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.coupons[id]; !ok {
		return repositories.ErrCouponNotFound
	}
	delete(r.coupons, id)
	return nil
}

type sentMail struct {
	to      string
	subject string
}

// fakeMailer records outbound mail; it satisfies both ProvisionMailer and
// ExpiryMailer.
type fakeMailer struct {
	welcome       []WelcomeEmailData
	welcomeTo     []string
	resets        []sentMail
	resetURLs     []string
	warnings      []sentMail
	expired       []sentMail
	notifications []string
}

func (m *fakeMailer) SendWelcomeEmail(to string, data WelcomeEmailData) error {
	m.welcome = append(m.welcome, data)
	m.welcomeTo = append(m.welcomeTo, to)
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to, _, resetURL string) error {
	m.resets = append(m.resets, sentMail{to: to})
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}

func (m *fakeMailer) SendOwnerNotification(subject, _ string) error {
	m.notifications = append(m.notifications, subject)
	return nil
}

func (m *fakeMailer) SendExpiryWarningEmail(to, campaignName, _ string, _ int) error {
	m.warnings = append(m.warnings, sentMail{to: to, subject: campaignName})
	return nil
}

func (m *fakeMailer) SendExpiredEmail(to, campaignName string) error {
	m.expired = append(m.expired, sentMail{to: to, subject: campaignName})
	return nil
}
