package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignSlugConflict = errors.New("campaign slug already exists")
)

type CampaignRepository interface {
	Create(ctx context.Context, exec SQLExecutor, campaign *models.Campaign) error
	GetByID(ctx context.Context, id int) (*models.Campaign, error)
	GetBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	SetActive(ctx context.Context, id int, active bool) error
	List(ctx context.Context) ([]*models.Campaign, error)
}

type postgresCampaignRepository struct {
	db *sql.DB
}

func NewPostgresCampaignRepository(db *sql.DB) CampaignRepository {
	return &postgresCampaignRepository{db: db}
}

func (r *postgresCampaignRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCampaignRepository) Create(ctx context.Context, exec SQLExecutor, campaign *models.Campaign) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO campaigns (slug, name, organizer_email, is_active, is_demo, purchase_id, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		campaign.Slug,
		campaign.Name,
		campaign.OrganizerEmail,
		campaign.IsActive,
		campaign.IsDemo,
		campaign.PurchaseID,
		campaign.LogoKey,
	).Scan(&campaign.ID, &campaign.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCampaignSlugConflict
		}
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

func (r *postgresCampaignRepository) scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.OrganizerEmail,
		&c.IsActive, &c.IsDemo, &c.PurchaseID, &c.LogoKey, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &c, nil
}

const campaignColumns = `id, slug, name, organizer_email, is_active, is_demo, purchase_id, logo_key, created_at`

func (r *postgresCampaignRepository) GetByID(ctx context.Context, id int) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return r.scanCampaign(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCampaignRepository) GetBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE slug = $1`
	return r.scanCampaign(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresCampaignRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM campaigns WHERE slug = $1)`
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}
	return exists, nil
}

func (r *postgresCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns SET
			name = $1, organizer_email = $2, is_active = $3, is_demo = $4,
			purchase_id = $5, logo_key = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		campaign.Name, campaign.OrganizerEmail, campaign.IsActive, campaign.IsDemo,
		campaign.PurchaseID, campaign.LogoKey, campaign.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCampaignNotFound)
}

func (r *postgresCampaignRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE campaigns SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCampaignNotFound)
}

func (r *postgresCampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]*models.Campaign, 0)
	for rows.Next() {
		c, errScan := r.scanCampaign(rows)
		if errScan != nil {
			return nil, errScan
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
