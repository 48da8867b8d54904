package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrPurchaseIDConflict = errors.New("purchase external id already exists")
)

type PurchaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, purchase *models.Purchase) error
	GetByID(ctx context.Context, id int) (*models.Purchase, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Purchase, error)
	GetByCampaignSlug(ctx context.Context, slug string) (*models.Purchase, error)
	UpdateStatus(ctx context.Context, id int, status models.PurchaseStatus) error
	UpdateProvisionState(ctx context.Context, id int, state models.ProvisionState) error
	MarkWarned(ctx context.Context, id int, at time.Time) error
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Purchase, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.Purchase, error)
	ListUnprovisioned(ctx context.Context, olderThan time.Time) ([]*models.Purchase, error)
}

type postgresPurchaseRepository struct {
	db *sql.DB
}

func NewPostgresPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &postgresPurchaseRepository{db: db}
}

func (r *postgresPurchaseRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const purchaseColumns = `
	id, external_id, customer_email, campaign_slug, plan_type, amount_paid,
	status, provider, provider_payment_id, provision_state, expires_at, warned_at, created_at`

func (r *postgresPurchaseRepository) Create(ctx context.Context, exec SQLExecutor, purchase *models.Purchase) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO purchases
			(external_id, customer_email, campaign_slug, plan_type, amount_paid,
			 status, provider, provider_payment_id, provision_state, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		purchase.ExternalID,
		purchase.CustomerEmail,
		purchase.CampaignSlug,
		purchase.PlanType,
		purchase.AmountPaid,
		purchase.Status,
		purchase.Provider,
		purchase.ProviderPaymentID,
		purchase.ProvisionState,
		purchase.ExpiresAt,
	).Scan(&purchase.ID, &purchase.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPurchaseIDConflict
		}
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

func (r *postgresPurchaseRepository) scanPurchase(row interface{ Scan(...interface{}) error }) (*models.Purchase, error) {
	var p models.Purchase
	err := row.Scan(
		&p.ID, &p.ExternalID, &p.CustomerEmail, &p.CampaignSlug, &p.PlanType,
		&p.AmountPaid, &p.Status, &p.Provider, &p.ProviderPaymentID,
		&p.ProvisionState, &p.ExpiresAt, &p.WarnedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPurchaseRepository) GetByID(ctx context.Context, id int) (*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	return r.scanPurchase(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPurchaseRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE external_id = $1`
	return r.scanPurchase(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *postgresPurchaseRepository) GetByCampaignSlug(ctx context.Context, slug string) (*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE campaign_slug = $1 ORDER BY created_at DESC LIMIT 1`
	return r.scanPurchase(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresPurchaseRepository) UpdateStatus(ctx context.Context, id int, status models.PurchaseStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE purchases SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPurchaseNotFound)
}

func (r *postgresPurchaseRepository) UpdateProvisionState(ctx context.Context, id int, state models.ProvisionState) error {
	result, err := r.db.ExecContext(ctx, `UPDATE purchases SET provision_state = $1 WHERE id = $2`, state, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPurchaseNotFound)
}

func (r *postgresPurchaseRepository) MarkWarned(ctx context.Context, id int, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE purchases SET warned_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPurchaseNotFound)
}

func (r *postgresPurchaseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]*models.Purchase, 0)
	for rows.Next() {
		p, errScan := r.scanPurchase(rows)
		if errScan != nil {
			return nil, errScan
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// ListExpiringBetween returns completed purchases whose window ends inside
// [from, to) and that have not been warned yet.
func (r *postgresPurchaseRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE status = $1 AND warned_at IS NULL AND expires_at >= $2 AND expires_at < $3
		ORDER BY expires_at ASC`
	return r.list(ctx, query, models.PurchaseCompleted, from, to)
}

func (r *postgresPurchaseRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at ASC`
	return r.list(ctx, query, models.PurchaseCompleted, now)
}

// ListUnprovisioned returns purchases stuck short of the complete state,
// skipping very recent rows that may still be mid-flight.
func (r *postgresPurchaseRepository) ListUnprovisioned(ctx context.Context, olderThan time.Time) ([]*models.Purchase, error) {
	query := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE status = $1 AND provision_state <> $2 AND created_at < $3
		ORDER BY created_at ASC`
	return r.list(ctx, query, models.PurchaseCompleted, models.ProvisionComplete, olderThan)
}
