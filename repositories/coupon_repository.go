package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponCodeConflict = errors.New("coupon code already exists")
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementUses(ctx context.Context, id int) error
	List(ctx context.Context) ([]*models.Coupon, error)
	Delete(ctx context.Context, id int) error
}

type postgresCouponRepository struct {
	db *sql.DB
}

func NewPostgresCouponRepository(db *sql.DB) CouponRepository {
	return &postgresCouponRepository{db: db}
}

const couponColumns = `id, code, discount_percent, max_uses, uses, active, expires_at, created_at`

func (r *postgresCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_percent, max_uses, active, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uses, created_at`
	err := r.db.QueryRowContext(ctx, query,
		coupon.Code, coupon.DiscountPercent, coupon.MaxUses, coupon.Active, coupon.ExpiresAt,
	).Scan(&coupon.ID, &coupon.Uses, &coupon.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCouponCodeConflict
		}
		return err
	}
	return nil
}

func (r *postgresCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.DiscountPercent, &c.MaxUses, &c.Uses, &c.Active, &c.ExpiresAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCouponRepository) IncrementUses(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE coupons SET uses = uses + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCouponNotFound)
}

func (r *postgresCouponRepository) List(ctx context.Context) ([]*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coupons := make([]*models.Coupon, 0)
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.MaxUses, &c.Uses, &c.Active, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, &c)
	}
	return coupons, rows.Err()
}

func (r *postgresCouponRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCouponNotFound)
}
