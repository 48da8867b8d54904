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
	ErrAdminUserNotFound        = errors.New("admin user not found")
	ErrAdminUsernameConflict    = errors.New("admin username already exists for campaign")
	ErrAdminUserCampaignInvalid = errors.New("admin user campaign invalid")
	ErrAdminResetTokenNotFound  = errors.New("credential reset token not found")
)

type AdminUserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, admin *models.AdminUser) error
	GetByID(ctx context.Context, id int) (*models.AdminUser, error)
	GetByUsername(ctx context.Context, campaignID int, username string) (*models.AdminUser, error)
	GetOwner(ctx context.Context, exec SQLExecutor, campaignID int) (*models.AdminUser, error)
	GetByResetToken(ctx context.Context, token string) (*models.AdminUser, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.AdminUser, error)
	UpdatePassword(ctx context.Context, exec SQLExecutor, id int, passwordHash string, needsChange bool) error
	SetResetToken(ctx context.Context, exec SQLExecutor, id int, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id int) error
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

type postgresAdminUserRepository struct {
	db *sql.DB
}

func NewPostgresAdminUserRepository(db *sql.DB) AdminUserRepository {
	return &postgresAdminUserRepository{db: db}
}

func (r *postgresAdminUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const adminUserColumns = `
	id, campaign_id, username, password_hash, is_owner, active,
	needs_password_change, reset_token, reset_token_expires_at, created_at`

func (r *postgresAdminUserRepository) Create(ctx context.Context, exec SQLExecutor, admin *models.AdminUser) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO admin_users
			(campaign_id, username, password_hash, is_owner, active, needs_password_change)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		admin.CampaignID,
		admin.Username,
		admin.PasswordHash,
		admin.IsOwner,
		admin.Active,
		admin.NeedsPasswordChange,
	).Scan(&admin.ID, &admin.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrAdminUsernameConflict
			case "23503":
				return ErrAdminUserCampaignInvalid
			}
		}
		return fmt.Errorf("failed to insert admin user: %w", err)
	}
	return nil
}

func (r *postgresAdminUserRepository) scanAdmin(row interface{ Scan(...interface{}) error }) (*models.AdminUser, error) {
	var a models.AdminUser
	err := row.Scan(
		&a.ID, &a.CampaignID, &a.Username, &a.PasswordHash, &a.IsOwner, &a.Active,
		&a.NeedsPasswordChange, &a.ResetToken, &a.ResetTokenExpiresAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresAdminUserRepository) GetByID(ctx context.Context, id int) (*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = $1`
	return r.scanAdmin(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresAdminUserRepository) GetByUsername(ctx context.Context, campaignID int, username string) (*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE campaign_id = $1 AND username = $2`
	return r.scanAdmin(r.db.QueryRowContext(ctx, query, campaignID, username))
}

func (r *postgresAdminUserRepository) GetOwner(ctx context.Context, exec SQLExecutor, campaignID int) (*models.AdminUser, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE campaign_id = $1 AND is_owner = TRUE`
	return r.scanAdmin(executor.QueryRowContext(ctx, query, campaignID))
}

func (r *postgresAdminUserRepository) GetByResetToken(ctx context.Context, token string) (*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE reset_token = $1`
	admin, err := r.scanAdmin(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, ErrAdminUserNotFound) {
			return nil, ErrAdminResetTokenNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (r *postgresAdminUserRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE campaign_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]*models.AdminUser, 0)
	for rows.Next() {
		a, errScan := r.scanAdmin(rows)
		if errScan != nil {
			return nil, errScan
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *postgresAdminUserRepository) UpdatePassword(ctx context.Context, exec SQLExecutor, id int, passwordHash string, needsChange bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE admin_users SET password_hash = $1, needs_password_change = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, passwordHash, needsChange, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAdminUserNotFound)
}

func (r *postgresAdminUserRepository) SetResetToken(ctx context.Context, exec SQLExecutor, id int, token string, expiresAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE admin_users SET reset_token = $1, reset_token_expires_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, token, expiresAt, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAdminUserNotFound)
}

func (r *postgresAdminUserRepository) ClearResetToken(ctx context.Context, id int) error {
	query := `UPDATE admin_users SET reset_token = NULL, reset_token_expires_at = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAdminUserNotFound)
}

func (r *postgresAdminUserRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_users SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAdminUserNotFound)
}

func (r *postgresAdminUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAdminUserNotFound)
}
