package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameConflict = errors.New("group name already exists in campaign")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (campaign_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, group.CampaignID, group.Name).
		Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrGroupNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	var g models.Group
	query := `SELECT id, campaign_id, name, created_at FROM groups WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.CampaignID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *postgresGroupRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Group, error) {
	query := `SELECT id, campaign_id, name, created_at FROM groups WHERE campaign_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.CampaignID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) Update(ctx context.Context, group *models.Group) error {
	result, err := r.db.ExecContext(ctx, `UPDATE groups SET name = $1 WHERE id = $2`, group.Name, group.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrGroupNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}
