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
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameConflict    = errors.New("team name already exists in campaign")
	ErrTeamGroupInvalid    = errors.New("team group conflict or invalid")
	ErrTeamCampaignInvalid = errors.New("team campaign conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Team, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, campaign_id, name, lodge, group_id, logo_key, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (campaign_id, name, lodge, group_id, logo_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.CampaignID, team.Name, team.Lodge, team.GroupID, team.LogoKey,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		return mapTeamError(err)
	}
	return nil
}

func mapTeamError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrTeamNameConflict
		case "23503":
			if pqErr.Constraint == "teams_group_id_fkey" {
				return ErrTeamGroupInvalid
			}
			return ErrTeamCampaignInvalid
		}
	}
	return fmt.Errorf("team repository: %w", err)
}

func (r *postgresTeamRepository) scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.CampaignID, &t.Name, &t.Lodge, &t.GroupID, &t.LogoKey, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, errScan := r.scanTeam(rows)
		if errScan != nil {
			return nil, errScan
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE campaign_id = $1 ORDER BY name ASC`
	return r.list(ctx, query, campaignID)
}

func (r *postgresTeamRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE group_id = $1 ORDER BY name ASC`
	return r.list(ctx, query, groupID)
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET name = $1, lodge = $2, group_id = $3, logo_key = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.Lodge, team.GroupID, team.LogoKey, team.ID)
	if err != nil {
		return mapTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
