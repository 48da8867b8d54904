package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, team_id, name, number, position, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, number, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		player.TeamID, player.Name, player.Number, player.Position,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrPlayerTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPlayerRepository) scanPlayer(row interface{ Scan(...interface{}) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Number, &p.Position, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, errScan := r.scanPlayer(rows)
		if errScan != nil {
			return nil, errScan
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE team_id = $1 ORDER BY name ASC`
	return r.list(ctx, query, teamID)
}

func (r *postgresPlayerRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.team_id, p.name, p.number, p.position, p.created_at
		FROM players p
		JOIN teams t ON p.team_id = t.id
		WHERE t.campaign_id = $1
		ORDER BY p.name ASC`
	return r.list(ctx, query, campaignID)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `UPDATE players SET team_id = $1, name = $2, number = $3, position = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		player.TeamID, player.Name, player.Number, player.Position, player.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
