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
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error)
	ListPlayedByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error)
	ListPlayedByGroup(ctx context.Context, groupID int) ([]*models.Match, error)
	ListByPhase(ctx context.Context, campaignID int, phase models.MatchPhase) ([]*models.Match, error)
	GetBySlot(ctx context.Context, exec SQLExecutor, campaignID int, phase models.MatchPhase, side *models.BracketSide, slot int) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	RegisterResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, campaign_id, home_team_id, away_team_id, home_score, away_score, phase,
	group_id, round, bracket_side, slot, played, penalties, home_penalties,
	away_penalties, match_date, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(campaign_id, home_team_id, away_team_id, home_score, away_score, phase,
			 group_id, round, bracket_side, slot, played, penalties, home_penalties,
			 away_penalties, match_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.CampaignID, match.HomeTeamID, match.AwayTeamID, match.HomeScore, match.AwayScore,
		match.Phase, match.GroupID, match.Round, match.BracketSide, match.Slot, match.Played,
		match.Penalties, match.HomePenalties, match.AwayPenalties, match.MatchDate,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrMatchTeamInvalid
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.CampaignID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeScore, &m.AwayScore,
		&m.Phase, &m.GroupID, &m.Round, &m.BracketSide, &m.Slot, &m.Played, &m.Penalties,
		&m.HomePenalties, &m.AwayPenalties, &m.MatchDate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := r.scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 ORDER BY match_date ASC NULLS LAST, id ASC`
	return r.list(ctx, nil, query, campaignID)
}

func (r *postgresMatchRepository) ListPlayedByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 AND played = TRUE ORDER BY id ASC`
	return r.list(ctx, nil, query, campaignID)
}

func (r *postgresMatchRepository) ListPlayedByGroup(ctx context.Context, groupID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE group_id = $1 AND played = TRUE ORDER BY id ASC`
	return r.list(ctx, nil, query, groupID)
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, campaignID int, phase models.MatchPhase) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 AND phase = $2 ORDER BY bracket_side ASC, slot ASC NULLS LAST, id ASC`
	return r.list(ctx, nil, query, campaignID, phase)
}

func (r *postgresMatchRepository) GetBySlot(ctx context.Context, exec SQLExecutor, campaignID int, phase models.MatchPhase, side *models.BracketSide, slot int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	if side == nil {
		query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 AND phase = $2 AND bracket_side IS NULL AND slot = $3`
		return r.scanMatch(executor.QueryRowContext(ctx, query, campaignID, phase, slot))
	}
	query := `SELECT ` + matchColumns + ` FROM matches WHERE campaign_id = $1 AND phase = $2 AND bracket_side = $3 AND slot = $4`
	return r.scanMatch(executor.QueryRowContext(ctx, query, campaignID, phase, *side, slot))
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			home_team_id = $1, away_team_id = $2, home_score = $3, away_score = $4,
			phase = $5, group_id = $6, round = $7, bracket_side = $8, slot = $9,
			played = $10, penalties = $11, home_penalties = $12, away_penalties = $13,
			match_date = $14
		WHERE id = $15`
	result, err := executor.ExecContext(ctx, query,
		match.HomeTeamID, match.AwayTeamID, match.HomeScore, match.AwayScore,
		match.Phase, match.GroupID, match.Round, match.BracketSide, match.Slot,
		match.Played, match.Penalties, match.HomePenalties, match.AwayPenalties,
		match.MatchDate, match.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrMatchTeamInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// RegisterResult flips a match into its fully played state in one statement,
// so it can never be observed half-scored.
func (r *postgresMatchRepository) RegisterResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			home_score = $1, away_score = $2, played = TRUE,
			penalties = $3, home_penalties = $4, away_penalties = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		match.HomeScore, match.AwayScore,
		match.Penalties, match.HomePenalties, match.AwayPenalties, match.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
