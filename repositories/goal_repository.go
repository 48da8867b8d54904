package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrGoalRefInvalid = errors.New("goal match, player or team invalid")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.Goal, error)
	// CountByPlayer aggregates goals per (player, team) for a campaign.
	// Players with zero goals never appear; ordering is left to the caller.
	CountByPlayer(ctx context.Context, campaignID int) ([]*models.ScorerRow, error)
	Delete(ctx context.Context, id int) error
}

type postgresGoalRepository struct {
	db *sql.DB
}

func NewPostgresGoalRepository(db *sql.DB) GoalRepository {
	return &postgresGoalRepository{db: db}
}

func (r *postgresGoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (match_id, player_id, team_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, goal.MatchID, goal.PlayerID, goal.TeamID).
		Scan(&goal.ID, &goal.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrGoalRefInvalid
		}
		return err
	}
	return nil
}

func (r *postgresGoalRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Goal, error) {
	query := `SELECT id, match_id, player_id, team_id, created_at FROM goals WHERE match_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]*models.Goal, 0)
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.MatchID, &g.PlayerID, &g.TeamID, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

func (r *postgresGoalRepository) CountByPlayer(ctx context.Context, campaignID int) ([]*models.ScorerRow, error) {
	query := `
		SELECT g.player_id, p.name, g.team_id, t.name, COUNT(*) AS goal_count
		FROM goals g
		JOIN players p ON g.player_id = p.id
		JOIN teams t ON g.team_id = t.id
		JOIN matches m ON g.match_id = m.id
		WHERE m.campaign_id = $1
		GROUP BY g.player_id, p.name, g.team_id, t.name`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scorers := make([]*models.ScorerRow, 0)
	for rows.Next() {
		var s models.ScorerRow
		if err := rows.Scan(&s.PlayerID, &s.PlayerName, &s.TeamID, &s.TeamName, &s.GoalCount); err != nil {
			return nil, err
		}
		scorers = append(scorers, &s)
	}
	return scorers, rows.Err()
}

func (r *postgresGoalRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGoalNotFound)
}
