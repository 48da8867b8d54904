package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/copafacil/copa-manager/models"
	"github.com/lib/pq"
)

var (
	ErrCardNotFound   = errors.New("card not found")
	ErrCardRefInvalid = errors.New("card match, player or team invalid")
)

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	ListByMatch(ctx context.Context, matchID int) ([]*models.Card, error)
	// CountByPlayer aggregates yellow and red cards per (player, team) for a
	// campaign. Ordering is left to the caller.
	CountByPlayer(ctx context.Context, campaignID int) ([]*models.CardRankRow, error)
	Delete(ctx context.Context, id int) error
}

type postgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

func (r *postgresCardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (match_id, player_id, team_id, card_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, card.MatchID, card.PlayerID, card.TeamID, card.CardType).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCardRefInvalid
		}
		return err
	}
	return nil
}

func (r *postgresCardRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.Card, error) {
	query := `SELECT id, match_id, player_id, team_id, card_type, created_at FROM cards WHERE match_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]*models.Card, 0)
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.MatchID, &c.PlayerID, &c.TeamID, &c.CardType, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

func (r *postgresCardRepository) CountByPlayer(ctx context.Context, campaignID int) ([]*models.CardRankRow, error) {
	query := `
		SELECT c.player_id, p.name, c.team_id, t.name,
		       COUNT(*) FILTER (WHERE c.card_type = 'yellow') AS yellow_cards,
		       COUNT(*) FILTER (WHERE c.card_type = 'red') AS red_cards,
		       COUNT(*) AS total_cards
		FROM cards c
		JOIN players p ON c.player_id = p.id
		JOIN teams t ON c.team_id = t.id
		JOIN matches m ON c.match_id = m.id
		WHERE m.campaign_id = $1
		GROUP BY c.player_id, p.name, c.team_id, t.name`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := make([]*models.CardRankRow, 0)
	for rows.Next() {
		var c models.CardRankRow
		if err := rows.Scan(&c.PlayerID, &c.PlayerName, &c.TeamID, &c.TeamName,
			&c.YellowCards, &c.RedCards, &c.TotalCards); err != nil {
			return nil, err
		}
		ranks = append(ranks, &c)
	}
	return ranks, rows.Err()
}

func (r *postgresCardRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCardNotFound)
}
