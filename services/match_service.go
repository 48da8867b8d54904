package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/copafacil/copa-manager/brackets"
	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

type RegisterResultInput struct {
	HomeScore     *int `json:"home_score"`
	AwayScore     *int `json:"away_score"`
	Penalties     bool `json:"penalties"`
	HomePenalties *int `json:"home_penalties,omitempty"`
	AwayPenalties *int `json:"away_penalties,omitempty"`
}

type MatchService interface {
	Create(ctx context.Context, match *models.Match) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
	// RegisterResult flips the match to played and, for knockout matches,
	// advances the winner into the parent bracket slot in the same
	// transaction.
	RegisterResult(ctx context.Context, matchID int, input RegisterResultInput) (*models.Match, error)
	RecordGoal(ctx context.Context, goal *models.Goal) error
	RecordCard(ctx context.Context, card *models.Card) error
}

type matchService struct {
	db           *sql.DB
	matchRepo    repositories.MatchRepository
	teamRepo     repositories.TeamRepository
	goalRepo     repositories.GoalRepository
	cardRepo     repositories.CardRepository
	campaignRepo repositories.CampaignRepository
	hub          *brackets.Hub
	logger       *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	goalRepo repositories.GoalRepository,
	cardRepo repositories.CardRepository,
	campaignRepo repositories.CampaignRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:           db,
		matchRepo:    matchRepo,
		teamRepo:     teamRepo,
		goalRepo:     goalRepo,
		cardRepo:     cardRepo,
		campaignRepo: campaignRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *matchService) Create(ctx context.Context, match *models.Match) (*models.Match, error) {
	if match.AwayTeamID != nil && match.HomeTeamID == *match.AwayTeamID {
		return nil, ErrMatchTeamsRequired
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByCampaign(ctx context.Context, campaignID int) ([]*models.Match, error) {
	return s.matchRepo.ListByCampaign(ctx, campaignID)
}

func (s *matchService) Update(ctx context.Context, match *models.Match) error {
	err := s.matchRepo.Update(ctx, nil, match)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	err := s.matchRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}

func (s *matchService) RegisterResult(ctx context.Context, matchID int, input RegisterResultInput) (*models.Match, error) {
	if input.HomeScore == nil || input.AwayScore == nil {
		return nil, ErrScoreRequired
	}
	if *input.HomeScore < 0 || *input.AwayScore < 0 {
		return nil, fmt.Errorf("%w: scores must not be negative", ErrValidationFailed)
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Played {
		return nil, ErrMatchAlreadyPlayed
	}

	match.HomeScore = input.HomeScore
	match.AwayScore = input.AwayScore
	match.Penalties = input.Penalties
	match.HomePenalties = input.HomePenalties
	match.AwayPenalties = input.AwayPenalties
	match.Played = true

	// A knockout match must produce a winner; drawn scores need a shootout.
	if match.IsKnockout() && match.WinnerTeamID() == nil {
		return nil, ErrKnockoutDrawNoWinner
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.RegisterResult(ctx, tx, match); err != nil {
		return nil, err
	}
	if match.IsKnockout() {
		if err := s.advanceWinner(ctx, tx, match); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result: %w", err)
	}

	s.broadcast(ctx, match)
	return match, nil
}

// advanceWinner writes the winner of a completed knockout match into the
// parent slot, creating the parent match if it does not exist yet. The first
// winner to arrive takes the home side.
func (s *matchService) advanceWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	phase, side, slot, ok := brackets.ParentSlot(match)
	if !ok {
		return nil // final has no parent
	}
	winnerID := match.WinnerTeamID()
	if winnerID == nil {
		return ErrKnockoutDrawNoWinner
	}

	parent, err := s.matchRepo.GetBySlot(ctx, exec, match.CampaignID, phase, side, slot)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			parent = &models.Match{
				CampaignID:  match.CampaignID,
				HomeTeamID:  *winnerID,
				Phase:       phase,
				BracketSide: side,
				Slot:        &slot,
			}
			return s.matchRepo.Create(ctx, exec, parent)
		}
		return err
	}

	switch {
	case parent.HomeTeamID == *winnerID,
		parent.AwayTeamID != nil && *parent.AwayTeamID == *winnerID:
		return nil // re-registered result, winner already slotted
	case parent.AwayTeamID == nil:
		parent.AwayTeamID = winnerID
		return s.matchRepo.Update(ctx, exec, parent)
	default:
		return fmt.Errorf("parent slot %s/%d is already full", phase, slot)
	}
}

func (s *matchService) broadcast(ctx context.Context, match *models.Match) {
	campaign, err := s.campaignRepo.GetByID(ctx, match.CampaignID)
	if err != nil {
		s.logger.Error("broadcast skipped, campaign lookup failed",
			slog.Int("campaign_id", match.CampaignID), slog.Any("error", err))
		return
	}
	event := brackets.EventMatchUpdated
	if match.IsKnockout() {
		event = brackets.EventBracketUpdated
	}
	s.hub.BroadcastToRoom(campaign.Slug, brackets.Message{
		Type:    event,
		Payload: match,
		Slug:    campaign.Slug,
	})
}

func (s *matchService) RecordGoal(ctx context.Context, goal *models.Goal) error {
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		if errors.Is(err, repositories.ErrGoalRefInvalid) {
			return fmt.Errorf("%w: goal references unknown match, player or team", ErrValidationFailed)
		}
		return err
	}
	return nil
}

func (s *matchService) RecordCard(ctx context.Context, card *models.Card) error {
	if card.CardType != models.CardYellow && card.CardType != models.CardRed {
		return fmt.Errorf("%w: card type must be yellow or red", ErrValidationFailed)
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		if errors.Is(err, repositories.ErrCardRefInvalid) {
			return fmt.Errorf("%w: card references unknown match, player or team", ErrValidationFailed)
		}
		return err
	}
	return nil
}
