package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/copafacil/copa-manager/models"
	"github.com/copafacil/copa-manager/repositories"
)

const defaultLeaderboardLimit = 10

// StatsService derives standings and leaderboards from raw match, goal and
// card rows. Everything is recomputed on every call; nothing is cached.
type StatsService interface {
	GroupStandings(ctx context.Context, groupID int) ([]models.StandingRow, error)
	TopScorers(ctx context.Context, campaignID, limit int) ([]models.ScorerRow, error)
	TopCarded(ctx context.Context, campaignID, limit int) ([]models.CardRankRow, error)
	BestDefenses(ctx context.Context, campaignID, limit int) ([]models.DefenseRow, error)
	WorstDefenses(ctx context.Context, campaignID, limit int) ([]models.DefenseRow, error)
}

type statsService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	goalRepo  repositories.GoalRepository
	cardRepo  repositories.CardRepository
}

func NewStatsService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	goalRepo repositories.GoalRepository,
	cardRepo repositories.CardRepository,
) StatsService {
	return &statsService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		goalRepo:  goalRepo,
		cardRepo:  cardRepo,
	}
}

// GroupStandings accumulates every played match of the group into per-team
// rows and sorts by points, goal difference, then goals for. A group with no
// teams or no played matches yields zero-filled rows, never an error.
func (s *statsService) GroupStandings(ctx context.Context, groupID int) ([]models.StandingRow, error) {
	teams, err := s.teamRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group teams: %w", err)
	}
	matches, err := s.matchRepo.ListPlayedByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group matches: %w", err)
	}
	return ComputeStandings(teams, matches), nil
}

// ComputeStandings is the pure accumulation step, factored out of the
// repository round-trips.
func ComputeStandings(teams []*models.Team, matches []*models.Match) []models.StandingRow {
	index := make(map[int]*models.StandingRow, len(teams))
	rows := make([]models.StandingRow, len(teams))
	for i, t := range teams {
		rows[i] = models.StandingRow{TeamID: t.ID, TeamName: t.Name}
		index[t.ID] = &rows[i]
	}

	for _, m := range matches {
		if !m.Played || m.HomeScore == nil || m.AwayScore == nil || m.AwayTeamID == nil {
			continue
		}
		home, away := index[m.HomeTeamID], index[*m.AwayTeamID]
		applyResult(home, *m.HomeScore, *m.AwayScore)
		applyResult(away, *m.AwayScore, *m.HomeScore)
	}

	for i := range rows {
		rows[i].GoalDifference = rows[i].GoalsFor - rows[i].GoalsAgainst
		rows[i].Points = 3*rows[i].Wins + rows[i].Draws
	}

	// Ties beyond (points, goal difference, goals for) keep insertion order.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifference != rows[j].GoalDifference {
			return rows[i].GoalDifference > rows[j].GoalDifference
		}
		return rows[i].GoalsFor > rows[j].GoalsFor
	})
	return rows
}

func applyResult(row *models.StandingRow, scored, conceded int) {
	if row == nil {
		// Match references a team outside the group; skip it.
		return
	}
	row.Played++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		row.Wins++
	case scored < conceded:
		row.Losses++
	default:
		row.Draws++
	}
}

func (s *statsService) TopScorers(ctx context.Context, campaignID, limit int) ([]models.ScorerRow, error) {
	counts, err := s.goalRepo.CountByPlayer(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count goals: %w", err)
	}
	return RankScorers(counts, normalizeLimit(limit)), nil
}

// RankScorers sorts descending by goal count and truncates. Order among tied
// entries is unspecified.
func RankScorers(counts []*models.ScorerRow, limit int) []models.ScorerRow {
	rows := make([]models.ScorerRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, *c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].GoalCount > rows[j].GoalCount
	})
	return truncateScorers(rows, limit)
}

func (s *statsService) TopCarded(ctx context.Context, campaignID, limit int) ([]models.CardRankRow, error) {
	counts, err := s.cardRepo.CountByPlayer(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	return RankCards(counts, normalizeLimit(limit)), nil
}

// RankCards orders players by disciplinary severity: red cards first, then
// total cards, then yellows.
func RankCards(counts []*models.CardRankRow, limit int) []models.CardRankRow {
	rows := make([]models.CardRankRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, *c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RedCards != rows[j].RedCards {
			return rows[i].RedCards > rows[j].RedCards
		}
		if rows[i].TotalCards != rows[j].TotalCards {
			return rows[i].TotalCards > rows[j].TotalCards
		}
		return rows[i].YellowCards > rows[j].YellowCards
	})
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (s *statsService) BestDefenses(ctx context.Context, campaignID, limit int) ([]models.DefenseRow, error) {
	return s.defenses(ctx, campaignID, limit, true)
}

func (s *statsService) WorstDefenses(ctx context.Context, campaignID, limit int) ([]models.DefenseRow, error) {
	return s.defenses(ctx, campaignID, limit, false)
}

func (s *statsService) defenses(ctx context.Context, campaignID, limit int, best bool) ([]models.DefenseRow, error) {
	teams, err := s.teamRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	matches, err := s.matchRepo.ListPlayedByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list played matches: %w", err)
	}
	rows := ComputeDefenses(teams, matches)
	sort.SliceStable(rows, func(i, j int) bool {
		if best {
			return rows[i].GoalsAgainst < rows[j].GoalsAgainst
		}
		return rows[i].GoalsAgainst > rows[j].GoalsAgainst
	})
	l := normalizeLimit(limit)
	if l < len(rows) {
		rows = rows[:l]
	}
	return rows, nil
}

// ComputeDefenses aggregates goals conceded per team over played matches.
// Teams without a played match still appear, zero-filled.
func ComputeDefenses(teams []*models.Team, matches []*models.Match) []models.DefenseRow {
	index := make(map[int]*models.DefenseRow, len(teams))
	rows := make([]models.DefenseRow, len(teams))
	for i, t := range teams {
		rows[i] = models.DefenseRow{TeamID: t.ID, TeamName: t.Name}
		index[t.ID] = &rows[i]
	}
	for _, m := range matches {
		if !m.Played || m.HomeScore == nil || m.AwayScore == nil || m.AwayTeamID == nil {
			continue
		}
		if home := index[m.HomeTeamID]; home != nil {
			home.Played++
			home.GoalsAgainst += *m.AwayScore
		}
		if away := index[*m.AwayTeamID]; away != nil {
			away.Played++
			away.GoalsAgainst += *m.HomeScore
		}
	}
	return rows
}

func truncateScorers(rows []models.ScorerRow, limit int) []models.ScorerRow {
	if limit < len(rows) {
		return rows[:limit]
	}
	return rows
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardLimit
	}
	return limit
}
