package services

import (
	"testing"

	"github.com/copafacil/copa-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func playedMatch(homeID, awayID, homeScore, awayScore int) *models.Match {
	return &models.Match{
		HomeTeamID: homeID,
		AwayTeamID: intPtr(awayID),
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
		Phase:      models.PhaseGroups,
		Played:     true,
	}
}

func TestComputeStandingsFullGroup(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Leões"},
		{ID: 2, Name: "Águias"},
		{ID: 3, Name: "Tubarões"},
	}
	matches := []*models.Match{
		playedMatch(1, 2, 2, 0), // Leões beat Águias
		playedMatch(2, 3, 1, 1), // draw
		playedMatch(3, 1, 0, 3), // Leões beat Tubarões
	}
	rows := ComputeStandings(teams, matches)

	assert.Len(t, rows, 3)
	assert.Equal(t, "Leões", rows[0].TeamName)
	assert.Equal(t, 6, rows[0].Points)
	assert.Equal(t, 2, rows[0].Played)
	assert.Equal(t, 5, rows[0].GoalsFor)
	assert.Equal(t, 0, rows[0].GoalsAgainst)
	assert.Equal(t, 5, rows[0].GoalDifference)

	assert.Equal(t, "Águias", rows[1].TeamName)
	assert.Equal(t, 1, rows[1].Points)
	assert.Equal(t, -1, rows[1].GoalDifference)

	assert.Equal(t, "Tubarões", rows[2].TeamName)
	assert.Equal(t, 1, rows[2].Points)
	assert.Equal(t, -2, rows[2].GoalDifference)

	// Every win is worth three points, every draw one, per side.
	totalPoints := 0
	for _, r := range rows {
		totalPoints += r.Points
	}
	assert.Equal(t, 8, totalPoints, "two decisive matches and one draw")

	// Goal differences across the group always sum to zero.
	totalGD := 0
	for _, r := range rows {
		totalGD += r.GoalDifference
	}
	assert.Zero(t, totalGD)
}

func TestComputeStandingsSingleDecisiveMatch(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Mandante"},
		{ID: 2, Name: "Visitante"},
	}
	rows := ComputeStandings(teams, []*models.Match{playedMatch(1, 2, 2, 1)})

	require.Len(t, rows, 2)
	assert.Equal(t, models.StandingRow{
		TeamID: 1, TeamName: "Mandante",
		Played: 1, Wins: 1, Draws: 0, Losses: 0,
		GoalsFor: 2, GoalsAgainst: 1, GoalDifference: 1, Points: 3,
	}, rows[0])
	assert.Equal(t, models.StandingRow{
		TeamID: 2, TeamName: "Visitante",
		Played: 1, Wins: 0, Draws: 0, Losses: 1,
		GoalsFor: 1, GoalsAgainst: 2, GoalDifference: -1, Points: 0,
	}, rows[1])
}

func TestComputeStandingsHighScoringDraw(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	rows := ComputeStandings(teams, []*models.Match{playedMatch(1, 2, 3, 3)})

	for _, r := range rows {
		assert.Equal(t, 1, r.Played)
		assert.Equal(t, 1, r.Draws)
		assert.Equal(t, 0, r.Wins)
		assert.Equal(t, 1, r.Points)
		assert.Equal(t, 3, r.GoalsFor)
		assert.Equal(t, 3, r.GoalsAgainst)
		assert.Equal(t, 0, r.GoalDifference)
	}
}

func TestComputeStandingsIgnoresUnplayedAndForeignMatches(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	matches := []*models.Match{
		{HomeTeamID: 1, AwayTeamID: intPtr(2), Phase: models.PhaseGroups}, // not played
		playedMatch(7, 8, 4, 0), // both teams outside the group
		playedMatch(1, 9, 2, 0), // away team outside the group
	}
	rows := ComputeStandings(teams, matches)

	assert.Equal(t, 1, rows[0].Played, "only the half involving a group team counts")
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, 0, rows[1].Played)
	assert.Equal(t, 0, rows[1].Points)
}

func TestComputeStandingsEmptyGroup(t *testing.T) {
	rows := ComputeStandings(nil, nil)
	assert.Empty(t, rows)
}

func TestComputeStandingsTieBreakByGoalsFor(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}, {ID: 4, Name: "D"}}
	matches := []*models.Match{
		playedMatch(1, 3, 2, 1), // A wins 2-1
		playedMatch(2, 4, 1, 0), // B wins 1-0
	}
	rows := ComputeStandings(teams, matches)

	// Same points, same goal difference; A ranks first on goals scored.
	assert.Equal(t, "A", rows[0].TeamName)
	assert.Equal(t, "B", rows[1].TeamName)
	assert.Equal(t, rows[0].Points, rows[1].Points)
	assert.Equal(t, rows[0].GoalDifference, rows[1].GoalDifference)
}

func TestRankScorersOrdersAndTruncates(t *testing.T) {
	counts := []*models.ScorerRow{
		{PlayerID: 1, PlayerName: "Um", GoalCount: 2},
		{PlayerID: 2, PlayerName: "Dois", GoalCount: 7},
		{PlayerID: 3, PlayerName: "Três", GoalCount: 4},
	}
	rows := RankScorers(counts, 2)

	assert.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].PlayerID)
	assert.Equal(t, 7, rows[0].GoalCount)
	assert.Equal(t, 3, rows[1].PlayerID)
}

func TestRankScorersStableOnTies(t *testing.T) {
	counts := []*models.ScorerRow{
		{PlayerID: 1, GoalCount: 3},
		{PlayerID: 2, GoalCount: 3},
		{PlayerID: 3, GoalCount: 3},
	}
	rows := RankScorers(counts, 10)

	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].PlayerID, rows[1].PlayerID, rows[2].PlayerID})
}

func TestRankCardsSeverityOrder(t *testing.T) {
	counts := []*models.CardRankRow{
		{PlayerID: 1, YellowCards: 5, RedCards: 0, TotalCards: 5},
		{PlayerID: 2, YellowCards: 1, RedCards: 1, TotalCards: 2},
		{PlayerID: 3, YellowCards: 0, RedCards: 1, TotalCards: 1},
	}
	rows := RankCards(counts, 10)

	// A single red outranks any pile of yellows; ties on reds break on total.
	assert.Equal(t, 2, rows[0].PlayerID)
	assert.Equal(t, 3, rows[1].PlayerID)
	assert.Equal(t, 1, rows[2].PlayerID)
}

func TestComputeDefensesZeroFillsIdleTeams(t *testing.T) {
	teams := []*models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	matches := []*models.Match{playedMatch(1, 2, 2, 1)}
	rows := ComputeDefenses(teams, matches)

	byID := make(map[int]models.DefenseRow, len(rows))
	for _, r := range rows {
		byID[r.TeamID] = r
	}
	assert.Equal(t, 1, byID[1].GoalsAgainst)
	assert.Equal(t, 2, byID[2].GoalsAgainst)
	assert.Equal(t, 0, byID[3].GoalsAgainst)
	assert.Equal(t, 0, byID[3].Played)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, defaultLeaderboardLimit, normalizeLimit(0))
	assert.Equal(t, defaultLeaderboardLimit, normalizeLimit(-3))
	assert.Equal(t, 25, normalizeLimit(25))
}
