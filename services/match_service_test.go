package services

import (
	"context"
	"testing"

	"github.com/copafacil/copa-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidePtr(s models.BracketSide) *models.BracketSide { return &s }

func knockoutMatch(repo *fakeMatchRepo, t *testing.T, campaignID int, phase models.MatchPhase, side models.BracketSide, slot, home, away int) *models.Match {
	t.Helper()
	m := &models.Match{
		CampaignID:  campaignID,
		HomeTeamID:  home,
		AwayTeamID:  intPtr(away),
		Phase:       phase,
		BracketSide: sidePtr(side),
		Slot:        intPtr(slot),
	}
	require.NoError(t, repo.Create(context.Background(), nil, m))
	return m
}

func TestAdvanceWinnerCreatesParentMatch(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	m := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideLeft, 0, 10, 11)
	m.HomeScore, m.AwayScore = intPtr(2), intPtr(0)
	m.Played = true

	require.NoError(t, s.advanceWinner(context.Background(), nil, m))

	parent, err := repo.GetBySlot(context.Background(), nil, 1, models.PhaseSemis, sidePtr(models.SideLeft), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, parent.HomeTeamID)
	assert.Nil(t, parent.AwayTeamID)
	assert.False(t, parent.Played)
}

func TestAdvanceWinnerFillsAwaySlot(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	first := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideLeft, 0, 10, 11)
	first.HomeScore, first.AwayScore = intPtr(1), intPtr(0)
	first.Played = true
	require.NoError(t, s.advanceWinner(context.Background(), nil, first))

	// The winner of the sibling quarterfinal joins the same semifinal.
	second := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideLeft, 1, 12, 13)
	second.HomeScore, second.AwayScore = intPtr(0), intPtr(3)
	second.Played = true
	require.NoError(t, s.advanceWinner(context.Background(), nil, second))

	parent, err := repo.GetBySlot(context.Background(), nil, 1, models.PhaseSemis, sidePtr(models.SideLeft), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, parent.HomeTeamID)
	require.NotNil(t, parent.AwayTeamID)
	assert.Equal(t, 13, *parent.AwayTeamID)
}

func TestAdvanceWinnerIsIdempotent(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	m := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideRight, 0, 20, 21)
	m.HomeScore, m.AwayScore = intPtr(2), intPtr(1)
	m.Played = true

	require.NoError(t, s.advanceWinner(context.Background(), nil, m))
	require.NoError(t, s.advanceWinner(context.Background(), nil, m))

	semis, err := repo.ListByPhase(context.Background(), 1, models.PhaseSemis)
	require.NoError(t, err)
	assert.Len(t, semis, 1, "replays must not duplicate the parent")
	assert.Equal(t, 20, semis[0].HomeTeamID)
	assert.Nil(t, semis[0].AwayTeamID)
}

func TestAdvanceWinnerSemisMeetInFinal(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	left := knockoutMatch(repo, t, 1, models.PhaseSemis, models.SideLeft, 0, 1, 2)
	left.HomeScore, left.AwayScore = intPtr(1), intPtr(0)
	left.Played = true
	require.NoError(t, s.advanceWinner(context.Background(), nil, left))

	right := knockoutMatch(repo, t, 1, models.PhaseSemis, models.SideRight, 0, 3, 4)
	right.HomeScore, right.AwayScore = intPtr(2), intPtr(2)
	right.Penalties = true
	right.HomePenalties, right.AwayPenalties = intPtr(3), intPtr(4)
	right.Played = true
	require.NoError(t, s.advanceWinner(context.Background(), nil, right))

	final, err := repo.GetBySlot(context.Background(), nil, 1, models.PhaseFinal, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, final.HomeTeamID)
	require.NotNil(t, final.AwayTeamID)
	assert.Equal(t, 4, *final.AwayTeamID, "shootout winner advances")
}

func TestRegisterResultValidation(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	m := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideLeft, 0, 10, 11)

	_, err := s.RegisterResult(context.Background(), m.ID, RegisterResultInput{})
	assert.ErrorIs(t, err, ErrScoreRequired)

	_, err = s.RegisterResult(context.Background(), m.ID, RegisterResultInput{HomeScore: intPtr(-1), AwayScore: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// A drawn knockout score without a shootout cannot pick a winner.
	_, err = s.RegisterResult(context.Background(), m.ID, RegisterResultInput{HomeScore: intPtr(1), AwayScore: intPtr(1)})
	assert.ErrorIs(t, err, ErrKnockoutDrawNoWinner)

	_, err = s.RegisterResult(context.Background(), 999, RegisterResultInput{HomeScore: intPtr(1), AwayScore: intPtr(0)})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRegisterResultRejectsReplay(t *testing.T) {
	repo := newFakeMatchRepo()
	s := &matchService{matchRepo: repo, logger: discardLogger()}

	m := knockoutMatch(repo, t, 1, models.PhaseQuarters, models.SideLeft, 0, 10, 11)
	m.HomeScore, m.AwayScore = intPtr(2), intPtr(1)
	m.Played = true

	_, err := s.RegisterResult(context.Background(), m.ID, RegisterResultInput{HomeScore: intPtr(3), AwayScore: intPtr(0)})
	assert.ErrorIs(t, err, ErrMatchAlreadyPlayed)
}
