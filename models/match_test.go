package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestWinnerTeamID(t *testing.T) {
	m := &Match{
		HomeTeamID: 1,
		AwayTeamID: intPtr(2),
		HomeScore:  intPtr(3),
		AwayScore:  intPtr(1),
		Phase:      PhaseQuarters,
		Played:     true,
	}
	require.NotNil(t, m.WinnerTeamID())
	assert.Equal(t, 1, *m.WinnerTeamID())

	m.HomeScore, m.AwayScore = intPtr(0), intPtr(2)
	require.NotNil(t, m.WinnerTeamID())
	assert.Equal(t, 2, *m.WinnerTeamID())
}

func TestWinnerTeamIDUnplayed(t *testing.T) {
	m := &Match{HomeTeamID: 1, AwayTeamID: intPtr(2), Phase: PhaseQuarters}
	assert.Nil(t, m.WinnerTeamID())
}

func TestWinnerTeamIDGroupDraw(t *testing.T) {
	m := &Match{
		HomeTeamID: 1,
		AwayTeamID: intPtr(2),
		HomeScore:  intPtr(1),
		AwayScore:  intPtr(1),
		Phase:      PhaseGroups,
		Played:     true,
	}
	assert.Nil(t, m.WinnerTeamID())
}

func TestWinnerTeamIDPenaltyShootout(t *testing.T) {
	m := &Match{
		HomeTeamID:    1,
		AwayTeamID:    intPtr(2),
		HomeScore:     intPtr(2),
		AwayScore:     intPtr(2),
		Phase:         PhaseSemis,
		Played:        true,
		Penalties:     true,
		HomePenalties: intPtr(4),
		AwayPenalties: intPtr(5),
	}
	require.NotNil(t, m.WinnerTeamID())
	assert.Equal(t, 2, *m.WinnerTeamID())

	// A drawn shootout cannot pick a winner.
	m.AwayPenalties = intPtr(4)
	assert.Nil(t, m.WinnerTeamID())
}

func TestIsKnockout(t *testing.T) {
	assert.False(t, (&Match{Phase: PhaseGroups}).IsKnockout())
	assert.True(t, (&Match{Phase: PhaseRound16}).IsKnockout())
	assert.True(t, (&Match{Phase: PhaseFinal}).IsKnockout())
}
