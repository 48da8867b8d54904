package brackets

import (
	"testing"

	"github.com/copafacil/copa-manager/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func sidePtr(s models.BracketSide) *models.BracketSide { return &s }

func TestNextPhase(t *testing.T) {
	assert.Equal(t, models.PhaseQuarters, NextPhase(models.PhaseRound16))
	assert.Equal(t, models.PhaseSemis, NextPhase(models.PhaseQuarters))
	assert.Equal(t, models.PhaseFinal, NextPhase(models.PhaseSemis))
	assert.Equal(t, models.MatchPhase(""), NextPhase(models.PhaseFinal))
	assert.Equal(t, models.MatchPhase(""), NextPhase(models.PhaseGroups))
}

func TestParentSlotHalvesSlotIndex(t *testing.T) {
	m := &models.Match{
		Phase:       models.PhaseRound16,
		BracketSide: sidePtr(models.SideLeft),
		Slot:        intPtr(3),
	}
	phase, side, slot, ok := ParentSlot(m)
	assert.True(t, ok)
	assert.Equal(t, models.PhaseQuarters, phase)
	assert.Equal(t, models.SideLeft, *side)
	assert.Equal(t, 1, slot)
}

func TestParentSlotSemisMergeIntoFinal(t *testing.T) {
	left := &models.Match{
		Phase:       models.PhaseSemis,
		BracketSide: sidePtr(models.SideLeft),
		Slot:        intPtr(0),
	}
	right := &models.Match{
		Phase:       models.PhaseSemis,
		BracketSide: sidePtr(models.SideRight),
		Slot:        intPtr(0),
	}
	for _, m := range []*models.Match{left, right} {
		phase, side, slot, ok := ParentSlot(m)
		assert.True(t, ok)
		assert.Equal(t, models.PhaseFinal, phase)
		assert.Nil(t, side, "the final has no side")
		assert.Equal(t, 0, slot)
	}
}

func TestParentSlotNoParent(t *testing.T) {
	_, _, _, ok := ParentSlot(&models.Match{Phase: models.PhaseFinal, Slot: intPtr(0)})
	assert.False(t, ok, "the final has no parent")

	_, _, _, ok = ParentSlot(&models.Match{Phase: models.PhaseGroups, Slot: intPtr(0)})
	assert.False(t, ok, "group matches do not advance")

	_, _, _, ok = ParentSlot(&models.Match{Phase: models.PhaseQuarters})
	assert.False(t, ok, "a knockout match without a slot cannot advance")
}

func TestAssembleOrdersBySlotWithinSides(t *testing.T) {
	matches := []*models.Match{
		{ID: 1, Phase: models.PhaseSemis, BracketSide: sidePtr(models.SideLeft), Slot: intPtr(0)},
		{ID: 2, Phase: models.PhaseQuarters, BracketSide: sidePtr(models.SideRight), Slot: intPtr(1)},
		{ID: 3, Phase: models.PhaseQuarters, BracketSide: sidePtr(models.SideRight), Slot: intPtr(0)},
		{ID: 4, Phase: models.PhaseQuarters, BracketSide: sidePtr(models.SideLeft), Slot: intPtr(1)},
		{ID: 5, Phase: models.PhaseQuarters, BracketSide: sidePtr(models.SideLeft), Slot: intPtr(0)},
		{ID: 6, Phase: models.PhaseFinal, Slot: intPtr(0)},
		{ID: 7, Phase: models.PhaseGroups},
	}
	view := Assemble(matches)

	assert.Len(t, view.Rounds, 4)

	quarters := view.Rounds[1]
	assert.Equal(t, models.PhaseQuarters, quarters.Phase)
	assert.Equal(t, []int{5, 4}, matchIDs(quarters.Left))
	assert.Equal(t, []int{3, 2}, matchIDs(quarters.Right))

	semis := view.Rounds[2]
	assert.Equal(t, []int{1}, matchIDs(semis.Left))
	assert.Empty(t, semis.Right)

	final := view.Rounds[3]
	assert.Equal(t, []int{6}, matchIDs(final.Final))

	// Group matches never appear in the tree.
	round16 := view.Rounds[0]
	assert.Empty(t, round16.Left)
	assert.Empty(t, round16.Right)
}

func TestAssembleEmpty(t *testing.T) {
	view := Assemble(nil)
	assert.Len(t, view.Rounds, 4)
	for _, r := range view.Rounds {
		assert.Empty(t, r.Left)
		assert.Empty(t, r.Right)
		assert.Empty(t, r.Final)
	}
}

func matchIDs(matches []*models.Match) []int {
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}
