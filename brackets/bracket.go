package brackets

import (
	"sort"

	"github.com/copafacil/copa-manager/models"
)

// knockoutOrder fixes the phase progression of the single-elimination tree.
var knockoutOrder = []models.MatchPhase{
	models.PhaseRound16,
	models.PhaseQuarters,
	models.PhaseSemis,
	models.PhaseFinal,
}

// NextPhase returns the phase a winner advances into, or "" for the final
// and for the group stage (group winners are seeded manually).
func NextPhase(phase models.MatchPhase) models.MatchPhase {
	for i, p := range knockoutOrder {
		if p == phase && i+1 < len(knockoutOrder) {
			return knockoutOrder[i+1]
		}
	}
	return ""
}

// ParentSlot computes the (phase, side, slot) coordinate the winner of a
// knockout match advances into. Sides merge at the final: the left semi
// winner and the right semi winner meet in final slot 0 with no side.
// ok is false when the match has no parent (final, group stage, or a
// knockout match missing its slot coordinate).
func ParentSlot(m *models.Match) (phase models.MatchPhase, side *models.BracketSide, slot int, ok bool) {
	if !m.IsKnockout() || m.Slot == nil {
		return "", nil, 0, false
	}
	next := NextPhase(m.Phase)
	if next == "" {
		return "", nil, 0, false
	}
	if next == models.PhaseFinal {
		return models.PhaseFinal, nil, 0, true
	}
	return next, m.BracketSide, *m.Slot / 2, true
}

// Round is one column of the rendered bracket tree.
type Round struct {
	Phase models.MatchPhase `json:"phase"`
	Left  []*models.Match   `json:"left"`
	Right []*models.Match   `json:"right"`
	Final []*models.Match   `json:"final,omitempty"`
}

// View is the assembled knockout tree. An empty campaign yields empty
// rounds, never an error.
type View struct {
	Rounds []Round `json:"rounds"`
}

// Assemble reconstructs the visual tree from plain match rows by filtering
// on (phase, side) and ordering by slot.
func Assemble(matches []*models.Match) *View {
	view := &View{Rounds: make([]Round, 0, len(knockoutOrder))}
	for _, phase := range knockoutOrder {
		round := Round{
			Phase: phase,
			Left:  make([]*models.Match, 0),
			Right: make([]*models.Match, 0),
		}
		for _, m := range matches {
			if m.Phase != phase {
				continue
			}
			switch {
			case phase == models.PhaseFinal:
				round.Final = append(round.Final, m)
			case m.BracketSide != nil && *m.BracketSide == models.SideRight:
				round.Right = append(round.Right, m)
			default:
				round.Left = append(round.Left, m)
			}
		}
		sortBySlot(round.Left)
		sortBySlot(round.Right)
		sortBySlot(round.Final)
		view.Rounds = append(view.Rounds, round)
	}
	return view
}

func sortBySlot(matches []*models.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		si, sj := 0, 0
		if matches[i].Slot != nil {
			si = *matches[i].Slot
		}
		if matches[j].Slot != nil {
			sj = *matches[j].Slot
		}
		if si != sj {
			return si < sj
		}
		return matches[i].ID < matches[j].ID
	})
}
