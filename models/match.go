package models

import "time"

// MatchPhase identifies the stage a match belongs to. Knockout phases form a
// fixed single-elimination tree below the group stage.
type MatchPhase string

const (
	PhaseGroups   MatchPhase = "groups"
	PhaseRound16  MatchPhase = "round16"
	PhaseQuarters MatchPhase = "quarters"
	PhaseSemis    MatchPhase = "semis"
	PhaseFinal    MatchPhase = "final"
)

// BracketSide splits the knockout tree into its two halves; only meaningful
// for knockout phases.
type BracketSide string

const (
	SideLeft  BracketSide = "left"
	SideRight BracketSide = "right"
)

// Match is either fully unplayed (scores nil, Played false) or fully played.
// Slot is the position of the match within (phase, side) and drives automatic
// advancement of the winner into the parent slot.
type Match struct {
	ID            int          `json:"id" db:"id"`
	CampaignID    int          `json:"campaign_id" db:"campaign_id"`
	HomeTeamID    int          `json:"home_team_id" db:"home_team_id"`
	AwayTeamID    *int         `json:"away_team_id,omitempty" db:"away_team_id"`
	HomeScore     *int         `json:"home_score,omitempty" db:"home_score"`
	AwayScore     *int         `json:"away_score,omitempty" db:"away_score"`
	Phase         MatchPhase   `json:"phase" db:"phase"`
	GroupID       *int         `json:"group_id,omitempty" db:"group_id"`
	Round         *int         `json:"round,omitempty" db:"round"`
	BracketSide   *BracketSide `json:"bracket_side,omitempty" db:"bracket_side"`
	Slot          *int         `json:"slot,omitempty" db:"slot"`
	Played        bool         `json:"played" db:"played"`
	Penalties     bool         `json:"penalties" db:"penalties"`
	HomePenalties *int         `json:"home_penalties,omitempty" db:"home_penalties"`
	AwayPenalties *int         `json:"away_penalties,omitempty" db:"away_penalties"`
	MatchDate     *time.Time   `json:"match_date,omitempty" db:"match_date"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`

	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

// IsKnockout reports whether the match belongs to a knockout phase.
func (m *Match) IsKnockout() bool {
	return m.Phase != PhaseGroups
}

// WinnerTeamID returns the winning team of a played match, falling back to
// the penalty shootout for knockout draws. Returns nil for unplayed matches
// and for group-stage draws.
func (m *Match) WinnerTeamID() *int {
	if !m.Played || m.HomeScore == nil || m.AwayScore == nil || m.AwayTeamID == nil {
		return nil
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return &m.HomeTeamID
	case *m.AwayScore > *m.HomeScore:
		return m.AwayTeamID
	}
	if m.Penalties && m.HomePenalties != nil && m.AwayPenalties != nil {
		if *m.HomePenalties > *m.AwayPenalties {
			return &m.HomeTeamID
		}
		if *m.AwayPenalties > *m.HomePenalties {
			return m.AwayTeamID
		}
	}
	return nil
}

type Goal struct {
	ID        int       `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CardType string

const (
	CardYellow CardType = "yellow"
	CardRed    CardType = "red"
)

type Card struct {
	ID        int       `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	CardType  CardType  `json:"card_type" db:"card_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
