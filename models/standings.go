package models

// StandingRow is a derived league-table row for one team within a group.
// Never stored; recomputed from played matches on every request.
type StandingRow struct {
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// ScorerRow is a derived top-scorer entry. Players without goals never
// materialize as rows.
type ScorerRow struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     int    `json:"team_id"`
	TeamName   string `json:"team_name"`
	GoalCount  int    `json:"goal_count"`
}

// CardRankRow aggregates bookings per player. Red cards rank ahead of the
// total when ordering.
type CardRankRow struct {
	PlayerID    int    `json:"player_id"`
	PlayerName  string `json:"player_name"`
	TeamID      int    `json:"team_id"`
	TeamName    string `json:"team_name"`
	YellowCards int    `json:"yellow_cards"`
	RedCards    int    `json:"red_cards"`
	TotalCards  int    `json:"total_cards"`
}

// DefenseRow aggregates goals conceded per team across played matches.
type DefenseRow struct {
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name"`
	Played       int    `json:"played"`
	GoalsAgainst int    `json:"goals_against"`
}
