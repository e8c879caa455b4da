package types

import "time"

// TradePlayerDetail is a trade player entry with the player record loaded.
type TradePlayerDetail struct {
	PlayerID  string `json:"player_id"`
	Direction string `json:"direction"`
	LastName  string `json:"lastname"`
	RealTeam  string `json:"realteam"`
	Role      string `json:"role"`
	Value     int64  `json:"value"`
}

// TradeResponse is the full trade aggregate returned by the trade endpoints.
type TradeResponse struct {
	TradeID      string              `json:"trade_id"`
	FromTeamID   string              `json:"from_team_id"`
	FromTeamName string              `json:"from_team_name"`
	ToTeamID     string              `json:"to_team_id"`
	ToTeamName   string              `json:"to_team_name"`
	Credits      int64               `json:"credits"`
	Status       string              `json:"status"`
	Players      []TradePlayerDetail `json:"players"`
	Logs         []TradeLog          `json:"logs"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// PhaseStatusResponse reports whether trading is currently open and why not.
type PhaseStatusResponse struct {
	Open   bool        `json:"open"`
	Reason string      `json:"reason,omitempty"`
	Phase  *TradePhase `json:"phase,omitempty"`
}

// RosterStats summarises a team roster by role.
type RosterStats struct {
	TotalPlayers int            `json:"total_players"`
	TotalValue   int64          `json:"total_value"`
	ByRole       map[string]int `json:"by_role"`
}
