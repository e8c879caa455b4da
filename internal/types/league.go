package types

import (
	"time"

	"gorm.io/gorm"
)

// Player roles, fixed closed set.
const (
	RoleGoalkeeper = "GOALKEEPER"
	RoleDefender   = "DEFENDER"
	RoleMidfielder = "MIDFIELDER"
	RoleForward    = "FORWARD"
)

// Trade lifecycle statuses.
const (
	TradeStatusPending  = "PENDING"
	TradeStatusAccepted = "ACCEPTED"
	TradeStatusRejected = "REJECTED"
	TradeStatusApproved = "APPROVED"
)

// TradePlayer directions, relative to the proposing team.
const (
	DirectionFrom = "FROM"
	DirectionTo   = "TO"
)

// Trade phase statuses.
const (
	PhaseOpen   = "OPEN"
	PhaseClosed = "CLOSED"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward:
		return true
	}
	return false
}

type Team struct {
	gorm.Model   `json:"-"`
	TeamID       string    `gorm:"uniqueIndex" json:"team_id"`
	Name         string    `gorm:"uniqueIndex" json:"name"`
	Division     string    `json:"division"`
	Credits      int64     `json:"credits"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Player struct {
	gorm.Model `json:"-"`
	PlayerID   string    `gorm:"uniqueIndex" json:"player_id"`
	LastName   string    `json:"lastname"`
	RealTeam   string    `json:"realteam"`
	Role       string    `json:"role"` // GOALKEEPER, DEFENDER, MIDFIELDER, FORWARD
	Value      int64     `json:"value"`
	TeamsCount int       `json:"teams_count"` // always equals the TeamPlayer rows referencing this player
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TeamPlayer is the ownership join row, unique per (team, player) pair.
// Rows are removed for real on transfer or roster edits, so no soft
// delete column: a soft-deleted row would keep holding the unique index.
type TeamPlayer struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	TeamID    string    `gorm:"uniqueIndex:idx_team_player" json:"team_id"`
	PlayerID  string    `gorm:"uniqueIndex:idx_team_player" json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Trade struct {
	gorm.Model `json:"-"`
	TradeID    string        `gorm:"uniqueIndex" json:"trade_id"`
	FromTeamID string        `json:"from_team_id"`
	ToTeamID   string        `json:"to_team_id"`
	Credits    int64         `json:"credits"`
	Status     string        `json:"status"` // PENDING, ACCEPTED, REJECTED, APPROVED
	Players    []TradePlayer `gorm:"foreignKey:TradeID;references:TradeID" json:"players,omitempty"`
	Logs       []TradeLog    `gorm:"foreignKey:TradeID;references:TradeID" json:"logs,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type TradePlayer struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	TradeID   string `gorm:"index" json:"trade_id"`
	PlayerID  string `json:"player_id"`
	Direction string `json:"direction"` // FROM or TO
}

// TradeLog is an append-only audit entry; rows are never updated and
// only removed by cascade when the parent trade is deleted.
type TradeLog struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	TradeID   string    `gorm:"index" json:"trade_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"timestamp"`
}

// TradePhase is an append-only configuration row; the row with the
// highest id is authoritative, older rows are retained as history.
type TradePhase struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Status    string     `json:"status"` // OPEN or CLOSED
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
