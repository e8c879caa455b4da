package roster

import (
	"errors"
	"fmt"

	"github.com/ksred/fantaleague-api/internal/types"
	"gorm.io/gorm"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPlayerNotOwned      = errors.New("player is not on the team roster")
	ErrAlreadyOnTeam       = errors.New("player is already on the team roster")
)

// Move describes one player changing hands during a trade approval.
type Move struct {
	PlayerID   string
	FromTeamID string
	ToTeamID   string
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetTeam(teamID string) (*types.Team, error) {
	var team types.Team
	if err := d.db.Where("team_id = ?", teamID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns every team except the excluded one, optionally
// restricted to a division.
func (d *Database) ListTeams(excludeTeamID, division string) ([]types.Team, error) {
	query := d.db.Where("team_id <> ?", excludeTeamID)
	if division != "" {
		query = query.Where("division = ?", division)
	}

	var teams []types.Team
	if err := query.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return teams, nil
}

// GetTeamPlayers returns the players on a team's roster, optionally
// filtered by role, ordered by role then last name.
func (d *Database) GetTeamPlayers(teamID, role string) ([]types.Player, error) {
	query := d.db.
		Joins("JOIN team_players ON team_players.player_id = players.player_id").
		Where("team_players.team_id = ?", teamID)
	if role != "" {
		query = query.Where("players.role = ?", role)
	}

	var players []types.Player
	if err := query.Order("players.role ASC, players.last_name ASC").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}
	return players, nil
}

// PlayersOwnedBy returns the subset of playerIDs currently owned by the
// team. Runs against the supplied handle so trade transactions can
// re-check ownership inside their own transaction.
func (d *Database) PlayersOwnedBy(tx *gorm.DB, teamID string, playerIDs []string) (map[string]bool, error) {
	if tx == nil {
		tx = d.db
	}

	var rows []types.TeamPlayer
	if err := tx.Where("team_id = ? AND player_id IN ?", teamID, playerIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to check player ownership: %w", err)
	}

	owned := make(map[string]bool, len(rows))
	for _, row := range rows {
		owned[row.PlayerID] = true
	}
	return owned, nil
}

// GetTeamsByIDs fetches team records keyed by team ID. Runs against the
// supplied handle when non-nil so it can be used mid-transaction.
func (d *Database) GetTeamsByIDs(tx *gorm.DB, teamIDs []string) (map[string]types.Team, error) {
	if tx == nil {
		tx = d.db
	}

	var teams []types.Team
	if err := tx.Where("team_id IN ?", teamIDs).Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	teamMap := make(map[string]types.Team, len(teams))
	for _, team := range teams {
		teamMap[team.TeamID] = team
	}
	return teamMap, nil
}

// GetPlayersByIDs fetches player records keyed by player ID. Runs
// against the supplied handle when non-nil so it can be used
// mid-transaction.
func (d *Database) GetPlayersByIDs(tx *gorm.DB, playerIDs []string) (map[string]types.Player, error) {
	if tx == nil {
		tx = d.db
	}

	var players []types.Player
	if err := tx.Where("player_id IN ?", playerIDs).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}

	playerMap := make(map[string]types.Player, len(players))
	for _, player := range players {
		playerMap[player.PlayerID] = player
	}
	return playerMap, nil
}

// TransferPlayers applies a set of ownership moves inside the caller's
// transaction. Every move must succeed or the transaction is poisoned:
// a move whose source row is missing returns ErrPlayerNotOwned so the
// caller can roll back. All removals run before any insert so a player
// appearing on both sides of a swap does not trip the unique pair
// index. A player's teams count is unchanged by a move (one owner out,
// one owner in).
func (d *Database) TransferPlayers(tx *gorm.DB, moves []Move) error {
	for _, move := range moves {
		result := tx.Where("team_id = ? AND player_id = ?", move.FromTeamID, move.PlayerID).
			Delete(&types.TeamPlayer{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove player %s from team %s: %w",
				move.PlayerID, move.FromTeamID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("player %s on team %s: %w", move.PlayerID, move.FromTeamID, ErrPlayerNotOwned)
		}
	}

	for _, move := range moves {
		row := types.TeamPlayer{
			TeamID:   move.ToTeamID,
			PlayerID: move.PlayerID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to add player %s to team %s: %w",
				move.PlayerID, move.ToTeamID, err)
		}
	}
	return nil
}

// AdjustCredits changes a team's credit balance inside the caller's
// transaction, failing if the result would be negative.
func (d *Database) AdjustCredits(tx *gorm.DB, teamID string, delta int64) error {
	var team types.Team
	if err := tx.Where("team_id = ?", teamID).First(&team).Error; err != nil {
		return fmt.Errorf("failed to fetch team %s: %w", teamID, err)
	}

	if team.Credits+delta < 0 {
		return ErrInsufficientCredits
	}

	if err := tx.Model(&types.Team{}).Where("team_id = ?", teamID).
		Update("credits", gorm.Expr("credits + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to adjust credits for team %s: %w", teamID, err)
	}
	return nil
}

// AddPlayerToTeam creates an ownership row and bumps the player's teams
// count in one transaction.
func (d *Database) AddPlayerToTeam(teamID, playerID string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var existing types.TeamPlayer
		err := tx.Where("team_id = ? AND player_id = ?", teamID, playerID).First(&existing).Error
		if err == nil {
			return ErrAlreadyOnTeam
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var player types.Player
		if err := tx.Where("player_id = ?", playerID).First(&player).Error; err != nil {
			return err
		}

		row := types.TeamPlayer{TeamID: teamID, PlayerID: playerID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		return tx.Model(&types.Player{}).Where("player_id = ?", playerID).
			Update("teams_count", gorm.Expr("teams_count + 1")).Error
	})
}

// RemovePlayerFromTeam deletes an ownership row and decrements the
// player's teams count in one transaction.
func (d *Database) RemovePlayerFromTeam(teamID, playerID string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("team_id = ? AND player_id = ?", teamID, playerID).
			Delete(&types.TeamPlayer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPlayerNotOwned
		}

		return tx.Model(&types.Player{}).Where("player_id = ?", playerID).
			Update("teams_count", gorm.Expr("teams_count - 1")).Error
	})
}
