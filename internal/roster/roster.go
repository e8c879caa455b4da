package roster

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/ksred/fantaleague-api/pkg/response"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service exposes roster reads to the web layer and tx-scoped mutations
// to the trade engine. Ownership rows and credit balances are mutated
// only through the trade engine's transactions or the administrative
// roster edits below.
type Service struct {
	db *Database
}

func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// GetDB exposes the database layer to the trade engine for tx-scoped calls.
func (s *Service) GetDB() *Database {
	return s.db
}

// GetTeam fetches a team by its ID.
func (s *Service) GetTeam(teamID string) (*types.Team, error) {
	return s.db.GetTeam(teamID)
}

// AvailableTeams lists trade counterparties for a team. tradeType
// "local" restricts the list to the caller's division; anything else
// returns all other teams.
func (s *Service) AvailableTeams(teamID, tradeType string) ([]types.Team, error) {
	team, err := s.db.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	division := ""
	if tradeType == "local" {
		division = team.Division
	}
	return s.db.ListTeams(teamID, division)
}

// TeamRoster returns a team's players with per-role stats.
func (s *Service) TeamRoster(teamID, role string) ([]types.Player, *types.RosterStats, error) {
	players, err := s.db.GetTeamPlayers(teamID, role)
	if err != nil {
		return nil, nil, err
	}

	stats := &types.RosterStats{
		TotalPlayers: len(players),
		ByRole: map[string]int{
			types.RoleGoalkeeper: 0,
			types.RoleDefender:   0,
			types.RoleMidfielder: 0,
			types.RoleForward:    0,
		},
	}
	for _, player := range players {
		stats.TotalValue += player.Value
		stats.ByRole[player.Role]++
	}

	return players, stats, nil
}

// AddPlayer puts a player on a team's roster (administrative edit).
func (s *Service) AddPlayer(teamID, playerID string) error {
	if err := s.db.AddPlayerToTeam(teamID, playerID); err != nil {
		return err
	}

	log.Info().
		Str("service", "roster").
		Str("team_id", teamID).
		Str("player_id", playerID).
		Msg("player added to roster")
	return nil
}

// RemovePlayer takes a player off a team's roster (administrative edit).
func (s *Service) RemovePlayer(teamID, playerID string) error {
	if err := s.db.RemovePlayerFromTeam(teamID, playerID); err != nil {
		return err
	}

	log.Info().
		Str("service", "roster").
		Str("team_id", teamID).
		Str("player_id", playerID).
		Msg("player removed from roster")
	return nil
}

// GinHandlers contains HTTP handlers for roster endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// MyRosterHandler handles GET requests for the caller's own roster
func (h *GinHandlers) MyRosterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		players, stats, err := h.service.TeamRoster(teamID, c.Query("role"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"players": players, "stats": stats})
	}
}

// AvailableTeamsHandler handles GET requests listing trade counterparties.
// Query parameter: type=local|global
func (h *GinHandlers) AvailableTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.GetString("teamID")
		if teamID == "" {
			response.Unauthorized(c, "Missing team identity")
			return
		}

		teams, err := h.service.AvailableTeams(teamID, c.Query("type"))
		response.Handle(c, teams, err)
	}
}

// AvailablePlayersHandler handles GET requests for another team's
// tradable players. Query parameters: team_id (required), role.
func (h *GinHandlers) AvailablePlayersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		targetTeamID := c.Query("team_id")
		if targetTeamID == "" {
			response.BadRequest(c, "team_id is required")
			return
		}

		players, _, err := h.service.TeamRoster(targetTeamID, c.Query("role"))
		response.Handle(c, players, err)
	}
}

// AdminTeamRosterHandler handles GET requests for any team's roster (admin)
func (h *GinHandlers) AdminTeamRosterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.Param("team_id")

		team, err := h.service.GetTeam(teamID)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		players, stats, err := h.service.TeamRoster(teamID, "")
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"team": team, "players": players, "stats": stats})
	}
}

// AdminAddPlayerHandler handles POST requests to add a player to a roster
func (h *GinHandlers) AdminAddPlayerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.Param("team_id")

		var request struct {
			PlayerID string `json:"player_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		err := h.service.AddPlayer(teamID, request.PlayerID)
		if errors.Is(err, ErrAlreadyOnTeam) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"message": "player added to roster"})
	}
}

// AdminRemovePlayerHandler handles DELETE requests to remove a player
// from a roster
func (h *GinHandlers) AdminRemovePlayerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := c.Param("team_id")
		playerID := c.Param("player_id")

		err := h.service.RemovePlayer(teamID, playerID)
		if errors.Is(err, ErrPlayerNotOwned) {
			response.NotFound(c, err.Error())
			return
		}
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{"message": "player removed from roster"})
	}
}
