package trade

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ksred/fantaleague-api/internal/notify"
	"github.com/ksred/fantaleague-api/internal/phase"
	"github.com/ksred/fantaleague-api/internal/roster"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service is the trade lifecycle engine. Proposals are validated against
// the phase gate and both rosters, accepted trades wait for a league
// administrator, and only an approval moves players and credits. Every
// transition runs in one transaction with a status guard so concurrent
// resolutions of the same trade cannot both apply.
type Service struct {
	db       *Database
	roster   *roster.Database
	phases   *phase.Service
	notifier notify.Dispatcher
}

func NewService(gormDB *gorm.DB, rosterDB *roster.Database, phases *phase.Service, notifier notify.Dispatcher) *Service {
	return &Service{
		db:       NewDatabase(gormDB),
		roster:   rosterDB,
		phases:   phases,
		notifier: notifier,
	}
}

// ProposeRequest is a new trade offer from the authenticated team.
type ProposeRequest struct {
	ToTeamID    string   `json:"to_team_id" binding:"required"`
	PlayersFrom []string `json:"players_from" binding:"required"`
	PlayersTo   []string `json:"players_to" binding:"required"`
	Credits     int64    `json:"credits"`
}

// ProposeTrade validates and records a new PENDING trade. The phase gate
// is checked here and only here: a proposal made while trading is open
// may still be resolved after the window closes.
func (s *Service) ProposeTrade(fromTeamID string, req ProposeRequest) (*types.TradeResponse, error) {
	gate, err := s.phases.Status(time.Now())
	if err != nil {
		return nil, err
	}
	if !gate.Open {
		return nil, fmt.Errorf("%w: %s", ErrTradingClosed, gate.Reason)
	}

	if fromTeamID == req.ToTeamID {
		return nil, ErrSelfTrade
	}
	if req.Credits < 0 {
		return nil, ErrNegativeCredits
	}
	if !validSideLengths(req.PlayersFrom, req.PlayersTo) {
		return nil, ErrInvalidPlayerCount
	}
	if id := firstDuplicate(req.PlayersFrom); id != "" {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	if id := firstDuplicate(req.PlayersTo); id != "" {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}

	fromTeam, err := s.roster.GetTeam(fromTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proposing team: %w", err)
	}
	toTeam, err := s.roster.GetTeam(req.ToTeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient team %s: %w", req.ToTeamID, err)
		}
		return nil, fmt.Errorf("failed to fetch recipient team: %w", err)
	}

	if err := s.checkOwnership(nil, fromTeamID, req.PlayersFrom, req.ToTeamID, req.PlayersTo, ErrPlayersNotOwned); err != nil {
		return nil, err
	}

	allIDs := append(append([]string{}, req.PlayersFrom...), req.PlayersTo...)
	players, err := s.roster.GetPlayersByIDs(nil, allIDs)
	if err != nil {
		return nil, err
	}

	rolesFrom := rolesOf(req.PlayersFrom, players)
	rolesTo := rolesOf(req.PlayersTo, players)
	if role, ok := unbalancedRole(rolesFrom, rolesTo); !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleImbalance, role)
	}

	// Within one division a player appearing on both sides is a plain
	// swap-back and allowed; across divisions it would leave the player
	// owned twice in the same division, so it is rejected.
	if fromTeam.Division != toTeam.Division {
		if common := commonPlayers(req.PlayersFrom, req.PlayersTo); len(common) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrSamePlayerCrossDivision, strings.Join(common, ", "))
		}
	}

	if fromTeam.Credits < req.Credits {
		return nil, roster.ErrInsufficientCredits
	}

	trade := &types.Trade{
		TradeID:    "TRD_" + uuid.New().String(),
		FromTeamID: fromTeamID,
		ToTeamID:   req.ToTeamID,
		Credits:    req.Credits,
		Status:     types.TradeStatusPending,
	}

	entries := make([]types.TradePlayer, 0, len(allIDs))
	for _, id := range req.PlayersFrom {
		entries = append(entries, types.TradePlayer{PlayerID: id, Direction: types.DirectionFrom})
	}
	for _, id := range req.PlayersTo {
		entries = append(entries, types.TradePlayer{PlayerID: id, Direction: types.DirectionTo})
	}

	action := fmt.Sprintf("Trade proposed by %s to %s: %s for %s plus %d credits",
		fromTeam.Name, toTeam.Name,
		playerNames(req.PlayersFrom, players), playerNames(req.PlayersTo, players),
		req.Credits)

	if err := s.db.CreateTradeWithRelations(trade, entries, action); err != nil {
		return nil, err
	}

	log.Info().
		Str("service", "trade").
		Str("trade_id", trade.TradeID).
		Str("from_team_id", fromTeamID).
		Str("to_team_id", req.ToTeamID).
		Int("players_per_side", len(req.PlayersFrom)).
		Int64("credits", req.Credits).
		Msg("trade proposed")

	s.notifier.Notify(notify.EventTradeProposed, trade.TradeID, req.ToTeamID, fromTeam.Name)

	return s.GetTradeForTeam(fromTeamID, trade.TradeID)
}

// RespondToTrade lets the recipient accept or reject a PENDING trade.
// Accepting does not move players or credits; it re-validates both
// rosters and parks the trade in ACCEPTED for the administrator.
func (s *Service) RespondToTrade(teamID, tradeID string, accept bool) (*types.TradeResponse, error) {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.ToTeamID != teamID {
		return nil, ErrTradeNotFound
	}
	if trade.Status != types.TradeStatusPending {
		return nil, ErrNotPending
	}

	team, err := s.roster.GetTeam(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responding team: %w", err)
	}

	event := EventReject
	eventKind := notify.EventTradeRejected
	action := fmt.Sprintf("Trade rejected by %s", team.Name)
	if accept {
		event = EventAccept
		eventKind = notify.EventTradeAccepted
		action = fmt.Sprintf("Trade accepted by %s, awaiting league approval", team.Name)
	}

	next, err := NextStatus(trade.Status, event)
	if err != nil {
		return nil, ErrNotPending
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if accept {
			current, err := s.db.GetTradeTx(tx, tradeID)
			if err != nil {
				return err
			}

			playersFrom, playersTo := splitSides(current.Players)
			if err := s.checkOwnership(tx, current.FromTeamID, playersFrom,
				current.ToTeamID, playersTo, ErrPlayersUnavailable); err != nil {
				return err
			}

			var proposer types.Team
			if err := tx.Where("team_id = ?", current.FromTeamID).First(&proposer).Error; err != nil {
				return fmt.Errorf("failed to fetch proposing team: %w", err)
			}
			if proposer.Credits < current.Credits {
				return roster.ErrInsufficientCredits
			}
		}

		if err := s.db.UpdateStatusGuarded(tx, tradeID, trade.Status, next); err != nil {
			return err
		}
		return s.db.AppendLog(tx, tradeID, action)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("service", "trade").
		Str("trade_id", tradeID).
		Str("team_id", teamID).
		Str("status", next).
		Msg("trade response recorded")

	s.notifier.Notify(eventKind, tradeID, trade.FromTeamID, team.Name)

	return s.GetTradeForTeam(teamID, tradeID)
}

// AdminDecide resolves an ACCEPTED trade. Approval applies the full
// exchange of players and credits in one transaction; any failure rolls
// everything back and the trade stays ACCEPTED. Rejection only records
// the decision.
func (s *Service) AdminDecide(tradeID string, approve bool, reason string) (*types.TradeResponse, error) {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.Status != types.TradeStatusAccepted {
		return nil, ErrNotAccepted
	}

	event := EventAdminReject
	eventKind := notify.EventTradeAdminRejected
	if approve {
		event = EventApprove
		eventKind = notify.EventTradeApproved
	}

	next, err := NextStatus(trade.Status, event)
	if err != nil {
		return nil, ErrNotAccepted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		current, err := s.db.GetTradeTx(tx, tradeID)
		if err != nil {
			return err
		}
		if current.Status != types.TradeStatusAccepted {
			return ErrNotAccepted
		}

		if !approve {
			action := "Trade rejected by league administrator"
			if reason != "" {
				action = fmt.Sprintf("%s: %s", action, reason)
			}
			if err := s.db.UpdateStatusGuarded(tx, tradeID, types.TradeStatusAccepted, next); err != nil {
				return err
			}
			return s.db.AppendLog(tx, tradeID, action)
		}

		playersFrom, playersTo := splitSides(current.Players)
		if err := s.checkOwnership(tx, current.FromTeamID, playersFrom,
			current.ToTeamID, playersTo, ErrPlayersUnavailable); err != nil {
			return err
		}

		moves := make([]roster.Move, 0, len(current.Players))
		for _, id := range playersFrom {
			moves = append(moves, roster.Move{PlayerID: id, FromTeamID: current.FromTeamID, ToTeamID: current.ToTeamID})
		}
		for _, id := range playersTo {
			moves = append(moves, roster.Move{PlayerID: id, FromTeamID: current.ToTeamID, ToTeamID: current.FromTeamID})
		}
		if err := s.roster.TransferPlayers(tx, moves); err != nil {
			return err
		}

		if current.Credits > 0 {
			if err := s.roster.AdjustCredits(tx, current.FromTeamID, -current.Credits); err != nil {
				return err
			}
			if err := s.roster.AdjustCredits(tx, current.ToTeamID, current.Credits); err != nil {
				return err
			}
		}

		if err := s.db.UpdateStatusGuarded(tx, tradeID, types.TradeStatusAccepted, next); err != nil {
			return err
		}

		players, err := s.roster.GetPlayersByIDs(tx, append(append([]string{}, playersFrom...), playersTo...))
		if err != nil {
			return err
		}
		teams, err := s.roster.GetTeamsByIDs(tx, []string{current.FromTeamID, current.ToTeamID})
		if err != nil {
			return err
		}
		action := fmt.Sprintf("Trade approved by league administrator: %s sends %s, %s sends %s, %d credits to %s",
			teams[current.FromTeamID].Name, playerNames(playersFrom, players),
			teams[current.ToTeamID].Name, playerNames(playersTo, players),
			current.Credits, teams[current.ToTeamID].Name)
		return s.db.AppendLog(tx, tradeID, action)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("service", "trade").
		Str("trade_id", tradeID).
		Str("status", next).
		Bool("approved", approve).
		Msg("trade resolved by administrator")

	s.notifier.Notify(eventKind, tradeID, trade.FromTeamID)
	s.notifier.Notify(eventKind, tradeID, trade.ToTeamID)

	return s.buildTradeResponse(tradeID)
}

// CancelTrade removes a trade before it is resolved. Only the proposer
// may cancel, and only while the trade is PENDING or ACCEPTED. The
// aggregate is deleted outright, logs included.
func (s *Service) CancelTrade(teamID, tradeID string) error {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return err
	}
	if trade.FromTeamID != teamID {
		return ErrTradeNotFound
	}
	if !cancellable(trade.Status) {
		return ErrNotCancellable
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.db.DeleteTradeCascade(tx, tradeID,
			[]string{types.TradeStatusPending, types.TradeStatusAccepted})
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		return ErrNotCancellable
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("service", "trade").
		Str("trade_id", tradeID).
		Str("team_id", teamID).
		Msg("trade cancelled")

	s.notifier.Notify(notify.EventTradeCancelled, tradeID, trade.ToTeamID)
	return nil
}

// GetTradeForTeam returns a trade aggregate to one of its participants.
// Non-participants get ErrTradeNotFound, same as a missing trade.
func (s *Service) GetTradeForTeam(teamID, tradeID string) (*types.TradeResponse, error) {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.FromTeamID != teamID && trade.ToTeamID != teamID {
		return nil, ErrTradeNotFound
	}
	return s.toResponse(trade)
}

// ListTrades returns the trades a team participates in.
func (s *Service) ListTrades(teamID, status, tradeType string) ([]types.TradeResponse, error) {
	trades, err := s.db.ListTradesForTeam(teamID, status, tradeType)
	if err != nil {
		return nil, err
	}
	return s.toResponses(trades)
}

// AdminGetTrade returns any trade aggregate without a participant check.
func (s *Service) AdminGetTrade(tradeID string) (*types.TradeResponse, error) {
	return s.buildTradeResponse(tradeID)
}

// AdminListTrades returns every trade plus per-status counts.
func (s *Service) AdminListTrades(status string) ([]types.TradeResponse, map[string]int64, error) {
	trades, err := s.db.ListAllTrades(status)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.toResponses(trades)
	if err != nil {
		return nil, nil, err
	}
	counts, err := s.db.StatusCounts()
	if err != nil {
		return nil, nil, err
	}
	return responses, counts, nil
}

func (s *Service) buildTradeResponse(tradeID string) (*types.TradeResponse, error) {
	trade, err := s.db.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(trade)
}

func (s *Service) toResponse(trade *types.Trade) (*types.TradeResponse, error) {
	responses, err := s.toResponses([]types.Trade{*trade})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// toResponses expands trade rows into full aggregates, resolving team
// names and player records in two batched lookups.
func (s *Service) toResponses(trades []types.Trade) ([]types.TradeResponse, error) {
	teamIDSet := make(map[string]bool)
	playerIDSet := make(map[string]bool)
	for _, trade := range trades {
		teamIDSet[trade.FromTeamID] = true
		teamIDSet[trade.ToTeamID] = true
		for _, entry := range trade.Players {
			playerIDSet[entry.PlayerID] = true
		}
	}

	teams, err := s.roster.GetTeamsByIDs(nil, keys(teamIDSet))
	if err != nil {
		return nil, err
	}
	players, err := s.roster.GetPlayersByIDs(nil, keys(playerIDSet))
	if err != nil {
		return nil, err
	}

	responses := make([]types.TradeResponse, 0, len(trades))
	for _, trade := range trades {
		details := make([]types.TradePlayerDetail, 0, len(trade.Players))
		for _, entry := range trade.Players {
			player := players[entry.PlayerID]
			details = append(details, types.TradePlayerDetail{
				PlayerID:  entry.PlayerID,
				Direction: entry.Direction,
				LastName:  player.LastName,
				RealTeam:  player.RealTeam,
				Role:      player.Role,
				Value:     player.Value,
			})
		}

		logs := trade.Logs
		if logs == nil {
			logs = []types.TradeLog{}
		}

		responses = append(responses, types.TradeResponse{
			TradeID:      trade.TradeID,
			FromTeamID:   trade.FromTeamID,
			FromTeamName: teams[trade.FromTeamID].Name,
			ToTeamID:     trade.ToTeamID,
			ToTeamName:   teams[trade.ToTeamID].Name,
			Credits:      trade.Credits,
			Status:       trade.Status,
			Players:      details,
			Logs:         logs,
			CreatedAt:    trade.CreatedAt,
			UpdatedAt:    trade.UpdatedAt,
		})
	}
	return responses, nil
}

// checkOwnership verifies both sides of a trade against the current
// rosters, wrapping missing players in notOwnedErr so callers can
// distinguish proposal-time validation from resolution-time conflicts.
func (s *Service) checkOwnership(tx *gorm.DB, fromTeamID string, playersFrom []string,
	toTeamID string, playersTo []string, notOwnedErr error) error {

	owned, err := s.roster.PlayersOwnedBy(tx, fromTeamID, playersFrom)
	if err != nil {
		return err
	}
	for _, id := range playersFrom {
		if !owned[id] {
			return fmt.Errorf("%w: %s (team %s)", notOwnedErr, id, fromTeamID)
		}
	}

	owned, err = s.roster.PlayersOwnedBy(tx, toTeamID, playersTo)
	if err != nil {
		return err
	}
	for _, id := range playersTo {
		if !owned[id] {
			return fmt.Errorf("%w: %s (team %s)", notOwnedErr, id, toTeamID)
		}
	}
	return nil
}

// splitSides partitions trade player entries by direction.
func splitSides(entries []types.TradePlayer) (playersFrom, playersTo []string) {
	for _, entry := range entries {
		if entry.Direction == types.DirectionFrom {
			playersFrom = append(playersFrom, entry.PlayerID)
		} else {
			playersTo = append(playersTo, entry.PlayerID)
		}
	}
	return playersFrom, playersTo
}

func rolesOf(playerIDs []string, players map[string]types.Player) []string {
	roles := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		roles = append(roles, players[id].Role)
	}
	return roles
}

func playerNames(playerIDs []string, players map[string]types.Player) string {
	names := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if player, ok := players[id]; ok {
			names = append(names, player.LastName)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
