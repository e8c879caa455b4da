package trade

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ksred/fantaleague-api/internal/database"
	"github.com/ksred/fantaleague-api/internal/notify"
	"github.com/ksred/fantaleague-api/internal/phase"
	"github.com/ksred/fantaleague-api/internal/roster"
	"github.com/ksred/fantaleague-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingDispatcher captures notifications for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingDispatcher) Notify(kind, tradeID, targetTeamID string, context ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+targetTeamID)
}

func (r *recordingDispatcher) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}

type tradeFixture struct {
	service  *Service
	rosterDB *roster.Database
	phases   *phase.Service
	db       *gorm.DB
	notifier *recordingDispatcher
}

func setupFixture(t *testing.T) *tradeFixture {
	t.Helper()

	db, err := database.NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	rosterDB := roster.NewDatabase(db)
	phases := phase.NewService(db)
	notifier := &recordingDispatcher{}

	return &tradeFixture{
		service:  NewService(db, rosterDB, phases, notifier),
		rosterDB: rosterDB,
		phases:   phases,
		db:       db,
		notifier: notifier,
	}
}

func (f *tradeFixture) openTrading(t *testing.T) {
	t.Helper()
	_, err := f.phases.SetPhase(types.PhaseOpen, nil, nil)
	require.NoError(t, err)
}

func (f *tradeFixture) seedTeam(t *testing.T, teamID, name, division string, credits int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&types.Team{
		TeamID:   teamID,
		Name:     name,
		Division: division,
		Credits:  credits,
	}).Error)
}

func (f *tradeFixture) seedPlayer(t *testing.T, playerID, lastName, role string, owners ...string) {
	t.Helper()
	require.NoError(t, f.db.Create(&types.Player{
		PlayerID:   playerID,
		LastName:   lastName,
		Role:       role,
		Value:      10,
		TeamsCount: len(owners),
	}).Error)
	for _, teamID := range owners {
		require.NoError(t, f.db.Create(&types.TeamPlayer{
			TeamID:   teamID,
			PlayerID: playerID,
		}).Error)
	}
}

// seedLeague creates two teams in division A, one in division B, and a
// handful of players on each roster.
func (f *tradeFixture) seedLeague(t *testing.T) {
	t.Helper()
	f.seedTeam(t, "TEAM_A1", "Alpha", "A", 100)
	f.seedTeam(t, "TEAM_A2", "Beta", "A", 50)
	f.seedTeam(t, "TEAM_B1", "Gamma", "B", 80)

	f.seedPlayer(t, "PLR_D1", "Rossi", types.RoleDefender, "TEAM_A1")
	f.seedPlayer(t, "PLR_D2", "Bianchi", types.RoleDefender, "TEAM_A1")
	f.seedPlayer(t, "PLR_F1", "Ferrari", types.RoleForward, "TEAM_A1")

	f.seedPlayer(t, "PLR_D3", "Russo", types.RoleDefender, "TEAM_A2")
	f.seedPlayer(t, "PLR_D4", "Esposito", types.RoleDefender, "TEAM_A2")
	f.seedPlayer(t, "PLR_F2", "Colombo", types.RoleForward, "TEAM_A2")

	f.seedPlayer(t, "PLR_D5", "Ricci", types.RoleDefender, "TEAM_B1")
	f.seedPlayer(t, "PLR_M1", "Marino", types.RoleMidfielder, "TEAM_B1")
}

func (f *tradeFixture) owns(t *testing.T, teamID, playerID string) bool {
	t.Helper()
	owned, err := f.rosterDB.PlayersOwnedBy(nil, teamID, []string{playerID})
	require.NoError(t, err)
	return owned[playerID]
}

func (f *tradeFixture) credits(t *testing.T, teamID string) int64 {
	t.Helper()
	team, err := f.rosterDB.GetTeam(teamID)
	require.NoError(t, err)
	return team.Credits
}

func proposeBasic(t *testing.T, f *tradeFixture) *types.TradeResponse {
	t.Helper()
	resp, err := f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_A2",
		PlayersFrom: []string{"PLR_D1"},
		PlayersTo:   []string{"PLR_D3"},
		Credits:     10,
	})
	require.NoError(t, err)
	return resp
}

func TestProposeTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	assert.NotEmpty(t, resp.TradeID)
	assert.Equal(t, types.TradeStatusPending, resp.Status)
	assert.Equal(t, "Alpha", resp.FromTeamName)
	assert.Equal(t, "Beta", resp.ToTeamName)
	assert.Len(t, resp.Players, 2)
	require.Len(t, resp.Logs, 1)
	assert.Contains(t, resp.Logs[0].Action, "Rossi")
	assert.Contains(t, resp.Logs[0].Action, "Russo")
	assert.Contains(t, resp.Logs[0].Action, "10 credits")

	// Proposal alone moves nothing
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_D3"))
	assert.Equal(t, int64(100), f.credits(t, "TEAM_A1"))

	assert.Contains(t, f.notifier.all(), notify.EventTradeProposed+":TEAM_A2")
}

func TestProposeTradeValidation(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	cases := []struct {
		name    string
		from    string
		req     ProposeRequest
		wantErr error
	}{
		{
			name: "self trade",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A1",
				PlayersFrom: []string{"PLR_D1"},
				PlayersTo:   []string{"PLR_D2"},
			},
			wantErr: ErrSelfTrade,
		},
		{
			name: "negative credits",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_D1"},
				PlayersTo:   []string{"PLR_D3"},
				Credits:     -1,
			},
			wantErr: ErrNegativeCredits,
		},
		{
			name: "unequal sides",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_D1", "PLR_D2"},
				PlayersTo:   []string{"PLR_D3"},
			},
			wantErr: ErrInvalidPlayerCount,
		},
		{
			name: "empty sides",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{},
				PlayersTo:   []string{},
			},
			wantErr: ErrInvalidPlayerCount,
		},
		{
			name: "duplicate on one side",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_D1", "PLR_D1"},
				PlayersTo:   []string{"PLR_D3", "PLR_D4"},
			},
			wantErr: ErrDuplicatePlayer,
		},
		{
			name: "player not owned by proposer",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_D3"},
				PlayersTo:   []string{"PLR_D4"},
			},
			wantErr: ErrPlayersNotOwned,
		},
		{
			name: "player not owned by recipient",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_D1"},
				PlayersTo:   []string{"PLR_D5"},
			},
			wantErr: ErrPlayersNotOwned,
		},
		{
			name: "role imbalance",
			from: "TEAM_A1",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A2",
				PlayersFrom: []string{"PLR_F1"},
				PlayersTo:   []string{"PLR_D3"},
			},
			wantErr: ErrRoleImbalance,
		},
		{
			name: "insufficient credits",
			from: "TEAM_A2",
			req: ProposeRequest{
				ToTeamID:    "TEAM_A1",
				PlayersFrom: []string{"PLR_D3"},
				PlayersTo:   []string{"PLR_D1"},
				Credits:     51,
			},
			wantErr: roster.ErrInsufficientCredits,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.ProposeTrade(tc.from, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestProposeTradeClosedPhase(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)

	// No phase configured at all
	_, err := f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_A2",
		PlayersFrom: []string{"PLR_D1"},
		PlayersTo:   []string{"PLR_D3"},
	})
	assert.ErrorIs(t, err, ErrTradingClosed)

	_, err = f.phases.SetPhase(types.PhaseClosed, nil, nil)
	require.NoError(t, err)

	_, err = f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_A2",
		PlayersFrom: []string{"PLR_D1"},
		PlayersTo:   []string{"PLR_D3"},
	})
	assert.ErrorIs(t, err, ErrTradingClosed)
}

func TestProposeTradeCrossDivisionSamePlayer(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	// PLR_X is owned by a team in each division
	f.seedPlayer(t, "PLR_X", "Greco", types.RoleDefender, "TEAM_A1", "TEAM_B1")

	_, err := f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_B1",
		PlayersFrom: []string{"PLR_X"},
		PlayersTo:   []string{"PLR_X"},
	})
	assert.ErrorIs(t, err, ErrSamePlayerCrossDivision)
}

func TestSamePlayerBothSidesWithinDivision(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	// Both division A teams own PLR_Y; including it on both sides is a
	// legal swap-back and must survive the unique ownership index.
	f.seedPlayer(t, "PLR_Y", "Bruno", types.RoleDefender, "TEAM_A1", "TEAM_A2")

	resp, err := f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_A2",
		PlayersFrom: []string{"PLR_Y"},
		PlayersTo:   []string{"PLR_Y"},
	})
	require.NoError(t, err)

	_, err = f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)
	final, err := f.service.AdminDecide(resp.TradeID, true, "")
	require.NoError(t, err)

	assert.Equal(t, types.TradeStatusApproved, final.Status)
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_Y"))
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_Y"))
}

func TestRespondToTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	// Only the recipient may respond
	_, err := f.service.RespondToTrade("TEAM_A1", resp.TradeID, true)
	assert.ErrorIs(t, err, ErrTradeNotFound)
	_, err = f.service.RespondToTrade("TEAM_B1", resp.TradeID, true)
	assert.ErrorIs(t, err, ErrTradeNotFound)

	accepted, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusAccepted, accepted.Status)

	// Acceptance does not execute the exchange
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_D3"))
	assert.Equal(t, int64(100), f.credits(t, "TEAM_A1"))

	// A second response hits a non-pending trade
	_, err = f.service.RespondToTrade("TEAM_A2", resp.TradeID, false)
	assert.ErrorIs(t, err, ErrNotPending)

	assert.Contains(t, f.notifier.all(), notify.EventTradeAccepted+":TEAM_A1")
}

func TestRejectTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	rejected, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, false)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusRejected, rejected.Status)

	// Terminal: the administrator cannot act on it
	_, err = f.service.AdminDecide(resp.TradeID, true, "")
	assert.ErrorIs(t, err, ErrNotAccepted)

	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.Contains(t, f.notifier.all(), notify.EventTradeRejected+":TEAM_A1")
}

func TestAcceptRevalidatesOwnership(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	// The offered player leaves the proposer's roster before acceptance
	require.NoError(t, f.rosterDB.RemovePlayerFromTeam("TEAM_A1", "PLR_D1"))

	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	assert.ErrorIs(t, err, ErrPlayersUnavailable)

	// The failed acceptance leaves the trade pending
	current, err := f.service.GetTradeForTeam("TEAM_A2", resp.TradeID)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusPending, current.Status)
}

func TestAdminApprove(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)

	approved, err := f.service.AdminDecide(resp.TradeID, true, "")
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusApproved, approved.Status)

	// Players swapped
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_D1"))
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D3"))
	assert.False(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.False(t, f.owns(t, "TEAM_A2", "PLR_D3"))

	// Credits moved from proposer to recipient and total is conserved
	assert.Equal(t, int64(90), f.credits(t, "TEAM_A1"))
	assert.Equal(t, int64(60), f.credits(t, "TEAM_A2"))

	// Proposal, acceptance and approval are all on record
	assert.Len(t, approved.Logs, 3)

	// Approval is terminal
	_, err = f.service.AdminDecide(resp.TradeID, true, "")
	assert.ErrorIs(t, err, ErrNotAccepted)

	events := f.notifier.all()
	assert.Contains(t, events, notify.EventTradeApproved+":TEAM_A1")
	assert.Contains(t, events, notify.EventTradeApproved+":TEAM_A2")
}

func TestAdminReject(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)

	rejected, err := f.service.AdminDecide(resp.TradeID, false, "unbalanced values")
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusRejected, rejected.Status)
	assert.Contains(t, rejected.Logs[0].Action, "unbalanced values")

	// Nothing moved
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_D3"))
	assert.Equal(t, int64(100), f.credits(t, "TEAM_A1"))
}

func TestAdminDecideRequiresAcceptance(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	_, err := f.service.AdminDecide(resp.TradeID, true, "")
	assert.ErrorIs(t, err, ErrNotAccepted)

	_, err = f.service.AdminDecide("TRD_missing", true, "")
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestApprovalIsAtomic(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp, err := f.service.ProposeTrade("TEAM_A1", ProposeRequest{
		ToTeamID:    "TEAM_A2",
		PlayersFrom: []string{"PLR_D1", "PLR_D2"},
		PlayersTo:   []string{"PLR_D3", "PLR_D4"},
		Credits:     5,
	})
	require.NoError(t, err)
	_, err = f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)

	// One of the recipient's players disappears before the decision
	require.NoError(t, f.rosterDB.RemovePlayerFromTeam("TEAM_A2", "PLR_D4"))

	_, err = f.service.AdminDecide(resp.TradeID, true, "")
	assert.ErrorIs(t, err, ErrPlayersUnavailable)

	// Everything rolled back: trade still accepted, no partial movement
	current, err := f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusAccepted, current.Status)
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D1"))
	assert.True(t, f.owns(t, "TEAM_A1", "PLR_D2"))
	assert.True(t, f.owns(t, "TEAM_A2", "PLR_D3"))
	assert.Equal(t, int64(100), f.credits(t, "TEAM_A1"))
	assert.Equal(t, int64(50), f.credits(t, "TEAM_A2"))
}

func TestCancelTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	// Only the proposer may cancel
	err := f.service.CancelTrade("TEAM_A2", resp.TradeID)
	assert.ErrorIs(t, err, ErrTradeNotFound)

	require.NoError(t, f.service.CancelTrade("TEAM_A1", resp.TradeID))

	// The aggregate is gone
	_, err = f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	assert.ErrorIs(t, err, ErrTradeNotFound)

	assert.Contains(t, f.notifier.all(), notify.EventTradeCancelled+":TEAM_A2")
}

func TestCancelAcceptedTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)

	require.NoError(t, f.service.CancelTrade("TEAM_A1", resp.TradeID))

	_, err = f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestCancelResolvedTrade(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)
	_, err = f.service.AdminDecide(resp.TradeID, true, "")
	require.NoError(t, err)

	err = f.service.CancelTrade("TEAM_A1", resp.TradeID)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestGetTradeAuthorization(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	_, err := f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	assert.NoError(t, err)
	_, err = f.service.GetTradeForTeam("TEAM_A2", resp.TradeID)
	assert.NoError(t, err)

	// An outsider cannot tell the trade exists
	_, err = f.service.GetTradeForTeam("TEAM_B1", resp.TradeID)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestListTrades(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	first := proposeBasic(t, f)

	second, err := f.service.ProposeTrade("TEAM_A2", ProposeRequest{
		ToTeamID:    "TEAM_A1",
		PlayersFrom: []string{"PLR_F2"},
		PlayersTo:   []string{"PLR_F1"},
	})
	require.NoError(t, err)

	all, err := f.service.ListTrades("TEAM_A1", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	incoming, err := f.service.ListTrades("TEAM_A1", "", "incoming")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, second.TradeID, incoming[0].TradeID)

	outgoing, err := f.service.ListTrades("TEAM_A1", "", "outgoing")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, first.TradeID, outgoing[0].TradeID)

	none, err := f.service.ListTrades("TEAM_B1", "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGuardedStatusUpdate(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)

	// A resolver working from a stale status loses on the guard
	err := f.service.db.Transaction(func(tx *gorm.DB) error {
		return f.service.db.UpdateStatusGuarded(tx, resp.TradeID,
			types.TradeStatusAccepted, types.TradeStatusApproved)
	})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// The trade is untouched and the in-order transition still works
	current, err := f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusPending, current.Status)

	err = f.service.db.Transaction(func(tx *gorm.DB) error {
		return f.service.db.UpdateStatusGuarded(tx, resp.TradeID,
			types.TradeStatusPending, types.TradeStatusAccepted)
	})
	assert.NoError(t, err)
}

func TestCancelGuardAgainstResolution(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	resp := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", resp.TradeID, true)
	require.NoError(t, err)
	_, err = f.service.AdminDecide(resp.TradeID, true, "")
	require.NoError(t, err)

	// The delete carries the allowed statuses into its WHERE clause, so
	// an approved trade survives even a direct cascade attempt
	err = f.service.db.Transaction(func(tx *gorm.DB) error {
		return f.service.db.DeleteTradeCascade(tx, resp.TradeID,
			[]string{types.TradeStatusPending, types.TradeStatusAccepted})
	})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	current, err := f.service.GetTradeForTeam("TEAM_A1", resp.TradeID)
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusApproved, current.Status)
}

func TestAdminListTrades(t *testing.T) {
	f := setupFixture(t)
	f.seedLeague(t)
	f.openTrading(t)

	first := proposeBasic(t, f)
	_, err := f.service.RespondToTrade("TEAM_A2", first.TradeID, true)
	require.NoError(t, err)

	_, err = f.service.ProposeTrade("TEAM_A2", ProposeRequest{
		ToTeamID:    "TEAM_A1",
		PlayersFrom: []string{"PLR_F2"},
		PlayersTo:   []string{"PLR_F1"},
	})
	require.NoError(t, err)

	trades, counts, err := f.service.AdminListTrades("")
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.Equal(t, int64(1), counts[types.TradeStatusAccepted])
	assert.Equal(t, int64(1), counts[types.TradeStatusPending])

	accepted, _, err := f.service.AdminListTrades(types.TradeStatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, first.TradeID, accepted[0].TradeID)
}
