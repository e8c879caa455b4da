package notify

import (
	"github.com/rs/zerolog/log"
)

// Event kinds emitted by the trade engine.
const (
	EventTradeProposed      = "TRADE_PROPOSED"
	EventTradeAccepted      = "TRADE_ACCEPTED"
	EventTradeRejected      = "TRADE_REJECTED"
	EventTradeApproved      = "TRADE_APPROVED"
	EventTradeAdminRejected = "TRADE_ADMIN_REJECTED"
	EventTradeCancelled     = "TRADE_CANCELLED"
)

// Dispatcher delivers trade lifecycle notifications to teams. Calls are
// fire-and-forget: implementations must never block the caller on
// delivery and failures must never surface as trade-operation errors.
type Dispatcher interface {
	Notify(kind, tradeID, targetTeamID string, context ...string)
}

// LogDispatcher writes notifications to the application log. It is the
// default dispatcher and the fallback when no push transport is configured.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Notify(kind, tradeID, targetTeamID string, context ...string) {
	log.Info().
		Str("component", "notifier").
		Str("event", kind).
		Str("trade_id", tradeID).
		Str("target_team_id", targetTeamID).
		Strs("context", context).
		Msg("trade notification dispatched")
}
