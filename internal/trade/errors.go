package trade

import "errors"

// Validation errors: rejected before any persistence, the caller must
// change the input.
var (
	ErrTradingClosed           = errors.New("trading is closed")
	ErrSelfTrade               = errors.New("cannot trade with your own team")
	ErrInvalidPlayerCount      = errors.New("each side must offer between 1 and 5 players, in equal numbers")
	ErrDuplicatePlayer         = errors.New("the same player cannot be selected twice on one side")
	ErrPlayersNotOwned         = errors.New("some players are not on the offering team's roster")
	ErrRoleImbalance           = errors.New("player roles must be balanced on both sides")
	ErrSamePlayerCrossDivision = errors.New("cross-division trades cannot include the same player on both sides")
	ErrNegativeCredits         = errors.New("credits cannot be negative")
)

// Conflict errors: detected inside the transaction; the state moved
// under the caller, who should refresh and retry the whole operation.
var (
	ErrPlayersUnavailable = errors.New("some players are no longer available")
	ErrNotPending         = errors.New("trade is not awaiting a recipient response")
	ErrNotAccepted        = errors.New("trade is not awaiting an administrator decision")
	ErrNotCancellable     = errors.New("trade can no longer be cancelled")
	ErrAlreadyProcessed   = errors.New("trade was already processed")
)

// ErrTradeNotFound covers both missing trades and trades the caller is
// not a participant of, so existence is not leaked to outsiders.
var ErrTradeNotFound = errors.New("trade not found")
