package trade

import (
	"fmt"

	"github.com/ksred/fantaleague-api/internal/types"
)

// Event is a lifecycle action applied to a trade.
type Event string

const (
	EventAccept      Event = "accept"
	EventReject      Event = "reject"
	EventApprove     Event = "approve"
	EventAdminReject Event = "admin_reject"
)

// transitions encodes the trade state machine:
//
//	PENDING  --accept-->       ACCEPTED
//	PENDING  --reject-->       REJECTED (terminal)
//	ACCEPTED --approve-->      APPROVED (terminal)
//	ACCEPTED --admin_reject--> REJECTED (terminal)
//
// Deletion is out of band (PENDING or ACCEPTED only) and removes the
// aggregate rather than transitioning it.
var transitions = map[string]map[Event]string{
	types.TradeStatusPending: {
		EventAccept: types.TradeStatusAccepted,
		EventReject: types.TradeStatusRejected,
	},
	types.TradeStatusAccepted: {
		EventApprove:     types.TradeStatusApproved,
		EventAdminReject: types.TradeStatusRejected,
	},
}

// NextStatus returns the status a trade moves to when event is applied,
// or an error when the transition is illegal from the current status.
func NextStatus(current string, event Event) (string, error) {
	next, ok := transitions[current][event]
	if !ok {
		return "", fmt.Errorf("illegal transition %q from status %q", event, current)
	}
	return next, nil
}

// cancellable reports whether a trade in the given status may still be
// deleted by its proposer.
func cancellable(status string) bool {
	return status == types.TradeStatusPending || status == types.TradeStatusAccepted
}
