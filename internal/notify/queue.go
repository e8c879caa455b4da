package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event is a queued notification awaiting delivery.
type Event struct {
	EventID      string
	Kind         string
	TradeID      string
	TargetTeamID string
	Context      []string
	CreatedAt    time.Time
}

// SendFunc delivers a single event to the external notification
// transport. Returning an error marks the delivery as failed; failed
// deliveries are logged and dropped, never retried on the request path.
type SendFunc func(event Event) error

// QueueDispatcher buffers notifications and delivers them from a
// background worker so trade transactions never block on delivery.
type QueueDispatcher struct {
	events chan Event
	send   SendFunc
}

func NewQueueDispatcher(send SendFunc) *QueueDispatcher {
	return &QueueDispatcher{
		events: make(chan Event, 256),
		send:   send,
	}
}

// Notify enqueues an event. When the buffer is full the event is
// dropped: notification delivery is best-effort by contract.
func (d *QueueDispatcher) Notify(kind, tradeID, targetTeamID string, context ...string) {
	event := Event{
		EventID:      "EVT_" + uuid.New().String(),
		Kind:         kind,
		TradeID:      tradeID,
		TargetTeamID: targetTeamID,
		Context:      context,
		CreatedAt:    time.Now(),
	}

	select {
	case d.events <- event:
	default:
		log.Warn().
			Str("component", "notifier").
			Str("event", kind).
			Str("trade_id", tradeID).
			Msg("notification queue full, event dropped")
	}
}

// Start runs the delivery loop until the context is cancelled.
func (d *QueueDispatcher) Start(ctx context.Context) {
	logger := log.With().Str("component", "notifier").Logger()
	logger.Info().Msg("starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down notification dispatcher")
			return
		case event := <-d.events:
			if err := d.send(event); err != nil {
				logger.Error().
					Err(err).
					Str("event_id", event.EventID).
					Str("event", event.Kind).
					Str("trade_id", event.TradeID).
					Str("target_team_id", event.TargetTeamID).
					Msg("notification delivery failed")
				continue
			}
			logger.Debug().
				Str("event_id", event.EventID).
				Str("event", event.Kind).
				Str("trade_id", event.TradeID).
				Str("target_team_id", event.TargetTeamID).
				Msg("notification delivered")
		}
	}
}
