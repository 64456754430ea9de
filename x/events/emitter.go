package events

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/rs/zerolog"
)

// Emitter fans settlement events out to subscribers.
type Emitter struct {
	log   zerolog.Logger
	feed  event.Feed
	scope event.SubscriptionScope
}

// NewEmitter returns a ready Emitter.
func NewEmitter(log zerolog.Logger) *Emitter {
	return &Emitter{
		log: log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a channel to receive every emitted event. Delivery
// blocks the producing component until every subscriber channel accepts,
// and producers emit while holding their state locks: subscribers must
// use a buffered channel and drain it promptly, or they stall the
// settlement operations behind those locks. The returned subscription
// must be unsubscribed when the consumer is done.
func (e *Emitter) Subscribe(ch chan<- Envelope) event.Subscription {
	return e.scope.Track(e.feed.Subscribe(ch))
}

// Emit delivers an event to all subscribers, blocking until each one
// accepts. See Subscribe for the drain contract.
func (e *Emitter) Emit(payload any) {
	e.log.Debug().Str("event", fmt.Sprintf("%T", payload)).Msg("Emitting event")
	e.feed.Send(Envelope{
		EmittedAt: time.Now(),
		Payload:   payload,
	})
}

// Close unsubscribes all subscribers.
func (e *Emitter) Close() {
	e.scope.Close()
}
