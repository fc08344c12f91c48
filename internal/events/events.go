// Package events publishes round lifecycle notifications to a message bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeRoundAllocated = "round.allocated"
	TypeRoundStarted   = "round.started"
	TypeRoundFinished  = "round.finished"
	TypeWagerSubmitted = "wager.submitted"
	TypeWagerWithdrawn = "wager.withdrawn"
	TypeRoundSettled   = "round.settled"
	TypePaymentMade    = "payment.recorded"
)

// Event is the envelope written to the bus.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Round      int       `json:"round"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New builds an event with a fresh id.
func New(eventType string, round int, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Round:      round,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher sends events to a bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
