package ports

import (
	"context"
	"time"
)

// Event types published by the rumor service.
const (
	EventRumorCreated = "rumor.created"
	EventRumorSpread  = "rumor.spread"
	EventRumorMutated = "rumor.mutated"
	EventRumorDeleted = "rumor.deleted"
)

// Event is a best-effort lifecycle notification. Publishing failures never
// roll back the state change they describe.
type Event struct {
	Type           string
	RumorID        string
	Operation      string
	EntityID       string
	AdditionalData map[string]any
	OccurredAt     time.Time
}

// EventPublisher delivers rumor lifecycle events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
