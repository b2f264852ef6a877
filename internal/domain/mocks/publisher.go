package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

// EventPublisher is a mock implementation of ports.EventPublisher that
// records every published event.
type EventPublisher struct {
	mu     sync.Mutex
	events []ports.Event

	Err error
}

// Publish records the event or returns the configured error.
func (m *EventPublisher) Publish(_ context.Context, event ports.Event) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (m *EventPublisher) Events() []ports.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Event(nil), m.events...)
}

// LastEvent returns the most recent event, or a zero Event.
func (m *EventPublisher) LastEvent() ports.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return ports.Event{}
	}
	return m.events[len(m.events)-1]
}
