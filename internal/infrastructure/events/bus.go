// Package events provides an in-process publish/subscribe bus for rumor
// lifecycle events.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ersonp/rumor-mill/internal/domain/ports"
)

// Handler consumes one event. Handlers run synchronously on the
// publisher's goroutine and must not block for long.
type Handler func(ctx context.Context, event ports.Event)

// Bus fans events out to registered handlers. Subscriptions are keyed by
// event type; the empty type subscribes to everything.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for one event type. An empty eventType
// receives every published event.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to every matching handler. A handler panic
// is recovered and logged so one consumer cannot take down the others.
func (b *Bus) Publish(ctx context.Context, event ports.Event) error {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.handlers[event.Type])+len(b.handlers[""]))
	matched = append(matched, b.handlers[event.Type]...)
	matched = append(matched, b.handlers[""]...)
	b.mu.RUnlock()

	for _, handler := range matched {
		b.deliver(ctx, handler, event)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, handler Handler, event ports.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				"event_type", event.Type,
				"rumor_id", event.RumorID,
				"panic", r)
		}
	}()
	handler(ctx, event)
}
