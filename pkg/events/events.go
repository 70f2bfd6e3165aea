// Package events publishes platform events to in-process subscribers.
// Events wrap finished artifacts and derived snapshots; subscribers never
// see live engine state.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/matchspine/pkg/contracts"
)

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine; slow consumers belong behind their own queue.
type Handler func(event contracts.PlatformEvent)

// Bus is a minimal in-process publisher with per-name subscriber fan-out.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	clock       func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
		clock:       time.Now,
	}
}

// WithClock overrides the clock for deterministic testing.
func (b *Bus) WithClock(clock func() time.Time) *Bus {
	b.clock = clock
	return b
}

// Subscribe registers a handler for one event name, or for every event
// when name is empty.
func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], handler)
}

// Publish wraps the payload in an event envelope and fans it out.
func (b *Bus) Publish(name, correlation string, payload any, meta map[string]any) contracts.PlatformEvent {
	event := contracts.PlatformEvent{
		EventID:     uuid.NewString(),
		Name:        name,
		OccurredAt:  b.clock().UTC(),
		Correlation: correlation,
		Payload:     payload,
		Meta:        meta,
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[name]...)
	handlers = append(handlers, b.subscribers[""]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
	return event
}
