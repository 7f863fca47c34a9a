// Package events provides event bus infrastructure for decoupled,
// event-driven communication between modules.
package events

import (
	"context"
	"sync"

	"github.com/devvault2026/revampai/platform/logger"
)

// InMemoryBus is a process-local event bus. Async handlers run in their own
// goroutine; handler errors are logged, never propagated to the publisher.
type InMemoryBus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all handlers asynchronously.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	for _, handler := range b.handlersFor(event.EventName()) {
		h := handler
		go func() {
			if err := h.Handle(context.WithoutCancel(ctx), event); err != nil {
				b.log.Error("event handler failed", "event", event.EventName(), "error", err)
			}
		}()
	}
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	registered := b.handlers[eventName]
	out := make([]Handler, len(registered))
	copy(out, registered)
	return out
}

var _ Bus = (*InMemoryBus)(nil)
