// Package events provides event bus infrastructure for decoupled,
// event-driven communication between modules.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName uniquely identifies the event type, e.g. "calls.call.started".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events. Embed it and
// construct with NewBaseEvent.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler registered for its
	// name. Handlers run asynchronously; errors are logged, not returned.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a handler for the name returned by
	// Event.EventName().
	Subscribe(eventName string, handler Handler)
}
