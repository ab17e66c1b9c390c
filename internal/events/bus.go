package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(IncludeEnteredEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case IncludeEnteredEvent:
		event.Publish(b.dispatcher, e)
	case HeaderProbedEvent:
		event.Publish(b.dispatcher, e)
	case ValidationWarningEvent:
		event.Publish(b.dispatcher, e)
	case SessionCompletedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives.
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e SessionCompletedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(IncludeEnteredEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HeaderProbedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ValidationWarningEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionCompletedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
