// Package eventbus carries trigger and lifecycle events between the API, the
// trigger pipeline and trigger sources.
package eventbus

import (
	"context"

	"github.com/dukex/autoflow/pkg/events"
)

// Event is anything that can travel on the bus. The type selects the
// handler on the receiving side.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes an event. key partitions events on brokers that
// support it; automation ids and event types are used.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// PublisherFunc adapts a plain function to EventPublisher.
type PublisherFunc func(ctx context.Context, key string, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, key string, event Event) error {
	return f(ctx, key, event)
}

// EventHandler receives the decoded event, a pointer to the concrete type
// registered for its event type.
type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	// Handle registers handler for eventType. It must be called before
	// Subscribe.
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
