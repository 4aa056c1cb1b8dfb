package shared

import "context"

// EventHandler consumes domain events raised by aggregates, for example
// order status transitions.
type EventHandler interface {
	// Handle processes a single domain event.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants to receive.
	// An empty slice subscribes the handler to every event.
	EventTypes() []string
}

// EventPublisher delivers domain events to subscribed handlers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations.
type EventSubscriber interface {
	// Subscribe registers a handler. Explicit event types override the
	// handler's own EventTypes; with neither, the handler receives all
	// events.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes the handler from every type it was registered
	// under.
	Unsubscribe(handler EventHandler)
}

// EventBus combines publishing and subscription.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
