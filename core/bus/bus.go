// Package bus provides the process-wide publish/subscribe primitive that
// decouples watcher protocols from the command-handling path.
package bus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EventType identifies a class of events on the bus.
type EventType string

// Core event types.
const (
	EventUserAway        EventType = "USER_AWAY"
	EventUserReturned    EventType = "USER_RETURNED"
	EventVisionBreak     EventType = "VISION_BREAK"
	EventSystemAlert     EventType = "SYSTEM_ALERT"
	EventLockdownWarning EventType = "LOCKDOWN_WARNING"
	EventSystemShutdown  EventType = "SYSTEM_SHUTDOWN"
	EventEnableSentry    EventType = "ENABLE_SENTRY"
	EventDisableSentry   EventType = "DISABLE_SENTRY"
)

// Event carries a type and an opaque payload to subscribers.
type Event struct {
	Type    EventType
	Payload any
}

// Handler is a subscriber callback. Handlers run on their own goroutine;
// a panicking handler is recovered and logged without affecting other
// subscribers or the publisher.
type Handler func(Event)

// EventBus is a simple in-process pub/sub bus.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// New creates an empty event bus.
func New() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for an event type. Handlers are kept in
// subscription order.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish schedules every subscribed handler on its own goroutine and returns
// immediately. Delivery is fire-and-forget: no acknowledgment, no retry.
func (b *EventBus) Publish(eventType EventType, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[eventType]))
	copy(handlers, b.handlers[eventType])
	b.mu.RUnlock()

	evt := Event{Type: eventType, Payload: payload}
	for _, handler := range handlers {
		go b.supervise(handler, evt)
	}
}

// supervise isolates a single handler invocation so one failing subscriber
// cannot take down the bus or its siblings.
func (b *EventBus) supervise(handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[BUS] Handler panic on %s: %v", evt.Type, r)
		}
	}()
	handler(evt)
}

// SubscriberCount reports how many handlers are registered for an event type.
func (b *EventBus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
