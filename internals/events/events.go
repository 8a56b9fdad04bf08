package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Slices never import each other. Anything one slice needs to tell another
// travels through this bus as a typed event.

type EventType string

const (
	UserCreated     EventType = "user.created"
	UserUpdated     EventType = "user.updated"
	UserDeactivated EventType = "user.deactivated"
	UserDeleted     EventType = "user.deleted"
)

type Event struct {
	ID        string    `json:"event_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    uuid.UUID `json:"user_id"`
}

func NewUserEvent(eventType EventType, userID uuid.UUID) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		UserID:    userID,
	}
}

type Handler func(Event)

type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]Handler),
	}
}

func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish delivers the event to every subscriber synchronously, in
// subscription order. A panicking subscriber is logged and skipped so one
// slice cannot take down another.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	slog.Debug("Publishing event", "type", event.Type, "eventID", event.ID, "subscribers", len(handlers))

	for _, handler := range handlers {
		b.deliver(event, handler)
	}
}

func (b *Bus) deliver(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event subscriber panicked", "type", event.Type, "eventID", event.ID, "panic", r)
		}
	}()
	handler(event)
}
