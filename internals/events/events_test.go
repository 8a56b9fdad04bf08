package events

import (
	"testing"

	"github.com/google/uuid"
)

func TestPublish_DeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	userID := uuid.New()

	var received []Event
	bus.Subscribe(UserCreated, func(e Event) {
		received = append(received, e)
	})
	bus.Subscribe(UserCreated, func(e Event) {
		received = append(received, e)
	})

	bus.Publish(NewUserEvent(UserCreated, userID))

	if len(received) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(received))
	}
	for _, e := range received {
		if e.UserID != userID {
			t.Errorf("Expected user %s, got %s", userID, e.UserID)
		}
		if e.Type != UserCreated {
			t.Errorf("Expected type %s, got %s", UserCreated, e.Type)
		}
	}
}

func TestPublish_OnlyMatchingType(t *testing.T) {
	bus := NewBus()

	delivered := 0
	bus.Subscribe(UserDeleted, func(e Event) {
		delivered++
	})

	bus.Publish(NewUserEvent(UserCreated, uuid.New()))

	if delivered != 0 {
		t.Errorf("Expected no deliveries for a different type, got %d", delivered)
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic or block
	bus.Publish(NewUserEvent(UserUpdated, uuid.New()))
}

func TestPublish_PanickingSubscriberIsIsolated(t *testing.T) {
	bus := NewBus()

	delivered := 0
	bus.Subscribe(UserDeactivated, func(e Event) {
		panic("subscriber bug")
	})
	bus.Subscribe(UserDeactivated, func(e Event) {
		delivered++
	})

	bus.Publish(NewUserEvent(UserDeactivated, uuid.New()))

	if delivered != 1 {
		t.Errorf("Expected the second subscriber to run, got %d deliveries", delivered)
	}
}

func TestNewUserEvent_Fields(t *testing.T) {
	userID := uuid.New()
	event := NewUserEvent(UserCreated, userID)

	if event.ID == "" {
		t.Error("Expected a generated event ID")
	}
	if event.Type != UserCreated {
		t.Errorf("Expected type %s, got %s", UserCreated, event.Type)
	}
	if event.UserID != userID {
		t.Errorf("Expected user %s, got %s", userID, event.UserID)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
}
