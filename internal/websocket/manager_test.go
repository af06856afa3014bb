package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

func TestAddAndRemoveClient(t *testing.T) {
	m := NewManager()
	userID := uuid.New()
	client := NewClient(userID, nil, m)

	m.AddClient(client)

	m.clientsMutex.RLock()
	_, registered := m.clients[client.ID]
	m.clientsMutex.RUnlock()
	if !registered {
		t.Fatal("client not registered")
	}

	m.userMutex.RLock()
	_, linked := m.userClients[userID][client.ID]
	m.userMutex.RUnlock()
	if !linked {
		t.Fatal("client not linked to user")
	}

	m.RemoveClient(client.ID)

	m.clientsMutex.RLock()
	_, registered = m.clients[client.ID]
	m.clientsMutex.RUnlock()
	if registered {
		t.Error("client still registered after removal")
	}

	m.userMutex.RLock()
	_, userKnown := m.userClients[userID]
	m.userMutex.RUnlock()
	if userKnown {
		t.Error("user entry should be dropped with its last client")
	}
}

func TestSendToUserQueuesEvent(t *testing.T) {
	m := NewManager()
	userID := uuid.New()
	client := NewClient(userID, nil, m)
	m.AddClient(client)

	m.SendToUser(userID, Event{Type: "offer_created", Timestamp: time.Now()})

	select {
	case raw := <-client.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("unmarshaling event: %v", err)
		}
		if event.Type != "offer_created" {
			t.Errorf("event type = %q, want %q", event.Type, "offer_created")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to client")
	}
}

func TestSendToUserOffline(t *testing.T) {
	m := NewManager()

	// No panic and no effect for a user with no connections.
	m.SendToUser(uuid.New(), Event{Type: "offer_created"})
}

func TestPushCarriesNotification(t *testing.T) {
	m := NewManager()
	userID := uuid.New()
	client := NewClient(userID, nil, m)
	m.AddClient(client)

	n := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      "offer_accepted",
		Subject:   "Your offer was accepted!",
		CreatedAt: time.Now(),
	}
	m.Push(userID, n)

	select {
	case raw := <-client.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("unmarshaling event: %v", err)
		}
		if event.Type != n.Type {
			t.Errorf("event type = %q, want %q", event.Type, n.Type)
		}
		var payload models.Notification
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			t.Fatalf("unmarshaling payload: %v", err)
		}
		if payload.ID != n.ID {
			t.Errorf("payload id = %s, want %s", payload.ID, n.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to client")
	}
}
