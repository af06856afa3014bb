package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// Manager tracks every open WebSocket connection, grouped by user, and
// fans notification events out to all of a user's connections.
type Manager struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	userClients  map[uuid.UUID]map[uuid.UUID]bool // userID -> set of clientIDs
	userMutex    sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
}

// Event is the wire format pushed to clients.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewManager creates an empty connection manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// AddClient registers a new connection.
func (m *Manager) AddClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client.ID] = client
	m.clientsMutex.Unlock()

	m.userMutex.Lock()
	if _, exists := m.userClients[client.UserID]; !exists {
		m.userClients[client.UserID] = make(map[uuid.UUID]bool)
	}
	m.userClients[client.UserID][client.ID] = true
	m.userMutex.Unlock()

	slog.Info("websocket client connected", "client_id", client.ID, "user_id", client.UserID)
}

// RemoveClient drops a connection and unlinks it from its user.
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.clientsMutex.RLock()
	client, exists := m.clients[clientID]
	m.clientsMutex.RUnlock()

	if !exists {
		return
	}

	userID := client.UserID

	m.userMutex.Lock()
	if clients, ok := m.userClients[userID]; ok {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(m.userClients, userID)
		}
	}
	m.userMutex.Unlock()

	m.clientsMutex.Lock()
	delete(m.clients, clientID)
	m.clientsMutex.Unlock()

	slog.Info("websocket client disconnected", "client_id", clientID, "user_id", userID)
}

// Push implements notifier.Pusher. Offline users are skipped, the stored
// notification is their copy of record.
func (m *Manager) Push(userID uuid.UUID, n models.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		slog.Error("marshaling notification", "error", err)
		return
	}
	m.SendToUser(userID, Event{
		Type:      n.Type,
		Timestamp: n.CreatedAt,
		Payload:   payload,
	})
}

// SendToUser delivers an event to every connection the user has open.
func (m *Manager) SendToUser(userID uuid.UUID, event Event) {
	m.userMutex.RLock()
	clientIDs, exists := m.userClients[userID]
	m.userMutex.RUnlock()

	if !exists || len(clientIDs) == 0 {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshaling websocket event", "error", err)
		return
	}

	for clientID := range clientIDs {
		m.clientsMutex.RLock()
		client, exists := m.clients[clientID]
		m.clientsMutex.RUnlock()

		if !exists {
			continue
		}

		go func(c *Client) {
			select {
			case c.send <- eventJSON:
			default:
				// Send buffer full, the client is too slow to keep.
				slog.Warn("send channel full, closing connection", "client_id", c.ID)
				c.conn.Close()
				m.RemoveClient(c.ID)
			}
		}(client)
	}
}

// Shutdown closes every connection and resets the manager.
func (m *Manager) Shutdown() {
	m.cancel()

	m.clientsMutex.Lock()
	for _, client := range m.clients {
		client.conn.Close()
	}
	m.clients = make(map[uuid.UUID]*Client)
	m.clientsMutex.Unlock()

	m.userMutex.Lock()
	m.userClients = make(map[uuid.UUID]map[uuid.UUID]bool)
	m.userMutex.Unlock()
}
