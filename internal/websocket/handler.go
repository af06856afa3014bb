package websocket

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/decktrade/decktrade-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The token query parameter is the access control here.
		return true
	},
}

// Handler upgrades HTTP requests to WebSocket connections. It runs on its
// own net/http listener because the REST app is fasthttp based.
type Handler struct {
	manager    *Manager
	jwtService *utils.JWTService
}

// NewHandler creates a Handler bound to the manager.
func NewHandler(manager *Manager, jwtService *utils.JWTService) *Handler {
	return &Handler{manager: manager, jwtService: jwtService}
}

// ServeHTTP authenticates via the token query parameter and starts a client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userIDStr, err := h.jwtService.ExtractUserID(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	NewClient(userID, conn, h.manager).Start()
}
