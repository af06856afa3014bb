package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted copy of an event delivered to a user. The
// websocket push is best-effort; the row is the source of truth.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
