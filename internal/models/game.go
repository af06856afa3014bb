package models

import (
	"time"

	"github.com/google/uuid"
)

// Game represents a card game (e.g. a TCG) that card bases belong to.
type Game struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardBase is the template a card instantiates: a named card within a game.
// Publications reference card bases (not specific cards) when describing
// what they accept in exchange.
type CardBase struct {
	ID        uuid.UUID `json:"id"`
	GameID    uuid.UUID `json:"game_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Game is populated when the card base is loaded with its game.
	Game *Game `json:"game,omitempty"`
}
