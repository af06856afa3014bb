package models

import (
	"time"

	"github.com/google/uuid"
)

// Card condition bounds. Status is a 1-10 condition grade.
const (
	CardStatusMin = 1
	CardStatusMax = 10
)

// Card represents a specific owned copy of a card base. Ownership changes
// only through an explicit trade performed by the negotiation engine.
type Card struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	CardBaseID uuid.UUID `json:"card_base_id"`
	Status     int       `json:"status"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// CardBase is populated when the card is loaded with its template.
	CardBase *CardBase `json:"card_base,omitempty"`
}

// BaseName returns the card base name when loaded, or an empty string.
func (c *Card) BaseName() string {
	if c.CardBase == nil {
		return ""
	}
	return c.CardBase.Name
}
