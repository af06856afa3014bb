package models

import (
	"time"

	"github.com/google/uuid"
)

// Publication statuses. A closed publication never reopens.
const (
	PublicationOpen   = "open"
	PublicationClosed = "closed"
)

// Publication is a listing of exactly one card, optionally asking money
// and/or card base templates in exchange.
type Publication struct {
	ID              uuid.UUID   `json:"id"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	CardID          uuid.UUID   `json:"card_id"`
	ValueMoney      *float64    `json:"value_money,omitempty"`
	CardExchangeIDs []uuid.UUID `json:"card_exchange_ids,omitempty"`
	OfferIDs        []uuid.UUID `json:"offer_ids,omitempty"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Populated on detail reads.
	Card  *Card `json:"card,omitempty"`
	Owner *User `json:"owner,omitempty"`
}

// PublicationFilter narrows publication listings.
type PublicationFilter struct {
	OwnerID *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

// IsOpen reports whether the publication still accepts offers.
func (p *Publication) IsOpen() bool {
	return p.Status == PublicationOpen
}
