package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer statuses. Accepted and rejected are terminal.
const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

// Offer is a bid against a publication: money and/or specific owned cards.
type Offer struct {
	ID            uuid.UUID   `json:"id"`
	PublicationID uuid.UUID   `json:"publication_id"`
	OwnerID       uuid.UUID   `json:"owner_id"`
	MoneyOffer    *float64    `json:"money_offer,omitempty"`
	CardIDs       []uuid.UUID `json:"card_ids,omitempty"`
	Status        string      `json:"status"`
	ClosedAt      *time.Time  `json:"closed_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsPending reports whether the offer can still transition.
func (o *Offer) IsPending() bool {
	return o.Status == OfferPending
}
