package trading

import (
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// Aggregate is a read-only snapshot of a publication with its full offer and
// card graph, assembled by the store in one load and passed to the engine by
// value. The engine mutates copies and hands the result back as TradeWrites.
type Aggregate struct {
	Publication models.Publication
	Owner       models.User
	Card        models.Card
	Offers      []OfferEntry
}

// OfferEntry is one offer within the aggregate, with its owner and the
// specific cards it stakes.
type OfferEntry struct {
	Offer models.Offer
	Owner models.User
	Cards []models.Card
}

// offerByID finds an offer entry within the snapshot.
func (a *Aggregate) offerByID(id uuid.UUID) *OfferEntry {
	for i := range a.Offers {
		if a.Offers[i].Offer.ID == id {
			return &a.Offers[i]
		}
	}
	return nil
}

// publicationName is the display name denormalized into offer views and
// notifications: the listed card's base name.
func (a *Aggregate) publicationName() string {
	return a.Card.BaseName()
}

// closeOffer transitions an offer into a terminal status and stamps closedAt
// exactly once.
func closeOffer(o *models.Offer, status string, now time.Time) {
	o.Status = status
	o.ClosedAt = &now
	o.UpdatedAt = now
}
