package trading

import (
	"context"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// UserLookup resolves users for identity checks. Implementations return
// ErrUserNotFound for an id that does not resolve.
type UserLookup interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CardStore resolves the specific cards staked in an offer. CardsByIDs
// returns only the cards that exist; the engine diffs the result against the
// request to report missing IDs.
type CardStore interface {
	CardsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Card, error)
}

// PublicationStore loads the full aggregate snapshot for a publication. The
// engine never re-fetches mid-operation: the snapshot is the whole read.
// Implementations return ErrPublicationNotFound for an id that does not
// resolve.
type PublicationStore interface {
	Aggregate(ctx context.Context, publicationID uuid.UUID) (*Aggregate, error)
}

// TradeWrites is the unit of work produced by one negotiation operation. The
// store commits all of it atomically or none of it.
type TradeWrites struct {
	Cards       []models.Card
	Publication *models.Publication
	NewOffers   []models.Offer
	Offers      []models.Offer
}

// TradeLog commits a unit of work in a single transaction.
type TradeLog interface {
	CommitTrade(ctx context.Context, w TradeWrites) error
}

// Event identifies a notification fired by the engine.
type Event string

const (
	EventOfferCreated        Event = "offer_created"
	EventOfferAccepted       Event = "offer_accepted"
	EventOfferRejected       Event = "offer_rejected"
	EventPublicationAccepted Event = "publication_accepted"
)

// Notifier delivers negotiation events. Delivery is best-effort: the engine
// logs failures and never rolls back a committed trade because of one.
type Notifier interface {
	Notify(ctx context.Context, event Event, recipient models.User, publicationName string) error
}
