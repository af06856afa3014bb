package trading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Errors returned by negotiation operations. Validation runs before any
// mutation, so a returned error means no state changed.
var (
	ErrPublicationNotFound = errors.New("publication not found")
	ErrOfferNotFound       = errors.New("offer not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotOwner            = errors.New("only the publication owner may do this")
	ErrCardNotOwned        = errors.New("offered card is not owned by the bidder")
	ErrPublicationClosed   = errors.New("publication is closed")
	ErrOfferClosed         = errors.New("offer is already closed")
	ErrInvalidStatus       = errors.New("invalid offer status")
	ErrEmptyOffer          = errors.New("offer must include money or cards")
)

// MissingCardsError reports exactly which requested card IDs did not resolve.
type MissingCardsError struct {
	IDs []uuid.UUID
}

func (e *MissingCardsError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("cards not found: %s", strings.Join(ids, ", "))
}
