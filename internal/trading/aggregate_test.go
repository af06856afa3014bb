package trading

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

func TestCloseOffer(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	o := models.Offer{ID: uuid.New(), Status: models.OfferPending}

	closeOffer(&o, models.OfferAccepted, now)

	if o.Status != models.OfferAccepted {
		t.Errorf("status = %q, want accepted", o.Status)
	}
	if o.ClosedAt == nil || !o.ClosedAt.Equal(now) {
		t.Errorf("closedAt = %v, want %v", o.ClosedAt, now)
	}
	if !o.UpdatedAt.Equal(now) {
		t.Errorf("updatedAt = %v, want %v", o.UpdatedAt, now)
	}
}

func TestAggregateOfferByID(t *testing.T) {
	id := uuid.New()
	agg := &Aggregate{
		Offers: []OfferEntry{
			{Offer: models.Offer{ID: uuid.New()}},
			{Offer: models.Offer{ID: id}},
		},
	}

	if entry := agg.offerByID(id); entry == nil || entry.Offer.ID != id {
		t.Errorf("offerByID(%s) = %v", id, entry)
	}
	if entry := agg.offerByID(uuid.New()); entry != nil {
		t.Errorf("offerByID(unknown) = %v, want nil", entry)
	}
}

func TestPublicationName(t *testing.T) {
	agg := &Aggregate{}
	if name := agg.publicationName(); name != "" {
		t.Errorf("publicationName() without card base = %q, want empty", name)
	}

	agg.Card.CardBase = &models.CardBase{Name: "Dark Magician"}
	if name := agg.publicationName(); name != "Dark Magician" {
		t.Errorf("publicationName() = %q, want Dark Magician", name)
	}
}
