package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// Engine runs the offer/publication negotiation: creating offers, and the
// accept/reject state machine that closes a trade. All operations serialize
// per publication and persist through a single atomic unit of work.
type Engine struct {
	users    UserLookup
	cards    CardStore
	pubs     PublicationStore
	trades   TradeLog
	notifier Notifier

	locks *publicationLocks
	now   func() time.Time
}

// New creates a negotiation engine wired to its collaborators.
func New(users UserLookup, cards CardStore, pubs PublicationStore, trades TradeLog, notifier Notifier) *Engine {
	return &Engine{
		users:    users,
		cards:    cards,
		pubs:     pubs,
		trades:   trades,
		notifier: notifier,
		locks:    newPublicationLocks(),
		now:      time.Now,
	}
}

// CreateOfferRequest is the payload for a new offer. Money and cards are each
// optional but at least one must be present.
type CreateOfferRequest struct {
	MoneyOffer *float64    `json:"money_offer,omitempty"`
	CardIDs    []uuid.UUID `json:"card_ids,omitempty"`
}

// UpdateOfferRequest carries the desired status transition. An empty status
// is a no-op update that re-persists the offer unchanged.
type UpdateOfferRequest struct {
	Status string `json:"status"`
}

// OfferView is the flat public representation of an offer, with display
// fields denormalized from the aggregate.
type OfferView struct {
	ID              uuid.UUID   `json:"id"`
	PublicationID   uuid.UUID   `json:"publication_id"`
	PublicationName string      `json:"publication_name"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	OwnerName       string      `json:"owner_name"`
	MoneyOffer      *float64    `json:"money_offer,omitempty"`
	CardIDs         []uuid.UUID `json:"card_ids,omitempty"`
	Status          string      `json:"status"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreateOffer validates and registers a new pending offer against an open
// publication. The publication keeps accepting further offers until one is
// accepted.
func (e *Engine) CreateOffer(ctx context.Context, publicationID, actorID uuid.UUID, req CreateOfferRequest) (*OfferView, error) {
	mu := e.locks.lock(publicationID)
	defer mu.Unlock()

	agg, err := e.pubs.Aggregate(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if !agg.Publication.IsOpen() {
		return nil, ErrPublicationClosed
	}

	actor, err := e.users.UserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if req.MoneyOffer == nil && len(req.CardIDs) == 0 {
		return nil, ErrEmptyOffer
	}

	staked, err := e.resolveStakedCards(ctx, actor.ID, req.CardIDs)
	if err != nil {
		return nil, err
	}

	now := e.now()
	offer := models.Offer{
		ID:            uuid.New(),
		PublicationID: agg.Publication.ID,
		OwnerID:       actor.ID,
		MoneyOffer:    req.MoneyOffer,
		CardIDs:       req.CardIDs,
		Status:        models.OfferPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	pub := agg.Publication
	pub.OfferIDs = append(pub.OfferIDs, offer.ID)
	pub.UpdatedAt = now

	writes := TradeWrites{
		Publication: &pub,
		NewOffers:   []models.Offer{offer},
	}
	if err := e.trades.CommitTrade(ctx, writes); err != nil {
		return nil, err
	}

	slog.Info("offer created",
		slog.String("offer_id", offer.ID.String()),
		slog.String("publication_id", pub.ID.String()),
		slog.String("owner_id", actor.ID.String()))

	e.notify(ctx, EventOfferCreated, agg.Owner, agg.publicationName())

	entry := OfferEntry{Offer: offer, Owner: *actor, Cards: staked}
	return e.view(agg, &entry), nil
}

// UpdateOffer dispatches a status transition on a pending offer. Only the
// publication owner may accept or reject. Terminal offers admit no further
// transition.
func (e *Engine) UpdateOffer(ctx context.Context, publicationID, offerID, actorID uuid.UUID, req UpdateOfferRequest) (*OfferView, error) {
	mu := e.locks.lock(publicationID)
	defer mu.Unlock()

	agg, err := e.pubs.Aggregate(ctx, publicationID)
	if err != nil {
		return nil, err
	}

	entry := agg.offerByID(offerID)
	if entry == nil {
		return nil, ErrOfferNotFound
	}

	actor, err := e.users.UserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if agg.Publication.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}

	if !entry.Offer.IsPending() {
		return nil, ErrOfferClosed
	}

	switch req.Status {
	case models.OfferAccepted:
		if !agg.Publication.IsOpen() {
			return nil, ErrPublicationClosed
		}
		return e.accept(ctx, agg, entry)
	case models.OfferRejected:
		return e.reject(ctx, agg, entry)
	case "":
		// No status change: re-persist the offer unchanged.
		writes := TradeWrites{Offers: []models.Offer{entry.Offer}}
		if err := e.trades.CommitTrade(ctx, writes); err != nil {
			return nil, err
		}
		return e.view(agg, entry), nil
	default:
		return nil, ErrInvalidStatus
	}
}

// ClosePublication withdraws an open publication without accepting any offer.
// Every pending offer is rejected in the same unit of work, so no offer is
// left dangling on a closed publication. Runs under the publication lock like
// every other mutation of the aggregate.
func (e *Engine) ClosePublication(ctx context.Context, publicationID, actorID uuid.UUID) (*models.Publication, error) {
	mu := e.locks.lock(publicationID)
	defer mu.Unlock()

	agg, err := e.pubs.Aggregate(ctx, publicationID)
	if err != nil {
		return nil, err
	}

	actor, err := e.users.UserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if agg.Publication.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}
	if !agg.Publication.IsOpen() {
		return nil, ErrPublicationClosed
	}

	now := e.now()

	var losers []*OfferEntry
	for i := range agg.Offers {
		entry := &agg.Offers[i]
		if !entry.Offer.IsPending() {
			continue
		}
		closeOffer(&entry.Offer, models.OfferRejected, now)
		losers = append(losers, entry)
	}

	pub := agg.Publication
	pub.Status = models.PublicationClosed
	pub.UpdatedAt = now

	offers := make([]models.Offer, 0, len(losers))
	for _, loser := range losers {
		offers = append(offers, loser.Offer)
	}

	writes := TradeWrites{
		Publication: &pub,
		Offers:      offers,
	}
	if err := e.trades.CommitTrade(ctx, writes); err != nil {
		return nil, err
	}

	slog.Info("publication withdrawn",
		slog.String("publication_id", pub.ID.String()),
		slog.Int("rejected_offers", len(losers)))

	name := agg.publicationName()
	for _, loser := range losers {
		e.notify(ctx, EventOfferRejected, loser.Owner, name)
	}

	return &pub, nil
}

// accept runs the cascading acceptance: the target offer wins, every other
// pending offer loses, card ownership swaps, and the publication closes. All
// writes land in one unit of work; notifications follow the commit in a fixed
// order (winner, publication owner, losers).
func (e *Engine) accept(ctx context.Context, agg *Aggregate, winner *OfferEntry) (*OfferView, error) {
	now := e.now()

	closeOffer(&winner.Offer, models.OfferAccepted, now)

	var losers []*OfferEntry
	for i := range agg.Offers {
		entry := &agg.Offers[i]
		if entry.Offer.ID == winner.Offer.ID || !entry.Offer.IsPending() {
			continue
		}
		closeOffer(&entry.Offer, models.OfferRejected, now)
		losers = append(losers, entry)
	}

	// Two-way swap: the listed card goes to the winner, every staked card
	// goes to the publication's original owner. Money-only offers move no
	// cards beyond the listed one.
	cards := make([]models.Card, 0, 1+len(winner.Cards))
	listed := agg.Card
	listed.OwnerID = winner.Owner.ID
	listed.UpdatedAt = now
	cards = append(cards, listed)
	for _, staked := range winner.Cards {
		staked.OwnerID = agg.Publication.OwnerID
		staked.UpdatedAt = now
		cards = append(cards, staked)
	}

	pub := agg.Publication
	pub.Status = models.PublicationClosed
	pub.UpdatedAt = now

	offers := make([]models.Offer, 0, 1+len(losers))
	offers = append(offers, winner.Offer)
	for _, loser := range losers {
		offers = append(offers, loser.Offer)
	}

	writes := TradeWrites{
		Cards:       cards,
		Publication: &pub,
		Offers:      offers,
	}
	if err := e.trades.CommitTrade(ctx, writes); err != nil {
		return nil, err
	}

	slog.Info("offer accepted",
		slog.String("offer_id", winner.Offer.ID.String()),
		slog.String("publication_id", pub.ID.String()),
		slog.Int("rejected_offers", len(losers)))

	name := agg.publicationName()
	e.notify(ctx, EventOfferAccepted, winner.Owner, name)
	e.notify(ctx, EventPublicationAccepted, agg.Owner, name)
	for _, loser := range losers {
		e.notify(ctx, EventOfferRejected, loser.Owner, name)
	}

	return e.view(agg, winner), nil
}

// reject closes only the target offer. Sibling offers and the publication's
// open status are untouched; the publication is re-saved with the aggregate
// as usual.
func (e *Engine) reject(ctx context.Context, agg *Aggregate, entry *OfferEntry) (*OfferView, error) {
	now := e.now()
	closeOffer(&entry.Offer, models.OfferRejected, now)

	pub := agg.Publication
	writes := TradeWrites{
		Publication: &pub,
		Offers:      []models.Offer{entry.Offer},
	}
	if err := e.trades.CommitTrade(ctx, writes); err != nil {
		return nil, err
	}

	slog.Info("offer rejected",
		slog.String("offer_id", entry.Offer.ID.String()),
		slog.String("publication_id", pub.ID.String()))

	e.notify(ctx, EventOfferRejected, entry.Owner, agg.publicationName())

	return e.view(agg, entry), nil
}

// resolveStakedCards loads the staked cards and checks every one exists and
// belongs to the bidder.
func (e *Engine) resolveStakedCards(ctx context.Context, bidderID uuid.UUID, ids []uuid.UUID) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cards, err := e.cards.CardsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if len(cards) != len(ids) {
		found := make(map[uuid.UUID]bool, len(cards))
		for _, c := range cards {
			found[c.ID] = true
		}
		var missing []uuid.UUID
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, &MissingCardsError{IDs: missing}
	}

	for _, c := range cards {
		if c.OwnerID != bidderID {
			return nil, ErrCardNotOwned
		}
	}
	return cards, nil
}

// notify dispatches one event, logging instead of failing: delivery is not
// transactional with the trade.
func (e *Engine) notify(ctx context.Context, event Event, recipient models.User, publicationName string) {
	if err := e.notifier.Notify(ctx, event, recipient, publicationName); err != nil {
		slog.Warn("notification dispatch failed",
			slog.String("event", string(event)),
			slog.String("recipient_id", recipient.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (e *Engine) view(agg *Aggregate, entry *OfferEntry) *OfferView {
	return &OfferView{
		ID:              entry.Offer.ID,
		PublicationID:   entry.Offer.PublicationID,
		PublicationName: agg.publicationName(),
		OwnerID:         entry.Owner.ID,
		OwnerName:       entry.Owner.Name,
		MoneyOffer:      entry.Offer.MoneyOffer,
		CardIDs:         entry.Offer.CardIDs,
		Status:          entry.Offer.Status,
		ClosedAt:        entry.Offer.ClosedAt,
		CreatedAt:       entry.Offer.CreatedAt,
		UpdatedAt:       entry.Offer.UpdatedAt,
	}
}
