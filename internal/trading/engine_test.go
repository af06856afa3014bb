package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// fixture is an in-memory implementation of every engine collaborator.
type fixture struct {
	users map[uuid.UUID]models.User
	cards map[uuid.UUID]models.Card
	aggs  map[uuid.UUID]*Aggregate

	commits   []TradeWrites
	commitErr error

	notified []notifiedEvent
}

type notifiedEvent struct {
	event     Event
	recipient uuid.UUID
	name      string
}

func (f *fixture) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (f *fixture) CardsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Card, error) {
	var out []models.Card
	for _, id := range ids {
		if c, ok := f.cards[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fixture) Aggregate(_ context.Context, id uuid.UUID) (*Aggregate, error) {
	agg, ok := f.aggs[id]
	if !ok {
		return nil, ErrPublicationNotFound
	}
	cp := *agg
	cp.Offers = append([]OfferEntry(nil), agg.Offers...)
	return &cp, nil
}

func (f *fixture) CommitTrade(_ context.Context, w TradeWrites) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, w)
	return nil
}

func (f *fixture) Notify(_ context.Context, event Event, recipient models.User, name string) error {
	f.notified = append(f.notified, notifiedEvent{event, recipient.ID, name})
	return nil
}

var (
	u1 = uuid.MustParse("00000000-0000-0000-0000-000000000001") // publication owner
	u2 = uuid.MustParse("00000000-0000-0000-0000-000000000002") // money bidder
	u3 = uuid.MustParse("00000000-0000-0000-0000-000000000003") // card bidder
	c1 = uuid.MustParse("00000000-0000-0000-0000-0000000000c1") // listed card, owned by u1
	c2 = uuid.MustParse("00000000-0000-0000-0000-0000000000c2") // staked card, owned by u3
	p1 = uuid.MustParse("00000000-0000-0000-0000-0000000000f1")
	o1 = uuid.MustParse("00000000-0000-0000-0000-0000000000a1") // money offer by u2
	o2 = uuid.MustParse("00000000-0000-0000-0000-0000000000a2") // card offer by u3
)

func money(v float64) *float64 { return &v }

// newFixture builds publication p1 (owner u1, card c1, open) with a pending
// money offer o1 from u2 and a pending card offer o2 from u3 staking c2.
func newFixture() *fixture {
	users := map[uuid.UUID]models.User{
		u1: {ID: u1, Name: "Ana"},
		u2: {ID: u2, Name: "Ben"},
		u3: {ID: u3, Name: "Cleo"},
	}
	base := models.CardBase{ID: uuid.New(), Name: "Black Lotus"}
	listed := models.Card{ID: c1, OwnerID: u1, CardBaseID: base.ID, Status: 8, CardBase: &base}
	staked := models.Card{ID: c2, OwnerID: u3, CardBaseID: base.ID, Status: 6}

	offerMoney := models.Offer{
		ID: o1, PublicationID: p1, OwnerID: u2,
		MoneyOffer: money(50), Status: models.OfferPending,
	}
	offerCards := models.Offer{
		ID: o2, PublicationID: p1, OwnerID: u3,
		CardIDs: []uuid.UUID{c2}, Status: models.OfferPending,
	}

	pub := models.Publication{
		ID: p1, OwnerID: u1, CardID: c1,
		OfferIDs: []uuid.UUID{o1, o2},
		Status:   models.PublicationOpen,
	}

	return &fixture{
		users: users,
		cards: map[uuid.UUID]models.Card{c1: listed, c2: staked},
		aggs: map[uuid.UUID]*Aggregate{
			p1: {
				Publication: pub,
				Owner:       users[u1],
				Card:        listed,
				Offers: []OfferEntry{
					{Offer: offerMoney, Owner: users[u2]},
					{Offer: offerCards, Owner: users[u3], Cards: []models.Card{staked}},
				},
			},
		},
	}
}

func newTestEngine(f *fixture) *Engine {
	e := New(f, f, f, f, f)
	e.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestCreateOffer(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fixture)
		pubID   uuid.UUID
		actorID uuid.UUID
		req     CreateOfferRequest
		wantErr error
	}{
		{
			name:    "money offer",
			pubID:   p1,
			actorID: u2,
			req:     CreateOfferRequest{MoneyOffer: money(25)},
		},
		{
			name:    "card offer",
			pubID:   p1,
			actorID: u3,
			req:     CreateOfferRequest{CardIDs: []uuid.UUID{c2}},
		},
		{
			name:    "publication not found",
			pubID:   uuid.New(),
			actorID: u2,
			req:     CreateOfferRequest{MoneyOffer: money(25)},
			wantErr: ErrPublicationNotFound,
		},
		{
			name:    "user not found",
			pubID:   p1,
			actorID: uuid.New(),
			req:     CreateOfferRequest{MoneyOffer: money(25)},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "empty offer",
			pubID:   p1,
			actorID: u2,
			req:     CreateOfferRequest{},
			wantErr: ErrEmptyOffer,
		},
		{
			name:    "staked card not owned by bidder",
			pubID:   p1,
			actorID: u2,
			req:     CreateOfferRequest{CardIDs: []uuid.UUID{c2}},
			wantErr: ErrCardNotOwned,
		},
		{
			name: "closed publication",
			setup: func(f *fixture) {
				f.aggs[p1].Publication.Status = models.PublicationClosed
			},
			pubID:   p1,
			actorID: u2,
			req:     CreateOfferRequest{MoneyOffer: money(25)},
			wantErr: ErrPublicationClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			e := newTestEngine(f)

			view, err := e.CreateOffer(context.Background(), tt.pubID, tt.actorID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateOffer() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(f.commits) != 0 {
					t.Errorf("CreateOffer() committed %d writes on failure", len(f.commits))
				}
				if len(f.notified) != 0 {
					t.Errorf("CreateOffer() sent %d notifications on failure", len(f.notified))
				}
				return
			}

			if view.Status != models.OfferPending {
				t.Errorf("new offer status = %q, want %q", view.Status, models.OfferPending)
			}
			if view.PublicationName != "Black Lotus" {
				t.Errorf("publication name = %q, want Black Lotus", view.PublicationName)
			}
			if len(f.commits) != 1 {
				t.Fatalf("commits = %d, want 1", len(f.commits))
			}
			w := f.commits[0]
			if len(w.NewOffers) != 1 || w.Publication == nil {
				t.Fatalf("commit must carry the new offer and the publication, got %+v", w)
			}
			if got := len(w.Publication.OfferIDs); got != 3 {
				t.Errorf("publication offer ids = %d, want 3", got)
			}
			if w.Publication.Status != models.PublicationOpen {
				t.Errorf("publication status = %q, want open", w.Publication.Status)
			}
			want := []notifiedEvent{{EventOfferCreated, u1, "Black Lotus"}}
			assertNotifications(t, f.notified, want)
		})
	}
}

func TestCreateOffer_MissingCards(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)
	ghost := uuid.MustParse("00000000-0000-0000-0000-00000000dead")

	_, err := e.CreateOffer(context.Background(), p1, u3, CreateOfferRequest{
		CardIDs: []uuid.UUID{c2, ghost},
	})

	var missing *MissingCardsError
	if !errors.As(err, &missing) {
		t.Fatalf("CreateOffer() error = %v, want MissingCardsError", err)
	}
	if len(missing.IDs) != 1 || missing.IDs[0] != ghost {
		t.Errorf("missing ids = %v, want [%s]", missing.IDs, ghost)
	}
	if len(f.commits) != 0 {
		t.Errorf("no writes expected, got %d", len(f.commits))
	}
}

func TestAcceptOffer_MoneyWinner(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	view, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferAccepted})
	if err != nil {
		t.Fatalf("UpdateOffer() error = %v", err)
	}
	if view.Status != models.OfferAccepted {
		t.Errorf("winner status = %q, want accepted", view.Status)
	}
	if view.ClosedAt == nil {
		t.Error("winner closedAt not set")
	}

	if len(f.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(f.commits))
	}
	w := f.commits[0]

	if w.Publication.Status != models.PublicationClosed {
		t.Errorf("publication status = %q, want closed", w.Publication.Status)
	}

	// Money-only winner: only the listed card moves, to the winner.
	if len(w.Cards) != 1 {
		t.Fatalf("card writes = %d, want 1", len(w.Cards))
	}
	if w.Cards[0].ID != c1 || w.Cards[0].OwnerID != u2 {
		t.Errorf("listed card owner = %s, want %s", w.Cards[0].OwnerID, u2)
	}

	statuses := offerStatuses(w.Offers)
	if statuses[o1] != models.OfferAccepted {
		t.Errorf("o1 status = %q, want accepted", statuses[o1])
	}
	if statuses[o2] != models.OfferRejected {
		t.Errorf("o2 status = %q, want rejected", statuses[o2])
	}
	for _, o := range w.Offers {
		if o.ClosedAt == nil {
			t.Errorf("offer %s closedAt not set", o.ID)
		}
	}

	want := []notifiedEvent{
		{EventOfferAccepted, u2, "Black Lotus"},
		{EventPublicationAccepted, u1, "Black Lotus"},
		{EventOfferRejected, u3, "Black Lotus"},
	}
	assertNotifications(t, f.notified, want)
}

func TestAcceptOffer_CardWinner(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	_, err := e.UpdateOffer(context.Background(), p1, o2, u1, UpdateOfferRequest{Status: models.OfferAccepted})
	if err != nil {
		t.Fatalf("UpdateOffer() error = %v", err)
	}

	w := f.commits[0]
	owners := map[uuid.UUID]uuid.UUID{}
	for _, c := range w.Cards {
		owners[c.ID] = c.OwnerID
	}
	if owners[c1] != u3 {
		t.Errorf("listed card owner = %s, want %s", owners[c1], u3)
	}
	if owners[c2] != u1 {
		t.Errorf("staked card owner = %s, want %s", owners[c2], u1)
	}

	statuses := offerStatuses(w.Offers)
	if statuses[o2] != models.OfferAccepted || statuses[o1] != models.OfferRejected {
		t.Errorf("offer statuses = %v", statuses)
	}

	want := []notifiedEvent{
		{EventOfferAccepted, u3, "Black Lotus"},
		{EventPublicationAccepted, u1, "Black Lotus"},
		{EventOfferRejected, u2, "Black Lotus"},
	}
	assertNotifications(t, f.notified, want)
}

func TestUpdateOffer_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fixture)
		pubID   uuid.UUID
		offerID uuid.UUID
		actorID uuid.UUID
		status  string
		wantErr error
	}{
		{
			name:    "bidder cannot accept their own offer",
			pubID:   p1,
			offerID: o1,
			actorID: u3,
			status:  models.OfferAccepted,
			wantErr: ErrNotOwner,
		},
		{
			name:    "bidder cannot reject a sibling offer",
			pubID:   p1,
			offerID: o1,
			actorID: u2,
			status:  models.OfferRejected,
			wantErr: ErrNotOwner,
		},
		{
			name:    "publication not found",
			pubID:   uuid.New(),
			offerID: o1,
			actorID: u1,
			status:  models.OfferAccepted,
			wantErr: ErrPublicationNotFound,
		},
		{
			name:    "offer not found",
			pubID:   p1,
			offerID: uuid.New(),
			actorID: u1,
			status:  models.OfferAccepted,
			wantErr: ErrOfferNotFound,
		},
		{
			name:    "actor not found",
			pubID:   p1,
			offerID: o1,
			actorID: uuid.New(),
			status:  models.OfferAccepted,
			wantErr: ErrUserNotFound,
		},
		{
			name: "accept on terminal offer",
			setup: func(f *fixture) {
				f.aggs[p1].Offers[0].Offer.Status = models.OfferRejected
			},
			pubID:   p1,
			offerID: o1,
			actorID: u1,
			status:  models.OfferAccepted,
			wantErr: ErrOfferClosed,
		},
		{
			name: "reject on terminal offer",
			setup: func(f *fixture) {
				f.aggs[p1].Offers[0].Offer.Status = models.OfferAccepted
			},
			pubID:   p1,
			offerID: o1,
			actorID: u1,
			status:  models.OfferRejected,
			wantErr: ErrOfferClosed,
		},
		{
			name: "accept on closed publication",
			setup: func(f *fixture) {
				f.aggs[p1].Publication.Status = models.PublicationClosed
			},
			pubID:   p1,
			offerID: o1,
			actorID: u1,
			status:  models.OfferAccepted,
			wantErr: ErrPublicationClosed,
		},
		{
			name:    "unknown status",
			pubID:   p1,
			offerID: o1,
			actorID: u1,
			status:  "draft",
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			e := newTestEngine(f)

			_, err := e.UpdateOffer(context.Background(), tt.pubID, tt.offerID, tt.actorID, UpdateOfferRequest{Status: tt.status})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateOffer() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.commits) != 0 {
				t.Errorf("precondition failure must not write, got %d commits", len(f.commits))
			}
			if len(f.notified) != 0 {
				t.Errorf("precondition failure must not notify, got %d events", len(f.notified))
			}
		})
	}
}

func TestAcceptOffer_ReacceptFails(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	if _, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferAccepted}); err != nil {
		t.Fatalf("first accept error = %v", err)
	}

	// Reflect the committed state back into the snapshot, as the store would.
	w := f.commits[0]
	agg := f.aggs[p1]
	agg.Publication = *w.Publication
	for i := range agg.Offers {
		for _, o := range w.Offers {
			if agg.Offers[i].Offer.ID == o.ID {
				agg.Offers[i].Offer = o
			}
		}
	}

	_, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferAccepted})
	if !errors.Is(err, ErrOfferClosed) {
		t.Fatalf("second accept error = %v, want %v", err, ErrOfferClosed)
	}
	if len(f.commits) != 1 {
		t.Errorf("second accept must not re-run side effects, commits = %d", len(f.commits))
	}
}

func TestRejectOffer_LeavesSiblingsUntouched(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	view, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferRejected})
	if err != nil {
		t.Fatalf("UpdateOffer() error = %v", err)
	}
	if view.Status != models.OfferRejected || view.ClosedAt == nil {
		t.Errorf("rejected view = %+v", view)
	}

	w := f.commits[0]
	if w.Publication.Status != models.PublicationOpen {
		t.Errorf("publication status = %q, want open", w.Publication.Status)
	}
	if len(w.Cards) != 0 {
		t.Errorf("reject must not move cards, got %d", len(w.Cards))
	}
	if len(w.Offers) != 1 || w.Offers[0].ID != o1 {
		t.Errorf("reject must write only the target offer, got %+v", w.Offers)
	}

	want := []notifiedEvent{{EventOfferRejected, u2, "Black Lotus"}}
	assertNotifications(t, f.notified, want)
}

func TestUpdateOffer_NoStatusChange(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	view, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{})
	if err != nil {
		t.Fatalf("UpdateOffer() error = %v", err)
	}
	if view.Status != models.OfferPending {
		t.Errorf("status = %q, want pending", view.Status)
	}
	if len(f.commits) != 1 || len(f.commits[0].Offers) != 1 {
		t.Fatalf("no-op update must re-persist the offer, commits = %+v", f.commits)
	}
	if f.commits[0].Offers[0].Status != models.OfferPending {
		t.Errorf("re-persisted status = %q, want pending", f.commits[0].Offers[0].Status)
	}
	if len(f.notified) != 0 {
		t.Errorf("no-op update must not notify, got %d events", len(f.notified))
	}
}

func TestAcceptOffer_CommitFailure(t *testing.T) {
	f := newFixture()
	f.commitErr = errors.New("storage down")
	e := newTestEngine(f)

	_, err := e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferAccepted})
	if err == nil || !errors.Is(err, f.commitErr) {
		t.Fatalf("UpdateOffer() error = %v, want commit error", err)
	}
	if len(f.notified) != 0 {
		t.Errorf("failed commit must not notify, got %d events", len(f.notified))
	}
}

func TestClosePublication(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	pub, err := e.ClosePublication(context.Background(), p1, u1)
	if err != nil {
		t.Fatalf("ClosePublication() error = %v", err)
	}
	if pub.Status != models.PublicationClosed {
		t.Errorf("publication status = %q, want closed", pub.Status)
	}

	if len(f.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(f.commits))
	}
	w := f.commits[0]
	if w.Publication.Status != models.PublicationClosed {
		t.Errorf("committed status = %q, want closed", w.Publication.Status)
	}
	if len(w.Cards) != 0 {
		t.Errorf("withdrawal must not move cards, got %d", len(w.Cards))
	}

	// Both pending offers are rejected in the same commit.
	statuses := offerStatuses(w.Offers)
	if statuses[o1] != models.OfferRejected || statuses[o2] != models.OfferRejected {
		t.Errorf("offer statuses = %v, want both rejected", statuses)
	}
	for _, o := range w.Offers {
		if o.ClosedAt == nil {
			t.Errorf("offer %s closedAt not set", o.ID)
		}
	}

	want := []notifiedEvent{
		{EventOfferRejected, u2, "Black Lotus"},
		{EventOfferRejected, u3, "Black Lotus"},
	}
	assertNotifications(t, f.notified, want)
}

func TestClosePublication_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fixture)
		pubID   uuid.UUID
		actorID uuid.UUID
		wantErr error
	}{
		{
			name:    "bidder cannot withdraw",
			pubID:   p1,
			actorID: u2,
			wantErr: ErrNotOwner,
		},
		{
			name:    "publication not found",
			pubID:   uuid.New(),
			actorID: u1,
			wantErr: ErrPublicationNotFound,
		},
		{
			name:    "actor not found",
			pubID:   p1,
			actorID: uuid.New(),
			wantErr: ErrUserNotFound,
		},
		{
			name: "already closed",
			setup: func(f *fixture) {
				f.aggs[p1].Publication.Status = models.PublicationClosed
			},
			pubID:   p1,
			actorID: u1,
			wantErr: ErrPublicationClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			e := newTestEngine(f)

			_, err := e.ClosePublication(context.Background(), tt.pubID, tt.actorID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ClosePublication() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.commits) != 0 {
				t.Errorf("precondition failure must not write, got %d commits", len(f.commits))
			}
			if len(f.notified) != 0 {
				t.Errorf("precondition failure must not notify, got %d events", len(f.notified))
			}
		})
	}
}

func TestClosePublication_WithdrawalIsNotReverted(t *testing.T) {
	f := newFixture()
	e := newTestEngine(f)

	if _, err := e.ClosePublication(context.Background(), p1, u1); err != nil {
		t.Fatalf("ClosePublication() error = %v", err)
	}

	// Reflect the committed state back into the snapshot, as the store would.
	// A later operation on the same publication sees the withdrawal because
	// both run under the publication lock; it must fail closed instead of
	// committing a stale OPEN snapshot over it.
	w := f.commits[0]
	agg := f.aggs[p1]
	agg.Publication = *w.Publication
	for i := range agg.Offers {
		for _, o := range w.Offers {
			if agg.Offers[i].Offer.ID == o.ID {
				agg.Offers[i].Offer = o
			}
		}
	}

	_, err := e.CreateOffer(context.Background(), p1, u2, CreateOfferRequest{MoneyOffer: money(25)})
	if !errors.Is(err, ErrPublicationClosed) {
		t.Fatalf("CreateOffer() after withdrawal error = %v, want %v", err, ErrPublicationClosed)
	}
	if len(f.commits) != 1 {
		t.Fatalf("create after withdrawal must not write, commits = %d", len(f.commits))
	}
	if f.aggs[p1].Publication.Status != models.PublicationClosed {
		t.Errorf("publication status = %q, want closed", f.aggs[p1].Publication.Status)
	}

	_, err = e.UpdateOffer(context.Background(), p1, o1, u1, UpdateOfferRequest{Status: models.OfferAccepted})
	if !errors.Is(err, ErrOfferClosed) {
		t.Fatalf("accept after withdrawal error = %v, want %v", err, ErrOfferClosed)
	}
	if len(f.commits) != 1 {
		t.Errorf("accept after withdrawal must not write, commits = %d", len(f.commits))
	}
}

func offerStatuses(offers []models.Offer) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(offers))
	for _, o := range offers {
		out[o.ID] = o.Status
	}
	return out
}

func assertNotifications(t *testing.T, got, want []notifiedEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
