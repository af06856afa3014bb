package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/trading"
)

type recordingStore struct {
	created []models.Notification
	err     error
}

func (r *recordingStore) CreateNotification(_ context.Context, n models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

type recordingPusher struct {
	pushed []models.Notification
}

func (r *recordingPusher) Push(_ uuid.UUID, n models.Notification) {
	r.pushed = append(r.pushed, n)
}

func TestNotifyStoresAndPushes(t *testing.T) {
	store := &recordingStore{}
	pusher := &recordingPusher{}
	n := New(store, pusher)

	user := models.User{ID: uuid.New(), Name: "Ana"}
	if err := n.Notify(context.Background(), trading.EventOfferAccepted, user, "Black Lotus"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(store.created))
	}
	got := store.created[0]
	if got.UserID != user.ID {
		t.Errorf("notification user = %s, want %s", got.UserID, user.ID)
	}
	if got.Type != string(trading.EventOfferAccepted) {
		t.Errorf("notification type = %q", got.Type)
	}
	if got.Subject != "Your offer was accepted!" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.Body, `"Black Lotus"`) {
		t.Errorf("body does not mention publication: %q", got.Body)
	}
	if got.Read {
		t.Error("new notification should be unread")
	}

	if len(pusher.pushed) != 1 || pusher.pushed[0].ID != got.ID {
		t.Errorf("pushed = %v, want the stored notification", pusher.pushed)
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	store := &recordingStore{err: errors.New("down")}
	pusher := &recordingPusher{}
	n := New(store, pusher)

	err := n.Notify(context.Background(), trading.EventOfferRejected, models.User{ID: uuid.New()}, "Mox Ruby")
	if err == nil {
		t.Fatal("expected error when store fails")
	}
	if len(pusher.pushed) != 0 {
		t.Errorf("pushed %d notifications after store failure, want 0", len(pusher.pushed))
	}
}

func TestRenderTexts(t *testing.T) {
	cases := []struct {
		event   trading.Event
		subject string
	}{
		{trading.EventOfferCreated, "You received a new offer"},
		{trading.EventOfferAccepted, "Your offer was accepted!"},
		{trading.EventOfferRejected, "Your offer was rejected"},
		{trading.EventPublicationAccepted, "Your publication was accepted!"},
	}
	for _, tc := range cases {
		subject, body := render(tc.event, "Charizard")
		if subject != tc.subject {
			t.Errorf("%s: subject = %q, want %q", tc.event, subject, tc.subject)
		}
		if !strings.Contains(body, `"Charizard"`) {
			t.Errorf("%s: body does not mention publication: %q", tc.event, body)
		}
	}
}
