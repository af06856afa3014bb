package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/trading"
)

// NotificationWriter persists notifications.
type NotificationWriter interface {
	CreateNotification(ctx context.Context, n models.Notification) error
}

// Pusher delivers a notification to a connected user in real time.
// Delivery is best effort, offline users read the stored copy later.
type Pusher interface {
	Push(userID uuid.UUID, n models.Notification)
}

// Notifier implements trading.Notifier by storing a notification and
// pushing it to the recipient's open websocket connections.
type Notifier struct {
	store  NotificationWriter
	pusher Pusher
}

func New(store NotificationWriter, pusher Pusher) *Notifier {
	return &Notifier{store: store, pusher: pusher}
}

// Notify builds the notification for the given event and delivers it.
func (n *Notifier) Notify(ctx context.Context, event trading.Event, recipient models.User, publicationName string) error {
	subject, body := render(event, publicationName)
	notification := models.Notification{
		ID:        uuid.New(),
		UserID:    recipient.ID,
		Type:      string(event),
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := n.store.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("storing notification: %w", err)
	}
	if n.pusher != nil {
		n.pusher.Push(recipient.ID, notification)
	}
	return nil
}

func render(event trading.Event, publicationName string) (subject, body string) {
	switch event {
	case trading.EventOfferCreated:
		return "You received a new offer",
			fmt.Sprintf("You have received a new offer for your publication %q. Check the platform to review it.", publicationName)
	case trading.EventOfferAccepted:
		return "Your offer was accepted!",
			fmt.Sprintf("Good news! Your offer for the publication %q has been accepted. Please check the platform to confirm the next steps.", publicationName)
	case trading.EventOfferRejected:
		return "Your offer was rejected",
			fmt.Sprintf("Unfortunately, your offer for the publication %q was rejected. Don't worry, you can keep exploring other opportunities on DeckTrade.", publicationName)
	case trading.EventPublicationAccepted:
		return "Your publication was accepted!",
			fmt.Sprintf("Congratulations! Your publication %q has been accepted. Please check the platform to confirm the next steps.", publicationName)
	default:
		return string(event), fmt.Sprintf("Update for publication %q.", publicationName)
	}
}
