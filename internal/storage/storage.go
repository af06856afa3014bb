package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/config"
	"github.com/decktrade/decktrade-api/internal/db"
	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/storage/mongostore"
	"github.com/decktrade/decktrade-api/internal/storage/postgres"
	"github.com/decktrade/decktrade-api/internal/trading"
)

// Store is the persistence surface consumed by the HTTP services and the
// negotiation engine. Two backends implement it: postgres and mongo.
type Store interface {
	trading.UserLookup
	trading.CardStore
	trading.PublicationStore
	trading.TradeLog

	UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error)
	UpdateUser(ctx context.Context, u models.User) (*models.User, error)

	CreateGame(ctx context.Context, g models.Game) error
	Games(ctx context.Context) ([]models.Game, error)
	CreateCardBase(ctx context.Context, cb models.CardBase) error
	CardBases(ctx context.Context, gameID *uuid.UUID) ([]models.CardBase, error)
	CardBaseByID(ctx context.Context, id uuid.UUID) (*models.CardBase, error)

	CreateCard(ctx context.Context, c models.Card) error
	CardByID(ctx context.Context, id uuid.UUID) (*models.Card, error)
	CardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error)
	UpdateCard(ctx context.Context, c models.Card) error

	CreatePublication(ctx context.Context, p models.Publication) error
	PublicationByID(ctx context.Context, id uuid.UUID) (*models.Publication, error)
	Publications(ctx context.Context, f models.PublicationFilter) ([]models.Publication, error)
	HasOpenPublicationForCard(ctx context.Context, cardID uuid.UUID) (bool, error)

	OffersByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Offer, error)

	CreateNotification(ctx context.Context, n models.Notification) error
	NotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error

	Close(ctx context.Context) error
}

// Open connects the backend selected by the configuration.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "postgres", "":
		pool, err := db.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	case "mongo":
		return mongostore.New(ctx, cfg.MongoConfig.URI, cfg.MongoConfig.Database)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
