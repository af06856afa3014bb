package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/decktrade/decktrade-api/internal/models"
)

// Store is the document-store persistence backend.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and pings the primary.
func New(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) users() *mongo.Collection         { return s.db.Collection("users") }
func (s *Store) telegramUsers() *mongo.Collection { return s.db.Collection("telegram_users") }
func (s *Store) games() *mongo.Collection         { return s.db.Collection("games") }
func (s *Store) cardBases() *mongo.Collection     { return s.db.Collection("card_bases") }
func (s *Store) cards() *mongo.Collection         { return s.db.Collection("cards") }
func (s *Store) publications() *mongo.Collection  { return s.db.Collection("publications") }
func (s *Store) offers() *mongo.Collection        { return s.db.Collection("offers") }
func (s *Store) notifications() *mongo.Collection { return s.db.Collection("notifications") }

// Document shapes. IDs are stored as canonical UUID strings.

type userDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email,omitempty"`
	AvatarURL string    `bson:"avatarUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type telegramUserDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	TelegramID int64     `bson:"telegramId"`
	Username   string    `bson:"username,omitempty"`
	PhotoURL   string    `bson:"photoUrl,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type gameDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type cardBaseDoc struct {
	ID        string    `bson:"_id"`
	GameID    string    `bson:"gameId"`
	Name      string    `bson:"name"`
	ImageURL  string    `bson:"imageUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type cardDoc struct {
	ID         string    `bson:"_id"`
	OwnerID    string    `bson:"ownerId"`
	CardBaseID string    `bson:"cardBaseId"`
	Status     int       `bson:"statusCard"`
	ImageURL   string    `bson:"urlImage,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type publicationDoc struct {
	ID              string    `bson:"_id"`
	OwnerID         string    `bson:"ownerId"`
	CardID          string    `bson:"cardId"`
	ValueMoney      *float64  `bson:"valueMoney,omitempty"`
	CardExchangeIDs []string  `bson:"cardExchangeIds"`
	OfferIDs        []string  `bson:"offerIds"`
	Status          string    `bson:"statusPublication"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

type offerDoc struct {
	ID            string     `bson:"_id"`
	PublicationID string     `bson:"publicationId"`
	OwnerID       string     `bson:"offerOwnerId"`
	MoneyOffer    *float64   `bson:"moneyOffer,omitempty"`
	CardIDs       []string   `bson:"cardIds"`
	Status        string     `bson:"statusOffer"`
	ClosedAt      *time.Time `bson:"closedAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

type notificationDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Type      string    `bson:"type"`
	Subject   string    `bson:"subject"`
	Body      string    `bson:"body"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"createdAt"`
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToIDs(strs []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:        uuid.MustParse(d.ID),
		Name:      d.Name,
		Email:     d.Email,
		AvatarURL: d.AvatarURL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d cardDoc) toModel() models.Card {
	return models.Card{
		ID:         uuid.MustParse(d.ID),
		OwnerID:    uuid.MustParse(d.OwnerID),
		CardBaseID: uuid.MustParse(d.CardBaseID),
		Status:     d.Status,
		ImageURL:   d.ImageURL,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (d publicationDoc) toModel() models.Publication {
	return models.Publication{
		ID:              uuid.MustParse(d.ID),
		OwnerID:         uuid.MustParse(d.OwnerID),
		CardID:          uuid.MustParse(d.CardID),
		ValueMoney:      d.ValueMoney,
		CardExchangeIDs: stringsToIDs(d.CardExchangeIDs),
		OfferIDs:        stringsToIDs(d.OfferIDs),
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (d offerDoc) toModel() models.Offer {
	return models.Offer{
		ID:            uuid.MustParse(d.ID),
		PublicationID: uuid.MustParse(d.PublicationID),
		OwnerID:       uuid.MustParse(d.OwnerID),
		MoneyOffer:    d.MoneyOffer,
		CardIDs:       stringsToIDs(d.CardIDs),
		Status:        d.Status,
		ClosedAt:      d.ClosedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
