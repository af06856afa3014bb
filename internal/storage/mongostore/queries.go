package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/trading"
)

// UserByID implements trading.UserLookup.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc userDoc
	err := s.users().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, trading.ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	user := doc.toModel()
	return &user, nil
}

// UpsertTelegramUser creates or refreshes a user from their Telegram login.
func (s *Store) UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error) {
	now := time.Now()

	var tg telegramUserDoc
	err := s.telegramUsers().FindOne(ctx, bson.M{"telegramId": p.TelegramID}).Decode(&tg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		if name == "" {
			name = p.Username
		}
		user := userDoc{
			ID:        uuid.New().String(),
			Name:      name,
			AvatarURL: p.PhotoURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.users().InsertOne(ctx, user); err != nil {
			return nil, fmt.Errorf("inserting user: %w", err)
		}
		tg = telegramUserDoc{
			ID:         uuid.New().String(),
			UserID:     user.ID,
			TelegramID: p.TelegramID,
			Username:   p.Username,
			PhotoURL:   p.PhotoURL,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := s.telegramUsers().InsertOne(ctx, tg); err != nil {
			return nil, fmt.Errorf("inserting telegram user: %w", err)
		}
		m := user.toModel()
		return &m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding telegram user: %w", err)
	}

	_, err = s.telegramUsers().UpdateOne(ctx, bson.M{"_id": tg.ID}, bson.M{
		"$set": bson.M{"username": p.Username, "photoUrl": p.PhotoURL, "updatedAt": now},
	})
	if err != nil {
		return nil, fmt.Errorf("updating telegram user: %w", err)
	}

	return s.UserByID(ctx, uuid.MustParse(tg.UserID))
}

// UpdateUser updates profile fields and returns the stored user.
func (s *Store) UpdateUser(ctx context.Context, u models.User) (*models.User, error) {
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": u.ID.String()}, bson.M{
		"$set": bson.M{"name": u.Name, "email": u.Email, "avatarUrl": u.AvatarURL, "updatedAt": time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, trading.ErrUserNotFound
	}
	return s.UserByID(ctx, u.ID)
}

// CreateGame inserts a game.
func (s *Store) CreateGame(ctx context.Context, g models.Game) error {
	now := time.Now()
	_, err := s.games().InsertOne(ctx, gameDoc{
		ID: g.ID.String(), Name: g.Name, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	return nil
}

// Games lists all games.
func (s *Store) Games(ctx context.Context) ([]models.Game, error) {
	cursor, err := s.games().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("finding games: %w", err)
	}
	var docs []gameDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding games: %w", err)
	}
	games := make([]models.Game, 0, len(docs))
	for _, d := range docs {
		games = append(games, models.Game{
			ID: uuid.MustParse(d.ID), Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		})
	}
	return games, nil
}

// CreateCardBase inserts a card base.
func (s *Store) CreateCardBase(ctx context.Context, cb models.CardBase) error {
	now := time.Now()
	_, err := s.cardBases().InsertOne(ctx, cardBaseDoc{
		ID: cb.ID.String(), GameID: cb.GameID.String(), Name: cb.Name,
		ImageURL: cb.ImageURL, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("inserting card base: %w", err)
	}
	return nil
}

// CardBases lists card bases, optionally limited to one game.
func (s *Store) CardBases(ctx context.Context, gameID *uuid.UUID) ([]models.CardBase, error) {
	filter := bson.M{}
	if gameID != nil {
		filter["gameId"] = gameID.String()
	}
	cursor, err := s.cardBases().Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("finding card bases: %w", err)
	}
	var docs []cardBaseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding card bases: %w", err)
	}
	bases := make([]models.CardBase, 0, len(docs))
	for _, d := range docs {
		bases = append(bases, models.CardBase{
			ID: uuid.MustParse(d.ID), GameID: uuid.MustParse(d.GameID),
			Name: d.Name, ImageURL: d.ImageURL, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		})
	}
	return bases, nil
}

// CardBaseByID loads one card base with its game.
func (s *Store) CardBaseByID(ctx context.Context, id uuid.UUID) (*models.CardBase, error) {
	var doc cardBaseDoc
	err := s.cardBases().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCardBaseNotFound
		}
		return nil, fmt.Errorf("finding card base: %w", err)
	}

	cb := models.CardBase{
		ID: uuid.MustParse(doc.ID), GameID: uuid.MustParse(doc.GameID),
		Name: doc.Name, ImageURL: doc.ImageURL, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt,
	}

	var game gameDoc
	if err := s.games().FindOne(ctx, bson.M{"_id": doc.GameID}).Decode(&game); err == nil {
		cb.Game = &models.Game{
			ID: uuid.MustParse(game.ID), Name: game.Name,
			CreatedAt: game.CreatedAt, UpdatedAt: game.UpdatedAt,
		}
	}
	return &cb, nil
}

// CreateCard inserts a card.
func (s *Store) CreateCard(ctx context.Context, c models.Card) error {
	now := time.Now()
	_, err := s.cards().InsertOne(ctx, cardDoc{
		ID: c.ID.String(), OwnerID: c.OwnerID.String(), CardBaseID: c.CardBaseID.String(),
		Status: c.Status, ImageURL: c.ImageURL, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("inserting card: %w", err)
	}
	return nil
}

// CardByID loads one card with its card base.
func (s *Store) CardByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	var doc cardDoc
	err := s.cards().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrCardNotFound
		}
		return nil, fmt.Errorf("finding card: %w", err)
	}
	card := doc.toModel()
	if base, err := s.CardBaseByID(ctx, card.CardBaseID); err == nil {
		card.CardBase = base
	}
	return &card, nil
}

// CardsByIDs implements trading.CardStore.
func (s *Store) CardsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.cards().Find(ctx, bson.M{"_id": bson.M{"$in": idsToStrings(ids)}})
	if err != nil {
		return nil, fmt.Errorf("finding cards: %w", err)
	}
	return s.decodeCards(ctx, cursor)
}

// CardsByOwner lists all cards currently owned by a user.
func (s *Store) CardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error) {
	cursor, err := s.cards().Find(ctx, bson.M{"ownerId": ownerID.String()},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("finding cards: %w", err)
	}
	return s.decodeCards(ctx, cursor)
}

// UpdateCard updates a card's mutable fields.
func (s *Store) UpdateCard(ctx context.Context, c models.Card) error {
	res, err := s.cards().UpdateOne(ctx, bson.M{"_id": c.ID.String()}, bson.M{
		"$set": bson.M{
			"ownerId": c.OwnerID.String(), "statusCard": c.Status,
			"urlImage": c.ImageURL, "updatedAt": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("updating card: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrCardNotFound
	}
	return nil
}

func (s *Store) decodeCards(ctx context.Context, cursor *mongo.Cursor) ([]models.Card, error) {
	var docs []cardDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding cards: %w", err)
	}
	cards := make([]models.Card, 0, len(docs))
	for _, d := range docs {
		card := d.toModel()
		if base, err := s.CardBaseByID(ctx, card.CardBaseID); err == nil {
			card.CardBase = base
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// CreatePublication inserts a publication.
func (s *Store) CreatePublication(ctx context.Context, p models.Publication) error {
	now := time.Now()
	_, err := s.publications().InsertOne(ctx, publicationDoc{
		ID: p.ID.String(), OwnerID: p.OwnerID.String(), CardID: p.CardID.String(),
		ValueMoney: p.ValueMoney, CardExchangeIDs: idsToStrings(p.CardExchangeIDs),
		OfferIDs: []string{}, Status: p.Status, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("inserting publication: %w", err)
	}
	return nil
}

// PublicationByID loads one publication document.
func (s *Store) PublicationByID(ctx context.Context, id uuid.UUID) (*models.Publication, error) {
	var doc publicationDoc
	err := s.publications().FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, trading.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("finding publication: %w", err)
	}
	pub := doc.toModel()
	return &pub, nil
}

// Publications lists publications with simple filters and limit/offset.
func (s *Store) Publications(ctx context.Context, f models.PublicationFilter) ([]models.Publication, error) {
	filter := bson.M{}
	if f.OwnerID != nil {
		filter["ownerId"] = f.OwnerID.String()
	}
	if f.Status != "" {
		filter["statusPublication"] = f.Status
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}

	cursor, err := s.publications().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding publications: %w", err)
	}
	var docs []publicationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding publications: %w", err)
	}
	pubs := make([]models.Publication, 0, len(docs))
	for _, d := range docs {
		pubs = append(pubs, d.toModel())
	}
	return pubs, nil
}

// HasOpenPublicationForCard reports whether a card is already listed.
func (s *Store) HasOpenPublicationForCard(ctx context.Context, cardID uuid.UUID) (bool, error) {
	count, err := s.publications().CountDocuments(ctx, bson.M{
		"cardId": cardID.String(), "statusPublication": models.PublicationOpen,
	})
	if err != nil {
		return false, fmt.Errorf("counting publications: %w", err)
	}
	return count > 0, nil
}

// Aggregate implements trading.PublicationStore.
func (s *Store) Aggregate(ctx context.Context, publicationID uuid.UUID) (*trading.Aggregate, error) {
	pub, err := s.PublicationByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	owner, err := s.UserByID(ctx, pub.OwnerID)
	if err != nil {
		return nil, err
	}
	card, err := s.CardByID(ctx, pub.CardID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.offers().Find(ctx, bson.M{"publicationId": pub.ID.String()},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("finding offers: %w", err)
	}
	var docs []offerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding offers: %w", err)
	}

	entries := make([]trading.OfferEntry, 0, len(docs))
	for _, d := range docs {
		offer := d.toModel()
		offerOwner, err := s.UserByID(ctx, offer.OwnerID)
		if err != nil {
			return nil, err
		}
		var staked []models.Card
		if len(offer.CardIDs) > 0 {
			staked, err = s.CardsByIDs(ctx, offer.CardIDs)
			if err != nil {
				return nil, err
			}
		}
		entries = append(entries, trading.OfferEntry{Offer: offer, Owner: *offerOwner, Cards: staked})
	}

	return &trading.Aggregate{
		Publication: *pub,
		Owner:       *owner,
		Card:        *card,
		Offers:      entries,
	}, nil
}

// OffersByOwner lists a user's offers, newest first.
func (s *Store) OffersByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Offer, error) {
	cursor, err := s.offers().Find(ctx, bson.M{"offerOwnerId": ownerID.String()},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("finding offers: %w", err)
	}
	var docs []offerDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding offers: %w", err)
	}
	offers := make([]models.Offer, 0, len(docs))
	for _, d := range docs {
		offers = append(offers, d.toModel())
	}
	return offers, nil
}

// CreateNotification inserts a notification document.
func (s *Store) CreateNotification(ctx context.Context, n models.Notification) error {
	_, err := s.notifications().InsertOne(ctx, notificationDoc{
		ID: n.ID.String(), UserID: n.UserID.String(), Type: n.Type,
		Subject: n.Subject, Body: n.Body, Read: n.Read, CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// NotificationsByUser lists a user's notifications, newest first.
func (s *Store) NotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	cursor, err := s.notifications().Find(ctx, bson.M{"userId": userID.String()},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, fmt.Errorf("finding notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	notifications := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		notifications = append(notifications, models.Notification{
			ID: uuid.MustParse(d.ID), UserID: uuid.MustParse(d.UserID), Type: d.Type,
			Subject: d.Subject, Body: d.Body, Read: d.Read, CreatedAt: d.CreatedAt,
		})
	}
	return notifications, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.notifications().UpdateOne(ctx,
		bson.M{"_id": id.String(), "userId": userID.String()},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("updating notification: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}
