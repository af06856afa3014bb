package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/decktrade/decktrade-api/internal/trading"
)

// CommitTrade implements trading.TradeLog: every write of one negotiation
// operation runs inside a single session transaction, so an accept cascade
// is all or nothing.
func (s *Store) CommitTrade(ctx context.Context, w trading.TradeWrites) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, card := range w.Cards {
			_, err := s.cards().UpdateOne(sc, bson.M{"_id": card.ID.String()}, bson.M{
				"$set": bson.M{
					"ownerId":    card.OwnerID.String(),
					"statusCard": card.Status,
					"urlImage":   card.ImageURL,
					"updatedAt":  card.UpdatedAt,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("updating card %s: %w", card.ID, err)
			}
		}

		if w.Publication != nil {
			p := w.Publication
			_, err := s.publications().UpdateOne(sc, bson.M{"_id": p.ID.String()}, bson.M{
				"$set": bson.M{
					"valueMoney":        p.ValueMoney,
					"cardExchangeIds":   idsToStrings(p.CardExchangeIDs),
					"offerIds":          idsToStrings(p.OfferIDs),
					"statusPublication": p.Status,
					"updatedAt":         p.UpdatedAt,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("updating publication %s: %w", p.ID, err)
			}
		}

		for _, offer := range w.NewOffers {
			_, err := s.offers().InsertOne(sc, offerDoc{
				ID:            offer.ID.String(),
				PublicationID: offer.PublicationID.String(),
				OwnerID:       offer.OwnerID.String(),
				MoneyOffer:    offer.MoneyOffer,
				CardIDs:       idsToStrings(offer.CardIDs),
				Status:        offer.Status,
				CreatedAt:     offer.CreatedAt,
				UpdatedAt:     offer.UpdatedAt,
			})
			if err != nil {
				return nil, fmt.Errorf("inserting offer %s: %w", offer.ID, err)
			}
		}

		for _, offer := range w.Offers {
			_, err := s.offers().UpdateOne(sc, bson.M{"_id": offer.ID.String()}, bson.M{
				"$set": bson.M{
					"statusOffer": offer.Status,
					"closedAt":    offer.ClosedAt,
					"updatedAt":   offer.UpdatedAt,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("updating offer %s: %w", offer.ID, err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("committing trade: %w", err)
	}
	return nil
}
