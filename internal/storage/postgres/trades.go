package postgres

import (
	"context"
	"fmt"

	"github.com/decktrade/decktrade-api/internal/trading"
)

// CommitTrade implements trading.TradeLog: every write of one negotiation
// operation lands in a single transaction, so an accept cascade is all or
// nothing.
func (s *Store) CommitTrade(ctx context.Context, w trading.TradeWrites) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, card := range w.Cards {
		_, err = tx.Exec(ctx, `
			UPDATE cards
			SET owner_id = $1, status = $2, image_url = $3, updated_at = $4
			WHERE id = $5
		`, card.OwnerID, card.Status, card.ImageURL, card.UpdatedAt, card.ID)
		if err != nil {
			return fmt.Errorf("updating card %s: %w", card.ID, err)
		}
	}

	if w.Publication != nil {
		p := w.Publication
		_, err = tx.Exec(ctx, `
			UPDATE publications
			SET value_money = $1, card_exchange_ids = $2, status = $3, updated_at = $4
			WHERE id = $5
		`, p.ValueMoney, p.CardExchangeIDs, p.Status, p.UpdatedAt, p.ID)
		if err != nil {
			return fmt.Errorf("updating publication %s: %w", p.ID, err)
		}
	}

	for _, offer := range w.NewOffers {
		_, err = tx.Exec(ctx, `
			INSERT INTO offers (id, publication_id, owner_id, money_offer, card_ids, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, offer.ID, offer.PublicationID, offer.OwnerID, offer.MoneyOffer, offer.CardIDs,
			offer.Status, offer.CreatedAt, offer.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting offer %s: %w", offer.ID, err)
		}
	}

	for _, offer := range w.Offers {
		_, err = tx.Exec(ctx, `
			UPDATE offers
			SET status = $1, closed_at = $2, updated_at = $3
			WHERE id = $4
		`, offer.Status, offer.ClosedAt, offer.UpdatedAt, offer.ID)
		if err != nil {
			return fmt.Errorf("updating offer %s: %w", offer.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing trade: %w", err)
	}
	return nil
}
