package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/decktrade/decktrade-api/internal/models"
)

const offerColumns = `
	id, publication_id, owner_id, money_offer, card_ids, status, closed_at, created_at, updated_at
`

// OffersByOwner lists a user's offers, newest first.
func (s *Store) OffersByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Offer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+offerColumns+`
		FROM offers WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying offers: %w", err)
	}
	defer rows.Close()

	return collectOffers(rows)
}

func (s *Store) offersByPublication(ctx context.Context, publicationID uuid.UUID) ([]models.Offer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+offerColumns+`
		FROM offers WHERE publication_id = $1
		ORDER BY created_at
	`, publicationID)
	if err != nil {
		return nil, fmt.Errorf("querying offers: %w", err)
	}
	defer rows.Close()

	return collectOffers(rows)
}

func collectOffers(rows pgx.Rows) ([]models.Offer, error) {
	var offers []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.PublicationID, &o.OwnerID, &o.MoneyOffer, &o.CardIDs,
			&o.Status, &o.ClosedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
