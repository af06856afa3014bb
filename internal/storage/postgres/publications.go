package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/trading"
)

// CreatePublication inserts a publication.
func (s *Store) CreatePublication(ctx context.Context, p models.Publication) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO publications (id, owner_id, card_id, value_money, card_exchange_ids, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.OwnerID, p.CardID, p.ValueMoney, p.CardExchangeIDs, p.Status)
	if err != nil {
		return fmt.Errorf("inserting publication: %w", err)
	}
	return nil
}

// PublicationByID loads one publication row with its offer ids.
func (s *Store) PublicationByID(ctx context.Context, id uuid.UUID) (*models.Publication, error) {
	var p models.Publication
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, card_id, value_money, card_exchange_ids, status, created_at, updated_at
		FROM publications WHERE id = $1
	`, id).Scan(&p.ID, &p.OwnerID, &p.CardID, &p.ValueMoney, &p.CardExchangeIDs,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trading.ErrPublicationNotFound
		}
		return nil, fmt.Errorf("querying publication: %w", err)
	}

	if err := s.fillOfferIDs(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Publications lists publications with simple filters and limit/offset.
func (s *Store) Publications(ctx context.Context, f models.PublicationFilter) ([]models.Publication, error) {
	query := `
		SELECT id, owner_id, card_id, value_money, card_exchange_ids, status, created_at, updated_at
		FROM publications
		WHERE 1=1
	`
	var args []interface{}
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var pubs []models.Publication
	for rows.Next() {
		var p models.Publication
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.CardID, &p.ValueMoney, &p.CardExchangeIDs,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// HasOpenPublicationForCard reports whether a card is already listed.
func (s *Store) HasOpenPublicationForCard(ctx context.Context, cardID uuid.UUID) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM publications WHERE card_id = $1 AND status = $2
	`, cardID, models.PublicationOpen).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting publications: %w", err)
	}
	return count > 0, nil
}

// Aggregate implements trading.PublicationStore: one snapshot holding the
// publication, its owner, the listed card, and every offer with its owner
// and staked cards.
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

	offers, err := s.offersByPublication(ctx, pub.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]trading.OfferEntry, 0, len(offers))
	for _, offer := range offers {
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
		entries = append(entries, trading.OfferEntry{
			Offer: offer,
			Owner: *offerOwner,
			Cards: staked,
		})
	}

	return &trading.Aggregate{
		Publication: *pub,
		Owner:       *owner,
		Card:        *card,
		Offers:      entries,
	}, nil
}

func (s *Store) fillOfferIDs(ctx context.Context, p *models.Publication) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM offers WHERE publication_id = $1 ORDER BY created_at
	`, p.ID)
	if err != nil {
		return fmt.Errorf("querying offer ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning offer id: %w", err)
		}
		p.OfferIDs = append(p.OfferIDs, id)
	}
	return rows.Err()
}
