package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/decktrade/decktrade-api/internal/models"
)

const cardColumns = `
	c.id, c.owner_id, c.card_base_id, c.status, c.image_url, c.created_at, c.updated_at,
	cb.id, cb.game_id, cb.name, cb.image_url, cb.created_at, cb.updated_at
`

const cardFrom = `
	FROM cards c
	JOIN card_bases cb ON cb.id = c.card_base_id
`

// CreateCard inserts a card.
func (s *Store) CreateCard(ctx context.Context, c models.Card) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cards (id, owner_id, card_base_id, status, image_url)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.OwnerID, c.CardBaseID, c.Status, c.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting card: %w", err)
	}
	return nil
}

// CardByID loads one card with its card base.
func (s *Store) CardByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+cardColumns+cardFrom+` WHERE c.id = $1`, id)

	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// CardsByIDs implements trading.CardStore: it returns only the cards that
// resolve, in no particular order.
func (s *Store) CardsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT `+cardColumns+cardFrom+` WHERE c.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// CardsByOwner lists all cards currently owned by a user.
func (s *Store) CardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+cardColumns+cardFrom+`
		WHERE c.owner_id = $1
		ORDER BY c.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// UpdateCard updates a card's mutable fields (owner, status, image).
func (s *Store) UpdateCard(ctx context.Context, c models.Card) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cards
		SET owner_id = $1, status = $2, image_url = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`, c.OwnerID, c.Status, c.ImageURL, c.ID)
	if err != nil {
		return fmt.Errorf("updating card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCardNotFound
	}
	return nil
}

func collectCards(rows pgx.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func scanCard(row pgx.Row) (*models.Card, error) {
	var card models.Card
	var base models.CardBase
	var cardImage, baseImage pgtype.Text

	err := row.Scan(
		&card.ID, &card.OwnerID, &card.CardBaseID, &card.Status, &cardImage, &card.CreatedAt, &card.UpdatedAt,
		&base.ID, &base.GameID, &base.Name, &baseImage, &base.CreatedAt, &base.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning card: %w", err)
	}

	if cardImage.Valid {
		card.ImageURL = cardImage.String
	}
	if baseImage.Valid {
		base.ImageURL = baseImage.String
	}
	card.CardBase = &base
	return &card, nil
}
