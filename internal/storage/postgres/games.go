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

// CreateGame inserts a game.
func (s *Store) CreateGame(ctx context.Context, g models.Game) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO games (id, name) VALUES ($1, $2)
	`, g.ID, g.Name)
	if err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	return nil
}

// Games lists all games.
func (s *Store) Games(ctx context.Context) ([]models.Game, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at FROM games ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// CreateCardBase inserts a card base.
func (s *Store) CreateCardBase(ctx context.Context, cb models.CardBase) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO card_bases (id, game_id, name, image_url)
		VALUES ($1, $2, $3, $4)
	`, cb.ID, cb.GameID, cb.Name, cb.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting card base: %w", err)
	}
	return nil
}

// CardBases lists card bases, optionally limited to one game.
func (s *Store) CardBases(ctx context.Context, gameID *uuid.UUID) ([]models.CardBase, error) {
	query := `
		SELECT cb.id, cb.game_id, cb.name, cb.image_url, cb.created_at, cb.updated_at,
		       g.id, g.name, g.created_at, g.updated_at
		FROM card_bases cb
		JOIN games g ON g.id = cb.game_id
	`
	var args []interface{}
	if gameID != nil {
		query += ` WHERE cb.game_id = $1`
		args = append(args, *gameID)
	}
	query += ` ORDER BY cb.name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying card bases: %w", err)
	}
	defer rows.Close()

	var bases []models.CardBase
	for rows.Next() {
		cb, err := scanCardBase(rows)
		if err != nil {
			return nil, err
		}
		bases = append(bases, *cb)
	}
	return bases, rows.Err()
}

// CardBaseByID loads one card base with its game.
func (s *Store) CardBaseByID(ctx context.Context, id uuid.UUID) (*models.CardBase, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT cb.id, cb.game_id, cb.name, cb.image_url, cb.created_at, cb.updated_at,
		       g.id, g.name, g.created_at, g.updated_at
		FROM card_bases cb
		JOIN games g ON g.id = cb.game_id
		WHERE cb.id = $1
	`, id)

	cb, err := scanCardBase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCardBaseNotFound
		}
		return nil, err
	}
	return cb, nil
}

func scanCardBase(row pgx.Row) (*models.CardBase, error) {
	var cb models.CardBase
	var game models.Game
	var imageURL pgtype.Text

	err := row.Scan(
		&cb.ID, &cb.GameID, &cb.Name, &imageURL, &cb.CreatedAt, &cb.UpdatedAt,
		&game.ID, &game.Name, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning card base: %w", err)
	}

	if imageURL.Valid {
		cb.ImageURL = imageURL.String
	}
	cb.Game = &game
	return &cb, nil
}
