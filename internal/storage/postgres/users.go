package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/decktrade/decktrade-api/internal/models"
	"github.com/decktrade/decktrade-api/internal/trading"
)

// UserByID implements trading.UserLookup.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	var email, avatarURL pgtype.Text

	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, avatar_url, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &email, &avatarURL, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trading.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if email.Valid {
		user.Email = email.String
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}
	return &user, nil
}

// UpsertTelegramUser creates a user on first Telegram login or refreshes the
// linked profile on subsequent logins.
func (s *Store) UpsertTelegramUser(ctx context.Context, p models.TelegramProfile) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		name = p.Username
	}

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_users WHERE telegram_id = $1
	`, p.TelegramID).Scan(&userID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO users (name, avatar_url)
			VALUES ($1, $2)
			RETURNING id
		`, name, p.PhotoURL).Scan(&userID)
		if err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_users (user_id, telegram_id, username, photo_url)
			VALUES ($1, $2, $3, $4)
		`, userID, p.TelegramID, p.Username, p.PhotoURL)
		if err != nil {
			return nil, fmt.Errorf("creating telegram user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("querying telegram user: %w", err)
	default:
		_, err = tx.Exec(ctx, `
			UPDATE telegram_users
			SET username = $1, photo_url = $2, updated_at = CURRENT_TIMESTAMP
			WHERE telegram_id = $3
		`, p.Username, p.PhotoURL, p.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("updating telegram user: %w", err)
		}
	}

	var user models.User
	var email, avatarURL pgtype.Text
	err = tx.QueryRow(ctx, `
		SELECT id, name, email, avatar_url, created_at, updated_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Name, &email, &avatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if email.Valid {
		user.Email = email.String
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return &user, nil
}

// UpdateUser updates profile fields and returns the stored user.
func (s *Store) UpdateUser(ctx context.Context, u models.User) (*models.User, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, avatar_url = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`, u.Name, u.Email, u.AvatarURL, u.ID)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, trading.ErrUserNotFound
	}
	return s.UserByID(ctx, u.ID)
}
