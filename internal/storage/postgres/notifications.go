package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/decktrade/decktrade-api/internal/models"
)

// CreateNotification inserts a notification row.
func (s *Store) CreateNotification(ctx context.Context, n models.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, subject, body, read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.UserID, n.Type, n.Subject, n.Body, n.Read)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// NotificationsByUser lists a user's notifications, newest first.
func (s *Store) NotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, type, subject, body, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("updating notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}
