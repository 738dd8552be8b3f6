package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateNotification records a user-facing event.
func (s *Store) CreateNotification(ctx context.Context, userID uuid.UUID, kind, message string) (*Notification, error) {
	var n Notification
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, kind, message)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, kind, message, read, created_at`,
		userID, kind, message,
	).Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	query := `SELECT id, user_id, kind, message, read, created_at
	          FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	return nil
}
