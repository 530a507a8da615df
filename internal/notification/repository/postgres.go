package repository

import (
	"context"
	"database/sql"
	"errors"

	"ppf-ops-platform/internal/notification/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a notification repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const notificationColumns = "id, user_id, type, title, message, entity_type, entity_id, entity_url, read, created_at"

// GetByID returns the notification for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM notifications WHERE id = $1", id)
	n := &domain.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.EntityURL, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListByUser returns the newest notifications for the user, capped at limit,
// plus the unread count over the user's full backing set (not just the window).
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int32) ([]*domain.Notification, int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.EntityType, &n.EntityID, &n.EntityURL, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE", userID).Scan(&unread)
	if err != nil {
		return nil, 0, err
	}
	return out, unread, nil
}

// Create persists the notification. The notification must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, entity_type, entity_id, entity_url, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.EntityType, n.EntityID, n.EntityURL, n.Read, n.CreatedAt)
	return err
}

// MarkRead flips read on the notification with the given id.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE notifications SET read = TRUE WHERE id = $1", id)
	return err
}

// MarkAllRead flips read on every notification for the user.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE", userID)
	return err
}

// Delete removes the notification with the given id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = $1", id)
	return err
}
