package repository

import (
	"context"

	"ppf-ops-platform/internal/notification/domain"
)

// Repository defines persistence for notifications.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListByUser returns the newest notifications for the user, capped at limit,
	// plus the unread count over the user's full backing set.
	ListByUser(ctx context.Context, userID string, limit int32) ([]*domain.Notification, int, error)
	Create(ctx context.Context, n *domain.Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
}
