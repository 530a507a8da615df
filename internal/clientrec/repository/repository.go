package repository

import (
	"context"

	"ppf-ops-platform/internal/clientrec/domain"
)

// Repository defines persistence for client records.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, search string, limit, offset int32) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}
