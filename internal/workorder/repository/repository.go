package repository

import (
	"context"
	"time"

	"ppf-ops-platform/internal/workorder/domain"
)

// Repository defines persistence for work orders.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context, f *domain.Filter, from, to *time.Time, limit, offset int32) ([]*domain.WorkOrder, error)
	Create(ctx context.Context, w *domain.WorkOrder) error
	Update(ctx context.Context, w *domain.WorkOrder) error
	Delete(ctx context.Context, id string) error
}
