package repository

import (
	"context"
	"time"

	"ppf-ops-platform/internal/report/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// Repository runs the pre-aggregated report queries the dashboard charts
// consume. All queries are bounded by a created-at window and the shared
// work-order filter.
type Repository interface {
	StatusBreakdown(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.StatusCount, error)
	TechnicianWorkload(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.TechnicianWorkload, error)
	ZoneVolume(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.ZoneCount, error)
}
