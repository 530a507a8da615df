package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ppf-ops-platform/internal/report/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
	workorderrepo "ppf-ops-platform/internal/workorder/repository"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a report repository that aggregates over the
// work-order tables in the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// whereClause combines the shared work-order filter with a created-at window.
// Reports window on created_at, not scheduled_at, so unscheduled orders count.
func whereClause(from, to time.Time, f *workorderdomain.Filter) (string, []interface{}) {
	where, args := workorderrepo.FilterClauses(f, nil, nil)
	args = append(args, from)
	createdFrom := fmt.Sprintf("w.created_at >= $%d", len(args))
	args = append(args, to)
	createdTo := fmt.Sprintf("w.created_at < $%d", len(args))
	if where != "" {
		where += " AND "
	}
	where += createdFrom + " AND " + createdTo
	return where, args
}

// StatusBreakdown counts work orders per status in the window.
func (r *PostgresRepository) StatusBreakdown(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.StatusCount, error) {
	where, args := whereClause(from, to, f)
	rows, err := r.db.QueryContext(ctx,
		"SELECT w.status, COUNT(*) FROM work_orders w WHERE "+where+" GROUP BY w.status ORDER BY w.status",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StatusCount
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TechnicianWorkload counts total and completed orders per assigned technician.
func (r *PostgresRepository) TechnicianWorkload(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.TechnicianWorkload, error) {
	where, args := whereClause(from, to, f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.technician_id, u.name,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE w.status = 'completed')
		 FROM work_orders w
		 JOIN users u ON u.id = w.technician_id
		 WHERE w.technician_id IS NOT NULL AND `+where+`
		 GROUP BY w.technician_id, u.name
		 ORDER BY COUNT(*) DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TechnicianWorkload
	for rows.Next() {
		var t domain.TechnicianWorkload
		if err := rows.Scan(&t.TechnicianID, &t.TechnicianName, &t.Total, &t.Completed); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ZoneVolume counts installed zones across orders in the window.
func (r *PostgresRepository) ZoneVolume(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.ZoneCount, error) {
	where, args := whereClause(from, to, f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT zone, COUNT(*)
		 FROM work_orders w, unnest(w.ppf_zones) AS zone
		 WHERE `+where+`
		 GROUP BY zone
		 ORDER BY COUNT(*) DESC, zone`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ZoneCount
	for rows.Next() {
		var z domain.ZoneCount
		if err := rows.Scan(&z.Zone, &z.Count); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}
