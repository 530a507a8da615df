package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ppf-ops-platform/internal/workorder/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a work-order repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ppf_zones is selected as a comma-joined string: database/sql cannot scan a
// Postgres text[] into []string, while pgx encodes []string arguments natively.
const workOrderColumns = "id, client_id, technician_id, vehicle_model, array_to_string(ppf_zones, ','), status, priority, notes, scheduled_at, completed_at, created_at, updated_at"

// GetByID returns the work order for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+workOrderColumns+" FROM work_orders WHERE id = $1", id)
	w, err := scanWorkOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// List returns work orders matching the filter and optional scheduled-at window,
// newest scheduled first, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, f *domain.Filter, from, to *time.Time, limit, offset int32) ([]*domain.WorkOrder, error) {
	query := "SELECT " + workOrderColumns + " FROM work_orders"
	where, args := FilterClauses(f, from, to)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY scheduled_at DESC NULLS LAST, created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Create persists the work order. The work order must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.WorkOrder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO work_orders (id, client_id, technician_id, vehicle_model, ppf_zones, status, priority, notes, scheduled_at, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		w.ID, w.ClientID,
		sql.NullString{String: w.TechnicianID, Valid: w.TechnicianID != ""},
		w.VehicleModel, w.PPFZones, w.Status, w.Priority, w.Notes,
		timeToNullTime(w.ScheduledAt), timeToNullTime(w.CompletedAt),
		w.CreatedAt, w.UpdatedAt)
	return err
}

// Update persists all mutable work-order fields for w.ID.
func (r *PostgresRepository) Update(ctx context.Context, w *domain.WorkOrder) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE work_orders SET technician_id = $2, vehicle_model = $3, ppf_zones = $4, status = $5,
		 priority = $6, notes = $7, scheduled_at = $8, completed_at = $9, updated_at = $10 WHERE id = $1`,
		w.ID,
		sql.NullString{String: w.TechnicianID, Valid: w.TechnicianID != ""},
		w.VehicleModel, w.PPFZones, w.Status, w.Priority, w.Notes,
		timeToNullTime(w.ScheduledAt), timeToNullTime(w.CompletedAt), w.UpdatedAt)
	return err
}

// Delete removes the work order with the given id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM work_orders WHERE id = $1", id)
	return err
}

// FilterClauses builds WHERE clauses and positional args for a filter and
// scheduled-at window. Slice dimensions use = ANY; ppf_zones uses array overlap.
// Shared with the report queries, which aggregate over the same filter shape.
func FilterClauses(f *domain.Filter, from, to *time.Time) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f != nil {
		if len(f.TechnicianIDs) > 0 {
			add("technician_id = ANY($%d)", f.TechnicianIDs)
		}
		if len(f.ClientIDs) > 0 {
			add("client_id = ANY($%d)", f.ClientIDs)
		}
		if len(f.Statuses) > 0 {
			add("status = ANY($%d)", f.Statuses)
		}
		if len(f.Priorities) > 0 {
			add("priority = ANY($%d)", f.Priorities)
		}
		if len(f.PPFZones) > 0 {
			add("ppf_zones && $%d", f.PPFZones)
		}
		if len(f.VehicleModels) > 0 {
			add("vehicle_model = ANY($%d)", f.VehicleModels)
		}
	}
	if from != nil {
		add("scheduled_at >= $%d", *from)
	}
	if to != nil {
		add("scheduled_at < $%d", *to)
	}
	where := ""
	for i, c := range clauses {
		if i > 0 {
			where += " AND "
		}
		where += c
	}
	return where, args
}

func scanWorkOrder(scan func(dest ...interface{}) error) (*domain.WorkOrder, error) {
	w := &domain.WorkOrder{}
	var tech sql.NullString
	var zones string
	var scheduledAt, completedAt sql.NullTime
	err := scan(&w.ID, &w.ClientID, &tech, &w.VehicleModel, &zones, &w.Status, &w.Priority,
		&w.Notes, &scheduledAt, &completedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.TechnicianID = tech.String
	if zones != "" {
		w.PPFZones = strings.Split(zones, ",")
	}
	w.ScheduledAt = nullTimeToPtr(scheduledAt)
	w.CompletedAt = nullTimeToPtr(completedAt)
	return w, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
