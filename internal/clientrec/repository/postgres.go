package repository

import (
	"context"
	"database/sql"
	"errors"

	"ppf-ops-platform/internal/clientrec/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a client-record repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the client (with vehicles) for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, phone, email, notes, created_at, updated_at FROM clients WHERE id = $1", id)
	c := &domain.Client{}
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadVehicles(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns clients ordered by name, optionally filtered by a case-insensitive
// name/phone/email search, paginated by limit and offset. Vehicles are loaded per client.
func (r *PostgresRepository) List(ctx context.Context, search string, limit, offset int32) ([]*domain.Client, error) {
	query := "SELECT id, name, phone, email, notes, created_at, updated_at FROM clients"
	args := []interface{}{}
	if search != "" {
		query += " WHERE name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'"
		args = append(args, search)
	}
	query += " ORDER BY name"
	if limit > 0 {
		args = append(args, limit, offset)
		if search != "" {
			query += " LIMIT $2 OFFSET $3"
		} else {
			query += " LIMIT $1 OFFSET $2"
		}
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Client
	for rows.Next() {
		c := &domain.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range out {
		if err := r.loadVehicles(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Create persists the client and its vehicles. The client must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Client) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO clients (id, name, phone, email, notes, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		c.ID, c.Name, c.Phone, c.Email, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	for _, v := range c.Vehicles {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO client_vehicles (id, client_id, model, plate) VALUES ($1, $2, $3, $4)",
			v.ID, c.ID, v.Model, v.Plate)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Update persists the client fields and replaces its vehicle set.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Client) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"UPDATE clients SET name = $2, phone = $3, email = $4, notes = $5, updated_at = $6 WHERE id = $1",
		c.ID, c.Name, c.Phone, c.Email, c.Notes, c.UpdatedAt)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM client_vehicles WHERE client_id = $1", c.ID); err != nil {
		return err
	}
	for _, v := range c.Vehicles {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO client_vehicles (id, client_id, model, plate) VALUES ($1, $2, $3, $4)",
			v.ID, c.ID, v.Model, v.Plate)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the client; vehicles cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) loadVehicles(ctx context.Context, c *domain.Client) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, client_id, model, plate FROM client_vehicles WHERE client_id = $1 ORDER BY model", c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.ClientID, &v.Model, &v.Plate); err != nil {
			return err
		}
		c.Vehicles = append(c.Vehicles, v)
	}
	return rows.Err()
}
