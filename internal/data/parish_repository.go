package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ParishRepository handles database operations for parishes (tenants).
type ParishRepository struct {
	db *sqlx.DB
}

// NewParishRepository creates a new ParishRepository.
func NewParishRepository(db *sqlx.DB) *ParishRepository {
	return &ParishRepository{db: db}
}

// CreateParish inserts a new parish.
func (r *ParishRepository) CreateParish(ctx context.Context, p *Parish) error {
	query := `INSERT INTO parishes (id, name, slug, city, timezone)
	          VALUES (:id, :name, :slug, :city, :timezone)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to create parish: %w", err)
	}
	return nil
}

// GetParishBySlug retrieves a parish by its URL slug.
func (r *ParishRepository) GetParishBySlug(ctx context.Context, slug string) (*Parish, error) {
	var p Parish
	query := `SELECT id, name, slug, city, timezone, created_at, updated_at FROM parishes WHERE slug = ?`
	if err := r.db.GetContext(ctx, &p, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("parish %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get parish by slug: %w", err)
	}
	return &p, nil
}

// GetParishByID retrieves a parish by its ID.
func (r *ParishRepository) GetParishByID(ctx context.Context, id string) (*Parish, error) {
	var p Parish
	query := `SELECT id, name, slug, city, timezone, created_at, updated_at FROM parishes WHERE id = ?`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("parish %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get parish by id: %w", err)
	}
	return &p, nil
}

// ListParishes retrieves all parishes ordered by name.
func (r *ParishRepository) ListParishes(ctx context.Context) ([]*Parish, error) {
	var parishes []*Parish
	query := `SELECT id, name, slug, city, timezone, created_at, updated_at FROM parishes ORDER BY name`
	if err := r.db.SelectContext(ctx, &parishes, query); err != nil {
		return nil, fmt.Errorf("failed to list parishes: %w", err)
	}
	return parishes, nil
}

// UpdateParish updates an existing parish.
func (r *ParishRepository) UpdateParish(ctx context.Context, p *Parish) error {
	query := `UPDATE parishes SET name = :name, slug = :slug, city = :city,
	          timezone = :timezone, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update parish: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("parish %s: %w", p.ID, ErrNotFound)
	}
	return nil
}
