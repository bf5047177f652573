package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// SQLPageRepository is a concrete implementation of the PageRepository interface using sqlx.
type SQLPageRepository struct {
	db *sqlx.DB
}

// NewSQLPageRepository creates a new SQLPageRepository.
func NewSQLPageRepository(db *sqlx.DB) *SQLPageRepository {
	return &SQLPageRepository{db: db}
}

// CreatePage inserts a new page.
func (r *SQLPageRepository) CreatePage(ctx context.Context, page *Page) error {
	query := `INSERT INTO pages (id, parish_id, title, slug, content, published)
	          VALUES (:id, :parish_id, :title, :slug, :content, :published)`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("failed to execute create page query: %w", err)
	}
	return nil
}

// GetPageBySlug retrieves a single page of a parish by its URL slug.
func (r *SQLPageRepository) GetPageBySlug(ctx context.Context, parishID, slug string) (*Page, error) {
	var page Page
	query := `SELECT id, parish_id, title, slug, content, published, created_at, updated_at
	          FROM pages WHERE parish_id = ? AND slug = ?`
	if err := r.db.GetContext(ctx, &page, query, parishID, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page by slug: %w", err)
	}
	return &page, nil
}

// GetPageByID retrieves a single page by its ID.
func (r *SQLPageRepository) GetPageByID(ctx context.Context, id string) (*Page, error) {
	var page Page
	query := `SELECT id, parish_id, title, slug, content, published, created_at, updated_at
	          FROM pages WHERE id = ?`
	if err := r.db.GetContext(ctx, &page, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page by id: %w", err)
	}
	return &page, nil
}

// UpdatePage updates an existing page, including its content blob.
func (r *SQLPageRepository) UpdatePage(ctx context.Context, page *Page) error {
	query := `UPDATE pages SET title = :title, slug = :slug, content = :content,
	          published = :published, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, page)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("page %s: %w", page.ID, ErrNotFound)
	}
	return nil
}

// ListPages retrieves all pages of a parish, newest first.
func (r *SQLPageRepository) ListPages(ctx context.Context, parishID string) ([]*Page, error) {
	var pages []*Page
	query := `SELECT id, parish_id, title, slug, content, published, created_at, updated_at
	          FROM pages WHERE parish_id = ? ORDER BY updated_at DESC`
	if err := r.db.SelectContext(ctx, &pages, query, parishID); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// DeletePage removes a page by its ID.
func (r *SQLPageRepository) DeletePage(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("page %s: %w", id, ErrNotFound)
	}
	return nil
}
