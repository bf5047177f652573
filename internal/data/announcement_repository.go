package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// AnnouncementRepository handles database operations for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// CreateAnnouncement inserts a new announcement.
func (r *AnnouncementRepository) CreateAnnouncement(ctx context.Context, a *Announcement) error {
	query := `INSERT INTO announcements (id, parish_id, title, body, published, publish_at)
	          VALUES (:id, :parish_id, :title, :body, :published, :publish_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// GetAnnouncementByID retrieves a single announcement.
func (r *AnnouncementRepository) GetAnnouncementByID(ctx context.Context, id string) (*Announcement, error) {
	var a Announcement
	query := `SELECT id, parish_id, title, body, published, publish_at, created_at, updated_at
	          FROM announcements WHERE id = ?`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("announcement %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

// ListAnnouncements retrieves all announcements of a parish, newest first.
func (r *AnnouncementRepository) ListAnnouncements(ctx context.Context, parishID string) ([]*Announcement, error) {
	var items []*Announcement
	query := `SELECT id, parish_id, title, body, published, publish_at, created_at, updated_at
	          FROM announcements WHERE parish_id = ? ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, parishID); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return items, nil
}

// ListPublishedAnnouncements retrieves announcements visible on the
// public site: published, with no publish date or one at/before now.
func (r *AnnouncementRepository) ListPublishedAnnouncements(ctx context.Context, parishID string, now time.Time) ([]*Announcement, error) {
	var items []*Announcement
	query := `SELECT id, parish_id, title, body, published, publish_at, created_at, updated_at
	          FROM announcements
	          WHERE parish_id = ? AND published = TRUE AND (publish_at IS NULL OR publish_at <= ?)
	          ORDER BY COALESCE(publish_at, created_at) DESC`
	if err := r.db.SelectContext(ctx, &items, query, parishID, now); err != nil {
		return nil, fmt.Errorf("failed to list published announcements: %w", err)
	}
	return items, nil
}

// UpdateAnnouncement updates an existing announcement.
func (r *AnnouncementRepository) UpdateAnnouncement(ctx context.Context, a *Announcement) error {
	query := `UPDATE announcements SET title = :title, body = :body, published = :published,
	          publish_at = :publish_at, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("announcement %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

// DeleteAnnouncement removes an announcement by its ID.
func (r *AnnouncementRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("announcement %s: %w", id, ErrNotFound)
	}
	return nil
}
