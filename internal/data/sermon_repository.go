package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SermonRepository handles database operations for sermons.
type SermonRepository struct {
	db *sqlx.DB
}

// NewSermonRepository creates a new SermonRepository.
func NewSermonRepository(db *sqlx.DB) *SermonRepository {
	return &SermonRepository{db: db}
}

// CreateSermon inserts a new sermon.
func (r *SermonRepository) CreateSermon(ctx context.Context, s *Sermon) error {
	query := `INSERT INTO sermons (id, parish_id, title, speaker, notes, audio_path, preached_on)
	          VALUES (:id, :parish_id, :title, :speaker, :notes, :audio_path, :preached_on)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to create sermon: %w", err)
	}
	return nil
}

// GetSermonByID retrieves a single sermon.
func (r *SermonRepository) GetSermonByID(ctx context.Context, id string) (*Sermon, error) {
	var s Sermon
	query := `SELECT id, parish_id, title, speaker, notes, audio_path, preached_on, created_at
	          FROM sermons WHERE id = ?`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sermon %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sermon: %w", err)
	}
	return &s, nil
}

// ListSermons retrieves all sermons of a parish, most recent first.
func (r *SermonRepository) ListSermons(ctx context.Context, parishID string) ([]*Sermon, error) {
	var sermons []*Sermon
	query := `SELECT id, parish_id, title, speaker, notes, audio_path, preached_on, created_at
	          FROM sermons WHERE parish_id = ? ORDER BY preached_on DESC`
	if err := r.db.SelectContext(ctx, &sermons, query, parishID); err != nil {
		return nil, fmt.Errorf("failed to list sermons: %w", err)
	}
	return sermons, nil
}

// UpdateSermon updates an existing sermon.
func (r *SermonRepository) UpdateSermon(ctx context.Context, s *Sermon) error {
	query := `UPDATE sermons SET title = :title, speaker = :speaker, notes = :notes,
	          audio_path = :audio_path, preached_on = :preached_on WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update sermon: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sermon %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// DeleteSermon removes a sermon by its ID.
func (r *SermonRepository) DeleteSermon(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sermons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sermon: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sermon %s: %w", id, ErrNotFound)
	}
	return nil
}
