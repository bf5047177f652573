package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const eventColumns = `id, parish_id, title, description, category, service_type, start_at,
	end_at, location, is_feast, feast_name, status, color, recurrence_rule, created_at, updated_at`

// EventRepository handles database operations for calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateEvent inserts a new event.
func (r *EventRepository) CreateEvent(ctx context.Context, ev *Event) error {
	query := `INSERT INTO events (id, parish_id, title, description, category, service_type,
	          start_at, end_at, location, is_feast, feast_name, status, color, recurrence_rule)
	          VALUES (:id, :parish_id, :title, :description, :category, :service_type,
	          :start_at, :end_at, :location, :is_feast, :feast_name, :status, :color, :recurrence_rule)`
	if _, err := r.db.NamedExecContext(ctx, query, ev); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEventByID retrieves a single event.
func (r *EventRepository) GetEventByID(ctx context.Context, id string) (*Event, error) {
	var ev Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	if err := r.db.GetContext(ctx, &ev, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &ev, nil
}

// ListEvents retrieves all events of a parish ordered by start time.
func (r *EventRepository) ListEvents(ctx context.Context, parishID string) ([]*Event, error) {
	var events []*Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE parish_id = ? ORDER BY start_at`
	if err := r.db.SelectContext(ctx, &events, query, parishID); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListEventsBetween retrieves a parish's events whose start time falls in
// [start, end]. The window filter is repeated by the view engine; doing
// it here as well keeps the result set small for busy parishes.
func (r *EventRepository) ListEventsBetween(ctx context.Context, parishID string, start, end time.Time) ([]*Event, error) {
	var events []*Event
	query := `SELECT ` + eventColumns + ` FROM events
	          WHERE parish_id = ? AND start_at >= ? AND start_at <= ? ORDER BY start_at`
	if err := r.db.SelectContext(ctx, &events, query, parishID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list events in range: %w", err)
	}
	return events, nil
}

// UpdateEvent updates an existing event.
func (r *EventRepository) UpdateEvent(ctx context.Context, ev *Event) error {
	query := `UPDATE events SET title = :title, description = :description, category = :category,
	          service_type = :service_type, start_at = :start_at, end_at = :end_at,
	          location = :location, is_feast = :is_feast, feast_name = :feast_name,
	          status = :status, color = :color, recurrence_rule = :recurrence_rule,
	          updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, ev)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", ev.ID, ErrNotFound)
	}
	return nil
}

// DeleteEvent removes an event by its ID.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}
