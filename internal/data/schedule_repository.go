package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ScheduleRepository handles database operations for weekly service schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateSchedule inserts a new service schedule.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, s *ServiceSchedule) error {
	query := `INSERT INTO service_schedules (id, parish_id, service_type, day_of_week, time_of_day, recurring, notes)
	          VALUES (:id, :parish_id, :service_type, :day_of_week, :time_of_day, :recurring, :notes)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetScheduleByID retrieves a single schedule.
func (r *ScheduleRepository) GetScheduleByID(ctx context.Context, id string) (*ServiceSchedule, error) {
	var s ServiceSchedule
	query := `SELECT id, parish_id, service_type, day_of_week, time_of_day, recurring, notes, created_at, updated_at
	          FROM service_schedules WHERE id = ?`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &s, nil
}

// ListSchedules retrieves all schedules of a parish. Fixed-weekday
// schedules come first, ordered by weekday then time; special services
// without a weekday sort last.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, parishID string) ([]*ServiceSchedule, error) {
	var schedules []*ServiceSchedule
	query := `SELECT id, parish_id, service_type, day_of_week, time_of_day, recurring, notes, created_at, updated_at
	          FROM service_schedules WHERE parish_id = ?
	          ORDER BY day_of_week IS NULL, day_of_week, time_of_day`
	if err := r.db.SelectContext(ctx, &schedules, query, parishID); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule updates an existing schedule.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, s *ServiceSchedule) error {
	query := `UPDATE service_schedules SET service_type = :service_type, day_of_week = :day_of_week,
	          time_of_day = :time_of_day, recurring = :recurring, notes = :notes,
	          updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// DeleteSchedule removes a schedule by its ID.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM service_schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return nil
}
