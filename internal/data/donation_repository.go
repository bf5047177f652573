package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DonationRepository handles database operations for donation records.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository creates a new DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// CreateDonation inserts a new donation record.
func (r *DonationRepository) CreateDonation(ctx context.Context, d *Donation) error {
	query := `INSERT INTO donations (id, parish_id, donor_name, amount_cents, currency, purpose, note, received_on)
	          VALUES (:id, :parish_id, :donor_name, :amount_cents, :currency, :purpose, :note, :received_on)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

// GetDonationByID retrieves a single donation record.
func (r *DonationRepository) GetDonationByID(ctx context.Context, id string) (*Donation, error) {
	var d Donation
	query := `SELECT id, parish_id, donor_name, amount_cents, currency, purpose, note, received_on, created_at
	          FROM donations WHERE id = ?`
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("donation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return &d, nil
}

// ListDonations retrieves a parish's donation records received within
// [from, to], most recent first.
func (r *DonationRepository) ListDonations(ctx context.Context, parishID string, from, to time.Time) ([]*Donation, error) {
	var donations []*Donation
	query := `SELECT id, parish_id, donor_name, amount_cents, currency, purpose, note, received_on, created_at
	          FROM donations WHERE parish_id = ? AND received_on >= ? AND received_on <= ?
	          ORDER BY received_on DESC`
	if err := r.db.SelectContext(ctx, &donations, query, parishID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// DeleteDonation removes a donation record by its ID.
func (r *DonationRepository) DeleteDonation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("donation %s: %w", id, ErrNotFound)
	}
	return nil
}
