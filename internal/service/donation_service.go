package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-parish-platform/internal/data"
)

// DonationRepository defines the database operations the donation service needs.
type DonationRepository interface {
	CreateDonation(ctx context.Context, d *data.Donation) error
	GetDonationByID(ctx context.Context, id string) (*data.Donation, error)
	ListDonations(ctx context.Context, parishID string, from, to time.Time) ([]*data.Donation, error)
	DeleteDonation(ctx context.Context, id string) error
}

// DonationSummary aggregates a period's donation records per currency.
type DonationSummary struct {
	From       time.Time
	To         time.Time
	Count      int
	TotalCents map[string]int64
}

// DonationService provides business logic for donation record keeping.
// No payments are processed here; parish staff enter gifts they have
// already received.
type DonationService struct {
	repo DonationRepository
}

// NewDonationService creates a new DonationService.
func NewDonationService(repo DonationRepository) *DonationService {
	return &DonationService{repo: repo}
}

// RecordDonation stores a donation entry.
func (s *DonationService) RecordDonation(ctx context.Context, parishID, donorName string, amountCents int64, currency, purpose, note string, receivedOn time.Time) (*data.Donation, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("donation amount must be positive, got %d", amountCents)
	}
	if currency == "" {
		currency = "USD"
	}
	d := &data.Donation{
		ID:          uuid.NewString(),
		ParishID:    parishID,
		DonorName:   donorName,
		AmountCents: amountCents,
		Currency:    currency,
		Purpose:     purpose,
		Note:        note,
		ReceivedOn:  receivedOn,
	}
	if err := s.repo.CreateDonation(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDonation retrieves a donation by ID.
func (s *DonationService) GetDonation(ctx context.Context, id string) (*data.Donation, error) {
	return s.repo.GetDonationByID(ctx, id)
}

// ListDonations retrieves a parish's donations received in [from, to].
func (s *DonationService) ListDonations(ctx context.Context, parishID string, from, to time.Time) ([]*data.Donation, error) {
	return s.repo.ListDonations(ctx, parishID, from, to)
}

// Summarize totals a period's donations, keyed by currency so mixed
// currency records never get added together.
func (s *DonationService) Summarize(ctx context.Context, parishID string, from, to time.Time) (*DonationSummary, error) {
	rows, err := s.repo.ListDonations(ctx, parishID, from, to)
	if err != nil {
		return nil, err
	}
	sum := &DonationSummary{
		From:       from,
		To:         to,
		Count:      len(rows),
		TotalCents: make(map[string]int64),
	}
	for _, d := range rows {
		sum.TotalCents[d.Currency] += d.AmountCents
	}
	return sum, nil
}

// DeleteDonation removes a donation entry.
func (s *DonationService) DeleteDonation(ctx context.Context, id string) error {
	return s.repo.DeleteDonation(ctx, id)
}
