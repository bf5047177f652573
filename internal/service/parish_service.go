package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"go-parish-platform/internal/data"
)

// ParishRepository defines the database operations the parish service needs.
type ParishRepository interface {
	CreateParish(ctx context.Context, p *data.Parish) error
	GetParishBySlug(ctx context.Context, slug string) (*data.Parish, error)
	GetParishByID(ctx context.Context, id string) (*data.Parish, error)
	ListParishes(ctx context.Context) ([]*data.Parish, error)
	UpdateParish(ctx context.Context, p *data.Parish) error
}

// slugPattern is what the router will accept as a parish URL segment.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ParishService provides business logic for managing the platform's tenants.
type ParishService struct {
	repo ParishRepository
}

// NewParishService creates a new ParishService.
func NewParishService(repo ParishRepository) *ParishService {
	return &ParishService{repo: repo}
}

// CreateParish registers a new parish tenant. The slug becomes part of
// every public URL and must be lowercase hyphenated.
func (s *ParishService) CreateParish(ctx context.Context, name, slug, city, timezone string) (*data.Parish, error) {
	if name == "" {
		return nil, fmt.Errorf("parish name is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("invalid parish slug %q", slug)
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	p := &data.Parish{
		ID:       uuid.NewString(),
		Name:     name,
		Slug:     slug,
		City:     city,
		Timezone: timezone,
	}
	if err := s.repo.CreateParish(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetParish retrieves a parish by ID.
func (s *ParishService) GetParish(ctx context.Context, id string) (*data.Parish, error) {
	return s.repo.GetParishByID(ctx, id)
}

// GetParishBySlug retrieves a parish by its URL slug.
func (s *ParishService) GetParishBySlug(ctx context.Context, slug string) (*data.Parish, error) {
	return s.repo.GetParishBySlug(ctx, slug)
}

// ListParishes retrieves every parish on the platform.
func (s *ParishService) ListParishes(ctx context.Context) ([]*data.Parish, error) {
	return s.repo.ListParishes(ctx)
}

// UpdateParish applies changes to a parish's details. The slug is
// immutable once created so published URLs never break.
func (s *ParishService) UpdateParish(ctx context.Context, id, name, city, timezone string) (*data.Parish, error) {
	if name == "" {
		return nil, fmt.Errorf("parish name is required")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	p, err := s.repo.GetParishByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.City = city
	p.Timezone = timezone
	p.UpdatedAt = time.Now()
	if err := s.repo.UpdateParish(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Location resolves a parish's configured timezone, falling back to UTC
// when the stored value no longer loads.
func (s *ParishService) Location(p *data.Parish) *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
