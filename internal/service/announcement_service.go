package service

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
)

// AnnouncementRepository defines the database operations the announcement service needs.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *data.Announcement) error
	GetAnnouncementByID(ctx context.Context, id string) (*data.Announcement, error)
	ListAnnouncements(ctx context.Context, parishID string) ([]*data.Announcement, error)
	ListPublishedAnnouncements(ctx context.Context, parishID string, now time.Time) ([]*data.Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *data.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error
}

// RenderedAnnouncement pairs an announcement record with its body
// rendered to safe HTML for the public site.
type RenderedAnnouncement struct {
	*data.Announcement
	BodyHTML template.HTML
}

// AnnouncementService provides business logic for parish announcements.
// Bodies are stored as markdown and rendered through the same sanitizing
// pipeline page text blocks use.
type AnnouncementService struct {
	repo     AnnouncementRepository
	renderer *content.Renderer
}

// NewAnnouncementService creates a new AnnouncementService.
func NewAnnouncementService(repo AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{
		repo:     repo,
		renderer: content.NewRenderer(),
	}
}

// CreateAnnouncement stores a new announcement. A nil publishAt means
// the announcement is visible as soon as it is published.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, parishID, title, body string, published bool, publishAt *time.Time) (*data.Announcement, error) {
	if title == "" {
		return nil, fmt.Errorf("announcement title is required")
	}
	a := &data.Announcement{
		ID:        uuid.NewString(),
		ParishID:  parishID,
		Title:     title,
		Body:      body,
		Published: published,
		PublishAt: publishAt,
	}
	if err := s.repo.CreateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnnouncement retrieves an announcement by ID.
func (s *AnnouncementService) GetAnnouncement(ctx context.Context, id string) (*data.Announcement, error) {
	return s.repo.GetAnnouncementByID(ctx, id)
}

// ListAnnouncements retrieves all announcements of a parish, drafts
// included, for the admin screens.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, parishID string) ([]*data.Announcement, error) {
	return s.repo.ListAnnouncements(ctx, parishID)
}

// PublicAnnouncements returns the announcements visible on the public
// site right now, with bodies rendered to sanitized HTML.
func (s *AnnouncementService) PublicAnnouncements(ctx context.Context, parishID string, now time.Time) ([]RenderedAnnouncement, error) {
	rows, err := s.repo.ListPublishedAnnouncements(ctx, parishID, now)
	if err != nil {
		return nil, err
	}
	out := make([]RenderedAnnouncement, 0, len(rows))
	for _, a := range rows {
		html, err := s.renderer.RenderMarkdown(a.Body)
		if err != nil {
			return nil, fmt.Errorf("announcement %q: %w", a.ID, err)
		}
		out = append(out, RenderedAnnouncement{Announcement: a, BodyHTML: html})
	}
	return out, nil
}

// UpdateAnnouncement applies changes to an existing announcement.
func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, id, title, body string, published bool, publishAt *time.Time) (*data.Announcement, error) {
	if title == "" {
		return nil, fmt.Errorf("announcement title is required")
	}
	a, err := s.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = title
	a.Body = body
	a.Published = published
	a.PublishAt = publishAt
	a.UpdatedAt = time.Now()
	if err := s.repo.UpdateAnnouncement(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement.
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.repo.DeleteAnnouncement(ctx, id)
}
