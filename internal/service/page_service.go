package service

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"go-parish-platform/internal/cache"
	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
)

// renderedPageTTL bounds how stale a cached public page can get if an
// invalidation is ever missed.
const renderedPageTTL = 10 * time.Minute

// PageRepository defines the interface for database operations on pages.
type PageRepository interface {
	CreatePage(ctx context.Context, page *data.Page) error
	GetPageBySlug(ctx context.Context, parishID, slug string) (*data.Page, error)
	GetPageByID(ctx context.Context, id string) (*data.Page, error)
	ListPages(ctx context.Context, parishID string) ([]*data.Page, error)
	UpdatePage(ctx context.Context, page *data.Page) error
	DeletePage(ctx context.Context, id string) error
}

// PageService provides business logic for builder-managed pages: CRUD on
// the page records, decoding and validating the content tree, and
// rendering (with caching) for the public site.
type PageService struct {
	repo     PageRepository
	cache    *cache.Cache
	renderer *content.Renderer
}

// NewPageService creates a new PageService with the given repository.
func NewPageService(repo PageRepository, c *cache.Cache) *PageService {
	return &PageService{
		repo:     repo,
		cache:    c,
		renderer: content.NewRenderer(),
	}
}

// CreatePage creates a new, empty page for a parish. The content starts
// as a bare root canvas so the builder has something to hang blocks on.
func (s *PageService) CreatePage(ctx context.Context, parishID, title, slug string) (*data.Page, error) {
	blob, err := content.Serialize(content.NewPage())
	if err != nil {
		return nil, fmt.Errorf("initializing page content: %w", err)
	}
	page := &data.Page{
		ID:       uuid.NewString(),
		ParishID: parishID,
		Title:    title,
		Slug:     slug,
		Content:  blob,
	}
	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetPage retrieves a page record by ID.
func (s *PageService) GetPage(ctx context.Context, id string) (*data.Page, error) {
	return s.repo.GetPageByID(ctx, id)
}

// ListPages retrieves all pages of a parish.
func (s *PageService) ListPages(ctx context.Context, parishID string) ([]*data.Page, error) {
	return s.repo.ListPages(ctx, parishID)
}

// GetContent decodes a page's stored blob into the builder's tree form.
// Legacy double-encoded blobs are handled transparently; a page saved
// before it was ever edited comes back as the empty sentinel.
func (s *PageService) GetContent(ctx context.Context, pageID string) (*content.PageContent, error) {
	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return content.Deserialize(page.Content)
}

// SaveContent validates and persists a page's content blob as submitted
// by the builder. The blob is decoded, its structural invariants
// checked, and the normalized serialization stored — so a legacy
// double-encoded blob is healed on its next save. Cached renders of the
// parish are dropped.
func (s *PageService) SaveContent(ctx context.Context, pageID string, blob []byte) error {
	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		return err
	}

	pc, err := content.Deserialize(blob)
	if err != nil {
		return err
	}
	if err := pc.Validate(); err != nil {
		return err
	}
	normalized, err := content.Serialize(pc)
	if err != nil {
		return err
	}

	page.Content = normalized
	page.UpdatedAt = time.Now()
	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return err
	}
	return s.cache.DeletePrefix(page.ParishID + ":page:")
}

// MutateContent loads a page's tree, applies one mutation, and persists
// the result. The mutation is atomic from the caller's view: a rejected
// operation leaves the stored content untouched.
func (s *PageService) MutateContent(ctx context.Context, pageID string, mutate func(*content.PageContent) error) (*content.PageContent, error) {
	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	pc, err := content.Deserialize(page.Content)
	if err != nil {
		return nil, err
	}
	if err := mutate(pc); err != nil {
		return nil, err
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		return nil, err
	}
	page.Content = blob
	page.UpdatedAt = time.Now()
	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	if err := s.cache.DeletePrefix(page.ParishID + ":page:"); err != nil {
		return nil, err
	}
	return pc, nil
}

// UpdatePageMeta updates a page's title, slug and published flag.
func (s *PageService) UpdatePageMeta(ctx context.Context, id, title, slug string, published bool) (*data.Page, error) {
	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Title = title
	page.Slug = slug
	page.Published = published
	page.UpdatedAt = time.Now()
	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	if err := s.cache.DeletePrefix(page.ParishID + ":page:"); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage removes a page and its cached renders.
func (s *PageService) DeletePage(ctx context.Context, id string) error {
	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePage(ctx, id); err != nil {
		return err
	}
	return s.cache.DeletePrefix(page.ParishID + ":page:")
}

// RenderPublicPage renders a published page of a parish to HTML, serving
// from cache when possible. Content that fails to decode is reported as
// content.ErrInvalidFormat so the handler can show the dedicated
// "invalid content" state instead of a generic error page.
func (s *PageService) RenderPublicPage(ctx context.Context, parishID, slug string) (template.HTML, error) {
	key := cache.Key(parishID, "page", slug)
	if cached, err := s.cache.Get(key); err == nil && cached != nil {
		return template.HTML(cached), nil
	}

	page, err := s.repo.GetPageBySlug(ctx, parishID, slug)
	if err != nil {
		return "", err
	}
	if !page.Published {
		return "", fmt.Errorf("page %q: %w", slug, data.ErrNotFound)
	}

	pc, err := content.Deserialize(page.Content)
	if err != nil {
		return "", err
	}
	html, err := s.renderer.Render(pc)
	if err != nil {
		return "", err
	}

	// Best effort: a failed cache write must not fail the render.
	_ = s.cache.Set(key, []byte(html), renderedPageTTL)
	return html, nil
}
