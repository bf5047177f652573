//go:build unit

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/cache"
	"go-parish-platform/internal/config"
	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
	appmw "go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
	"go-parish-platform/web"
)

// mockParishResolver resolves parishes from a fixed set keyed by slug.
type mockParishResolver struct {
	parishes map[string]*data.Parish
}

var _ appmw.ParishResolver = (*mockParishResolver)(nil)

func (m *mockParishResolver) GetParishBySlug(ctx context.Context, slug string) (*data.Parish, error) {
	if p, ok := m.parishes[slug]; ok {
		return p, nil
	}
	return nil, data.ErrNotFound
}

// setupPageTest wires the public page routes over an in-memory
// repository holding one published and one draft page.
func setupPageTest(t *testing.T) (*chi.Mux, func()) {
	t.Helper()

	pc := content.NewPage()
	if err := pc.InsertNode("ROOT", content.Node{ID: "s1", Type: "section"}, 0); err != nil {
		t.Fatal(err)
	}
	if err := pc.InsertNode("s1", content.Node{ID: "t1", Type: "text", Props: map[string]any{"body": "Welcome to our parish"}}, 0); err != nil {
		t.Fatal(err)
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		t.Fatal(err)
	}

	repo := &mockPageRepo{pages: map[string]*data.Page{
		"p1": {ID: "p1", ParishID: "parish-1", Slug: "home", Content: blob, Published: true},
		"p2": {ID: "p2", ParishID: "parish-1", Slug: "history", Content: blob, Published: false},
	}}

	c, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	log := logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
	v, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	h := NewPageHandler(service.NewPageService(repo, c), v, log)
	resolver := &mockParishResolver{parishes: map[string]*data.Parish{
		"st-nicholas": {ID: "parish-1", Name: "St. Nicholas", Slug: "st-nicholas", Timezone: "UTC"},
	}}
	errMW := appmw.Error(log, v)

	r := chi.NewRouter()
	r.Route("/p/{parish}", func(r chi.Router) {
		r.Use(appmw.ResolveParish(resolver))
		r.Method(http.MethodGet, "/", errMW(h.publicPageHandler))
		r.Method(http.MethodGet, "/{slug}", errMW(h.publicPageHandler))
	})

	return r, func() { c.Close() }
}

func TestPublicPageHandler(t *testing.T) {
	r, teardown := setupPageTest(t)
	defer teardown()

	t.Run("published page renders", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/p/st-nicholas/home", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Welcome to our parish") {
			t.Error("rendered page missing text block content")
		}
		if !strings.Contains(rr.Body.String(), "St. Nicholas") {
			t.Error("rendered page missing parish name")
		}
	})

	t.Run("home slug is the default", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/p/st-nicholas", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Welcome to our parish") {
			t.Error("parish root did not serve the home page")
		}
	})

	t.Run("draft page is not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/p/st-nicholas/history", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("want 404, got %d", rr.Code)
		}
	})

	t.Run("unknown parish is not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/p/st-elsewhere/home", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("want 404, got %d", rr.Code)
		}
	})
}

func TestAdminPageHandlers_TenantIsolation(t *testing.T) {
	repo := &mockPageRepo{pages: map[string]*data.Page{
		"p1": {ID: "p1", ParishID: "parish-1", Slug: "home", Title: "Home"},
		"p9": {ID: "p9", ParishID: "parish-2", Slug: "home", Title: "Home"},
	}}
	c, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}
	defer c.Close()

	log := logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
	v, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}
	h := NewPageHandler(service.NewPageService(repo, c), v, log)
	resolver := &mockParishResolver{parishes: map[string]*data.Parish{
		"st-nicholas": {ID: "parish-1", Name: "St. Nicholas", Slug: "st-nicholas", Timezone: "UTC"},
		"st-andrew":   {ID: "parish-2", Name: "St. Andrew", Slug: "st-andrew", Timezone: "UTC"},
	}}
	errMW := appmw.Error(log, v)

	r := chi.NewRouter()
	r.Route("/admin/{parish}", func(r chi.Router) {
		r.Use(appmw.ResolveParish(resolver))
		r.Method(http.MethodPost, "/pages/{pageID}", errMW(h.adminUpdatePageHandler))
		r.Method(http.MethodPost, "/pages/{pageID}/delete", errMW(h.adminDeletePageHandler))
	})

	t.Run("updating a foreign page is not found", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/st-nicholas/pages/p9", strings.NewReader("title=Hijacked&slug=home"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("want 404, got %d", rr.Code)
		}
		if repo.pages["p9"].Title != "Home" {
			t.Errorf("foreign page title changed to %q", repo.pages["p9"].Title)
		}
	})

	t.Run("deleting a foreign page is not found", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/st-nicholas/pages/p9/delete", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("want 404, got %d", rr.Code)
		}
		if _, ok := repo.pages["p9"]; !ok {
			t.Error("foreign page was deleted")
		}
	})

	t.Run("own page can still be deleted", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/st-nicholas/pages/p1/delete", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Errorf("want 302, got %d", rr.Code)
		}
		if _, ok := repo.pages["p1"]; ok {
			t.Error("own page still present after delete")
		}
	})
}
