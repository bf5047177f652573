//go:build unit

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/cache"
	"go-parish-platform/internal/config"
	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
	appmw "go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
)

// mockPageRepo is an in-memory PageRepository for exercising the
// builder API without a database.
type mockPageRepo struct {
	pages map[string]*data.Page
}

var _ service.PageRepository = (*mockPageRepo)(nil)

func (m *mockPageRepo) CreatePage(ctx context.Context, page *data.Page) error {
	m.pages[page.ID] = page
	return nil
}

func (m *mockPageRepo) GetPageBySlug(ctx context.Context, parishID, slug string) (*data.Page, error) {
	for _, p := range m.pages {
		if p.ParishID == parishID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockPageRepo) GetPageByID(ctx context.Context, id string) (*data.Page, error) {
	if p, ok := m.pages[id]; ok {
		return p, nil
	}
	return nil, data.ErrNotFound
}

func (m *mockPageRepo) ListPages(ctx context.Context, parishID string) ([]*data.Page, error) {
	var out []*data.Page
	for _, p := range m.pages {
		if p.ParishID == parishID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPageRepo) UpdatePage(ctx context.Context, page *data.Page) error {
	if _, ok := m.pages[page.ID]; !ok {
		return data.ErrNotFound
	}
	m.pages[page.ID] = page
	return nil
}

func (m *mockPageRepo) DeletePage(ctx context.Context, id string) error {
	if _, ok := m.pages[id]; !ok {
		return data.ErrNotFound
	}
	delete(m.pages, id)
	return nil
}

// setupBuilderTest wires the builder API onto a router over an
// in-memory repository holding one page with a section block.
func setupBuilderTest(t *testing.T) (*chi.Mux, *mockPageRepo, func()) {
	t.Helper()

	pc := content.NewPage()
	if err := pc.InsertNode("ROOT", content.Node{ID: "s1", Type: "section"}, 0); err != nil {
		t.Fatalf("building seed tree: %v", err)
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		t.Fatalf("serializing seed tree: %v", err)
	}

	repo := &mockPageRepo{pages: map[string]*data.Page{
		"p1": {ID: "p1", ParishID: "parish-1", Slug: "home", Content: blob},
		"p9": {ID: "p9", ParishID: "parish-2", Slug: "home", Content: blob},
	}}

	c, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	log := logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
	h := NewBuilderHandler(service.NewPageService(repo, c), log)
	resolver := &mockParishResolver{parishes: map[string]*data.Parish{
		"st-nicholas": {ID: "parish-1", Name: "St. Nicholas", Slug: "st-nicholas", Timezone: "UTC"},
		"st-andrew":   {ID: "parish-2", Name: "St. Andrew", Slug: "st-andrew", Timezone: "UTC"},
	}}

	r := chi.NewRouter()
	r.Route("/api/{parish}/pages/{pageID}", func(r chi.Router) {
		r.Use(appmw.ResolveParish(resolver))
		r.Get("/content", h.getContentHandler)
		r.Put("/content", h.putContentHandler)
		r.Post("/nodes", h.insertNodeHandler)
		r.Delete("/nodes/{nodeID}", h.removeNodeHandler)
		r.Post("/nodes/{nodeID}/move", h.moveNodeHandler)
		r.Patch("/nodes/{nodeID}/props", h.updatePropsHandler)
	})

	return r, repo, func() { c.Close() }
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestBuilderAPI_GetContent(t *testing.T) {
	r, _, teardown := setupBuilderTest(t)
	defer teardown()

	rr := doJSON(t, r, http.MethodGet, "/api/st-nicholas/pages/p1/content", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var tree map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &tree); err != nil {
		t.Fatalf("response is not a JSON object: %v", err)
	}
	if _, ok := tree["ROOT"]; !ok {
		t.Error("response missing the root node")
	}
	if _, ok := tree["s1"]; !ok {
		t.Error("response missing the seeded section")
	}

	rr = doJSON(t, r, http.MethodGet, "/api/st-nicholas/pages/nope/content", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown page: want 404, got %d", rr.Code)
	}
}

func TestBuilderAPI_InsertNode(t *testing.T) {
	r, repo, teardown := setupBuilderTest(t)
	defer teardown()

	payload := map[string]any{
		"parentId": "s1",
		"index":    0,
		"node": map[string]any{
			"id":    "t1",
			"type":  "text",
			"props": map[string]any{"body": "Glory to God"},
		},
	}
	rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	pc, err := content.Deserialize(repo.pages["p1"].Content)
	if err != nil {
		t.Fatalf("stored content does not deserialize: %v", err)
	}
	node := pc.Node("t1")
	if node == nil {
		t.Fatal("inserted node missing from stored tree")
	}
	if node.Parent != "s1" {
		t.Errorf("inserted node parent = %q, want s1", node.Parent)
	}

	t.Run("duplicate ID is unprocessable", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes", payload)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("want 422, got %d", rr.Code)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/st-nicholas/pages/p1/nodes", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("want 400, got %d", rr.Code)
		}
	})
}

func TestBuilderAPI_RemoveNode(t *testing.T) {
	r, repo, teardown := setupBuilderTest(t)
	defer teardown()

	t.Run("root cannot be removed", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodDelete, "/api/st-nicholas/pages/p1/nodes/ROOT", nil)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("want 422, got %d", rr.Code)
		}
	})

	t.Run("section removal persists", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodDelete, "/api/st-nicholas/pages/p1/nodes/s1", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
		}
		pc, err := content.Deserialize(repo.pages["p1"].Content)
		if err != nil {
			t.Fatalf("stored content does not deserialize: %v", err)
		}
		if pc.Node("s1") != nil {
			t.Error("removed node still present in stored tree")
		}
	})
}

func TestBuilderAPI_MoveAndProps(t *testing.T) {
	r, repo, teardown := setupBuilderTest(t)
	defer teardown()

	// Add a second section and a text block to move between them.
	doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes", map[string]any{
		"parentId": "ROOT", "index": 1,
		"node": map[string]any{"id": "s2", "type": "section"},
	})
	doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes", map[string]any{
		"parentId": "s1", "index": 0,
		"node": map[string]any{"id": "t1", "type": "text", "props": map[string]any{"body": "x"}},
	})

	t.Run("move to a new parent", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes/t1/move",
			map[string]any{"parentId": "s2", "index": 0})
		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
		}
		pc, _ := content.Deserialize(repo.pages["p1"].Content)
		if pc.Node("t1").Parent != "s2" {
			t.Errorf("moved node parent = %q, want s2", pc.Node("t1").Parent)
		}
	})

	t.Run("moving the root is unprocessable", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes/ROOT/move",
			map[string]any{"parentId": "s1", "index": 0})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("want 422, got %d", rr.Code)
		}
	})

	t.Run("cycle is unprocessable", func(t *testing.T) {
		doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes", map[string]any{
			"parentId": "s2", "index": 0,
			"node": map[string]any{"id": "inner", "type": "container"},
		})
		rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p1/nodes/s2/move",
			map[string]any{"parentId": "inner", "index": 0})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("want 422, got %d", rr.Code)
		}
	})

	t.Run("props merge and round-trip", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPatch, "/api/st-nicholas/pages/p1/nodes/t1/props",
			map[string]any{"body": "updated", "customKey": "kept"})
		if rr.Code != http.StatusOK {
			t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
		}
		pc, _ := content.Deserialize(repo.pages["p1"].Content)
		props := pc.Node("t1").Props
		if props["body"] != "updated" {
			t.Errorf("body = %v, want updated", props["body"])
		}
		if props["customKey"] != "kept" {
			t.Errorf("unknown key not preserved: %v", props["customKey"])
		}
	})
}

func TestBuilderAPI_PutContent(t *testing.T) {
	r, repo, teardown := setupBuilderTest(t)
	defer teardown()

	pc := content.NewPage()
	if err := pc.InsertNode("ROOT", content.Node{ID: "hero", Type: "section"}, 0); err != nil {
		t.Fatal(err)
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/st-nicholas/pages/p1/content", bytes.NewReader(blob))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d: %s", rr.Code, rr.Body.String())
	}

	stored, err := content.Deserialize(repo.pages["p1"].Content)
	if err != nil {
		t.Fatalf("stored content does not deserialize: %v", err)
	}
	if stored.Node("hero") == nil {
		t.Error("replacement tree not persisted")
	}
	if stored.Node("s1") != nil {
		t.Error("old tree still present after replacement")
	}
}

func TestBuilderAPI_TenantIsolation(t *testing.T) {
	r, repo, teardown := setupBuilderTest(t)
	defer teardown()

	// p9 belongs to St. Andrew; addressing it through St. Nicholas must
	// behave exactly like a missing page.
	t.Run("foreign page is not readable", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/st-nicholas/pages/p9/content", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("want 404, got %d", rr.Code)
		}
	})

	t.Run("foreign page is not mutable", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/api/st-nicholas/pages/p9/nodes", map[string]any{
			"parentId": "ROOT", "index": 0,
			"node": map[string]any{"id": "intruder", "type": "text"},
		})
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
		pc, err := content.Deserialize(repo.pages["p9"].Content)
		if err != nil {
			t.Fatalf("stored content does not deserialize: %v", err)
		}
		if pc.Node("intruder") != nil {
			t.Error("rejected mutation reached the stored tree")
		}
	})

	t.Run("foreign page is not replaceable", func(t *testing.T) {
		before := append([]byte(nil), repo.pages["p9"].Content...)
		req := httptest.NewRequest(http.MethodPut, "/api/st-nicholas/pages/p9/content", bytes.NewBufferString(`{"ROOT":{"id":"ROOT","type":"root"}}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", rr.Code)
		}
		if !bytes.Equal(before, repo.pages["p9"].Content) {
			t.Error("rejected replacement changed the stored content")
		}
	})

	t.Run("own page still works through its own parish", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/api/st-andrew/pages/p9/content", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("want 200, got %d", rr.Code)
		}
	})
}
