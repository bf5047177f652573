//go:build unit

package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"go-parish-platform/internal/config"
	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/storage"
)

func setupMediaTest(t *testing.T) (*chi.Mux, *storage.MediaStore) {
	t.Helper()
	ms := storage.NewWithFS(memfs.New(), "/media")
	log := logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
	h := NewMediaHandler(ms, log)

	r := chi.NewRouter()
	r.Get("/media/{parishID}/{file}", h.serveHandler)
	return r, ms
}

func TestMediaHandler_ServeStoredFile(t *testing.T) {
	r, ms := setupMediaTest(t)

	storagePath, err := ms.Save("parish-1", ".mp3", strings.NewReader("fake audio bytes"))
	if err != nil {
		t.Fatalf("saving fixture: %v", err)
	}

	req := httptest.NewRequest("GET", "/media/"+storagePath, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rr.Code)
	}
	if rr.Body.String() != "fake audio bytes" {
		t.Error("served body does not match stored content")
	}
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q, want immutable", cc)
	}
}

func TestMediaHandler_MissingFileIsNotFound(t *testing.T) {
	r, _ := setupMediaTest(t)

	req := httptest.NewRequest("GET", "/media/parish-1/nope.mp3", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("want 404, got %d", rr.Code)
	}
}
