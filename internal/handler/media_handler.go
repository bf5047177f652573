package handler

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/storage"
)

// MediaHandler serves uploaded files (sermon audio, page images) out of
// the media store. Media is content addressed, so responses are marked
// immutable for caches.
type MediaHandler struct {
	media *storage.MediaStore
	log   logger.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(ms *storage.MediaStore, log logger.Logger) *MediaHandler {
	return &MediaHandler{media: ms, log: log}
}

// serveHandler streams one stored file. The URL mirrors the storage
// layout: /media/{parishID}/{file}.
func (h *MediaHandler) serveHandler(w http.ResponseWriter, r *http.Request) {
	storagePath := path.Join(chi.URLParam(r, "parishID"), chi.URLParam(r, "file"))

	f, err := h.media.Open(storagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.log.Error(err, "Failed to open media file")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(path.Ext(storagePath)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, f); err != nil {
		h.log.Error(err, "Failed to stream media file")
	}
}
