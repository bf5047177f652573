package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/data"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// maxAudioBytes bounds an uploaded sermon recording.
const maxAudioBytes = 200 << 20

// SermonHandler holds the dependencies for the sermon archive handlers.
type SermonHandler struct {
	sermons  *service.SermonService
	parishes *service.ParishService
	view     *view.View
}

// NewSermonHandler creates a new SermonHandler.
func NewSermonHandler(ss *service.SermonService, ps *service.ParishService, v *view.View) *SermonHandler {
	return &SermonHandler{sermons: ss, parishes: ps, view: v}
}

// publicSermonsHandler renders the sermon archive.
func (h *SermonHandler) publicSermonsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	items, err := h.sermons.PublicSermons(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve sermons", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Sermons":  items,
	}
	if err := h.view.Render(w, r, "sermons.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render sermons", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminListSermonsHandler shows the parish's sermons.
func (h *SermonHandler) adminListSermonsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	items, err := h.sermons.ListSermons(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve sermons", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Sermons":  items,
	}
	if err := h.view.Render(w, r, "admin_sermons.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render sermon list", Code: http.StatusInternalServerError}
	}
	return nil
}

// audioUpload pulls the optional audio file out of a multipart form.
// The caller owns closing the returned file.
func audioUpload(r *http.Request) (multipart.File, string, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".mp3", ".m4a", ".ogg", ".wav":
		return file, ext, nil
	default:
		file.Close()
		return nil, "", errors.New("unsupported audio format " + ext)
	}
}

// adminCreateSermonHandler creates a sermon, storing uploaded audio.
func (h *SermonHandler) adminCreateSermonHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return &middleware.AppError{Error: err, Message: "Upload too large or malformed", Code: http.StatusBadRequest}
	}

	preachedOn, err := time.ParseInLocation("2006-01-02", r.FormValue("preached_on"), h.parishes.Location(parish))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid sermon date", Code: http.StatusBadRequest}
	}

	file, ext, err := audioUpload(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid audio upload", Code: http.StatusBadRequest}
	}
	var audio io.Reader
	if file != nil {
		defer file.Close()
		audio = file
	}

	_, err = h.sermons.CreateSermon(r.Context(), parish.ID,
		r.FormValue("title"), r.FormValue("speaker"), r.FormValue("notes"),
		preachedOn, audio, ext)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create sermon", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/sermons", http.StatusFound)
	return nil
}

// adminUpdateSermonHandler updates a sermon, optionally replacing audio.
func (h *SermonHandler) adminUpdateSermonHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		return &middleware.AppError{Error: err, Message: "Upload too large or malformed", Code: http.StatusBadRequest}
	}

	preachedOn, err := time.ParseInLocation("2006-01-02", r.FormValue("preached_on"), h.parishes.Location(parish))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid sermon date", Code: http.StatusBadRequest}
	}

	file, ext, err := audioUpload(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid audio upload", Code: http.StatusBadRequest}
	}
	var audio io.Reader
	if file != nil {
		defer file.Close()
		audio = file
	}

	_, err = h.sermons.UpdateSermon(r.Context(), chi.URLParam(r, "sermonID"),
		r.FormValue("title"), r.FormValue("speaker"), r.FormValue("notes"),
		preachedOn, audio, ext)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Sermon not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update sermon", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/sermons", http.StatusFound)
	return nil
}

// adminDeleteSermonHandler removes a sermon and its audio.
func (h *SermonHandler) adminDeleteSermonHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := h.sermons.DeleteSermon(r.Context(), chi.URLParam(r, "sermonID")); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete sermon", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/sermons", http.StatusFound)
	return nil
}
