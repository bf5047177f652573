package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/data"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// ParishHandler holds the dependencies for platform-level parish
// management. These routes require the admin role, not just editor.
type ParishHandler struct {
	parishes *service.ParishService
	view     *view.View
}

// NewParishHandler creates a new ParishHandler.
func NewParishHandler(ps *service.ParishService, v *view.View) *ParishHandler {
	return &ParishHandler{parishes: ps, view: v}
}

// homeHandler renders the platform landing page with a directory of
// parishes, each linking to its public site.
func (h *ParishHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parishes, err := h.parishes.ListParishes(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve parishes", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Parishes": parishes,
	}
	if err := h.view.Render(w, r, "welcome.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render welcome page", Code: http.StatusInternalServerError}
	}
	return nil
}

// listParishesHandler shows every parish on the platform.
func (h *ParishHandler) listParishesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parishes, err := h.parishes.ListParishes(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve parishes", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Parishes": parishes,
	}
	if err := h.view.Render(w, r, "admin_parishes.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render parish list", Code: http.StatusInternalServerError}
	}
	return nil
}

// createParishHandler registers a new parish tenant.
func (h *ParishHandler) createParishHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, err := h.parishes.CreateParish(r.Context(),
		r.FormValue("name"), r.FormValue("slug"),
		r.FormValue("city"), r.FormValue("timezone"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create parish", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/parishes", http.StatusFound)
	return nil
}

// updateParishHandler changes a parish's details. The slug stays fixed.
func (h *ParishHandler) updateParishHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	_, err := h.parishes.UpdateParish(r.Context(), chi.URLParam(r, "parishID"),
		r.FormValue("name"), r.FormValue("city"), r.FormValue("timezone"))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Parish not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update parish", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/parishes", http.StatusFound)
	return nil
}
