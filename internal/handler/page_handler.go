package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// PageHandler holds the dependencies for the page handlers.
type PageHandler struct {
	pages *service.PageService
	view  *view.View
	log   logger.Logger
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(ps *service.PageService, v *view.View, log logger.Logger) *PageHandler {
	return &PageHandler{
		pages: ps,
		view:  v,
		log:   log,
	}
}

// publicPageHandler renders a published builder page of the resolved
// parish. The parish home is the page with slug "home".
func (h *PageHandler) publicPageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		slug = "home"
	}

	html, err := h.pages.RenderPublicPage(r.Context(), parish.ID, slug)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
		}
		if errors.Is(err, content.ErrInvalidFormat) {
			// A corrupted blob must not take the whole site down.
			h.log.Error(err, "Page content failed to decode")
			return &middleware.AppError{Error: err, Message: "This page is temporarily unavailable", Code: http.StatusInternalServerError}
		}
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}

	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Content":  html,
	}
	if err := h.view.Render(w, r, "page.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render view", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminListPagesHandler shows the parish's pages, drafts included.
func (h *PageHandler) adminListPagesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	pages, err := h.pages.ListPages(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve pages", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Pages":    pages,
	}
	if err := h.view.Render(w, r, "admin_pages.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page list", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminCreatePageHandler creates an empty page and sends the editor to
// the builder for it.
func (h *PageHandler) adminCreatePageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	title := r.FormValue("title")
	slug := r.FormValue("slug")
	if title == "" || slug == "" {
		return &middleware.AppError{Error: errors.New("missing title or slug"), Message: "Title and slug are required", Code: http.StatusBadRequest}
	}

	page, err := h.pages.CreatePage(r.Context(), parish.ID, title, slug)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create page", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/pages/"+page.ID+"/builder", http.StatusFound)
	return nil
}

// parishPage loads the page addressed by {pageID} and confirms it
// belongs to the resolved parish. A page of another parish is reported
// as missing.
func (h *PageHandler) parishPage(r *http.Request) (*data.Page, *middleware.AppError) {
	parish := middleware.GetParish(r.Context())
	page, err := h.pages.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
		}
		return nil, &middleware.AppError{Error: err, Message: "Failed to load page", Code: http.StatusInternalServerError}
	}
	if page.ParishID != parish.ID {
		return nil, &middleware.AppError{Error: errors.New("page belongs to another parish"), Message: "Page not found", Code: http.StatusNotFound}
	}
	return page, nil
}

// adminBuilderHandler renders the page builder shell. The builder
// frontend loads and saves the content tree through the JSON API.
func (h *PageHandler) adminBuilderHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	page, appErr := h.parishPage(r)
	if appErr != nil {
		return appErr
	}

	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Page":     page,
	}
	if err := h.view.Render(w, r, "builder.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render builder", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminUpdatePageHandler updates a page's title, slug and published flag.
func (h *PageHandler) adminUpdatePageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	page, appErr := h.parishPage(r)
	if appErr != nil {
		return appErr
	}
	title := r.FormValue("title")
	slug := r.FormValue("slug")
	published := r.FormValue("published") == "on" || r.FormValue("published") == "true"

	if _, err := h.pages.UpdatePageMeta(r.Context(), page.ID, title, slug, published); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update page", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/pages", http.StatusFound)
	return nil
}

// adminDeletePageHandler removes a page.
func (h *PageHandler) adminDeletePageHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	page, appErr := h.parishPage(r)
	if appErr != nil {
		return appErr
	}
	if err := h.pages.DeletePage(r.Context(), page.ID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Page not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to delete page", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/pages", http.StatusFound)
	return nil
}
