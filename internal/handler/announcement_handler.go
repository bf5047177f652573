package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/data"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// AnnouncementHandler holds the dependencies for the announcement handlers.
type AnnouncementHandler struct {
	announcements *service.AnnouncementService
	parishes      *service.ParishService
	view          *view.View
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(as *service.AnnouncementService, ps *service.ParishService, v *view.View) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: as, parishes: ps, view: v}
}

// publicAnnouncementsHandler lists the announcements visible right now.
func (h *AnnouncementHandler) publicAnnouncementsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	now := time.Now().In(h.parishes.Location(parish))

	items, err := h.announcements.PublicAnnouncements(r.Context(), parish.ID, now)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve announcements", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"Parish":        parish,
		"UserInfo":      middleware.GetUserInfo(r.Context()),
		"Announcements": items,
	}
	if err := h.view.Render(w, r, "announcements.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render announcements", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminListAnnouncementsHandler shows all announcements, drafts included.
func (h *AnnouncementHandler) adminListAnnouncementsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	items, err := h.announcements.ListAnnouncements(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve announcements", Code: http.StatusInternalServerError}
	}
	viewData := map[string]interface{}{
		"Parish":        parish,
		"UserInfo":      middleware.GetUserInfo(r.Context()),
		"Announcements": items,
	}
	if err := h.view.Render(w, r, "admin_announcements.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render announcement list", Code: http.StatusInternalServerError}
	}
	return nil
}

// announcementFormValues reads the shared create/update form fields.
func (h *AnnouncementHandler) announcementFormValues(r *http.Request, parish *data.Parish) (title, body string, published bool, publishAt *time.Time, err error) {
	title = r.FormValue("title")
	body = r.FormValue("body")
	published = r.FormValue("published") == "on"
	if raw := r.FormValue("publish_at"); raw != "" {
		t, perr := time.ParseInLocation("2006-01-02T15:04", raw, h.parishes.Location(parish))
		if perr != nil {
			return "", "", false, nil, perr
		}
		publishAt = &t
	}
	return title, body, published, publishAt, nil
}

// adminCreateAnnouncementHandler creates an announcement from the admin form.
func (h *AnnouncementHandler) adminCreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	title, body, published, publishAt, err := h.announcementFormValues(r, parish)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid publish time", Code: http.StatusBadRequest}
	}
	if _, err := h.announcements.CreateAnnouncement(r.Context(), parish.ID, title, body, published, publishAt); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create announcement", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/announcements", http.StatusFound)
	return nil
}

// adminUpdateAnnouncementHandler updates an announcement.
func (h *AnnouncementHandler) adminUpdateAnnouncementHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	title, body, published, publishAt, err := h.announcementFormValues(r, parish)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid publish time", Code: http.StatusBadRequest}
	}
	id := chi.URLParam(r, "announcementID")
	if _, err := h.announcements.UpdateAnnouncement(r.Context(), id, title, body, published, publishAt); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Announcement not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update announcement", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/announcements", http.StatusFound)
	return nil
}

// adminDeleteAnnouncementHandler removes an announcement.
func (h *AnnouncementHandler) adminDeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := h.announcements.DeleteAnnouncement(r.Context(), chi.URLParam(r, "announcementID")); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete announcement", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/announcements", http.StatusFound)
	return nil
}
