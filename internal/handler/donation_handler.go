package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// DonationHandler holds the dependencies for the donation record handlers.
// These screens are admin-only; donations are never shown publicly.
type DonationHandler struct {
	donations *service.DonationService
	parishes  *service.ParishService
	view      *view.View
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(ds *service.DonationService, ps *service.ParishService, v *view.View) *DonationHandler {
	return &DonationHandler{donations: ds, parishes: ps, view: v}
}

// period resolves the ?from / ?to query parameters, defaulting to the
// current calendar month in the parish's timezone.
func (h *DonationHandler) period(r *http.Request, loc *time.Location) (time.Time, time.Time) {
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	if raw := r.URL.Query().Get("from"); raw != "" {
		if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
			from = t
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
			to = t.AddDate(0, 0, 1).Add(-time.Second)
		}
	}
	return from, to
}

// adminListDonationsHandler lists a period's donations with totals.
func (h *DonationHandler) adminListDonationsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	from, to := h.period(r, h.parishes.Location(parish))

	items, err := h.donations.ListDonations(r.Context(), parish.ID, from, to)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve donations", Code: http.StatusInternalServerError}
	}
	summary, err := h.donations.Summarize(r.Context(), parish.ID, from, to)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to total donations", Code: http.StatusInternalServerError}
	}

	viewData := map[string]interface{}{
		"Parish":    parish,
		"UserInfo":  middleware.GetUserInfo(r.Context()),
		"Donations": items,
		"Summary":   summary,
	}
	if err := h.view.Render(w, r, "admin_donations.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render donations", Code: http.StatusInternalServerError}
	}
	return nil
}

// adminCreateDonationHandler records a received gift.
func (h *DonationHandler) adminCreateDonationHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	loc := h.parishes.Location(parish)

	amount, err := strconv.ParseInt(r.FormValue("amount_cents"), 10, 64)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid amount", Code: http.StatusBadRequest}
	}
	receivedOn, err := time.ParseInLocation("2006-01-02", r.FormValue("received_on"), loc)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid date", Code: http.StatusBadRequest}
	}

	_, err = h.donations.RecordDonation(r.Context(), parish.ID,
		r.FormValue("donor_name"), amount, r.FormValue("currency"),
		r.FormValue("purpose"), r.FormValue("note"), receivedOn)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to record donation", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/donations", http.StatusFound)
	return nil
}

// adminDeleteDonationHandler removes a donation entry.
func (h *DonationHandler) adminDeleteDonationHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := h.donations.DeleteDonation(r.Context(), chi.URLParam(r, "donationID")); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete donation", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/donations", http.StatusFound)
	return nil
}
