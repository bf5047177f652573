package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/calendar"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
	"go-parish-platform/internal/view"
)

// CalendarHandler holds the dependencies for the calendar handlers.
type CalendarHandler struct {
	calendars *service.CalendarService
	parishes  *service.ParishService
	view      *view.View
	log       logger.Logger
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(cs *service.CalendarService, ps *service.ParishService, v *view.View, log logger.Logger) *CalendarHandler {
	return &CalendarHandler{calendars: cs, parishes: ps, view: v, log: log}
}

// refTime resolves the ?date=YYYY-MM-DD query parameter in the parish's
// timezone, defaulting to today.
func (h *CalendarHandler) refTime(r *http.Request, parish *data.Parish) time.Time {
	loc := h.parishes.Location(parish)
	if raw := r.URL.Query().Get("date"); raw != "" {
		if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
			return t
		}
	}
	return time.Now().In(loc)
}

// publicCalendarHandler renders the parish calendar in the requested
// view mode: month (default), week, or list.
func (h *CalendarHandler) publicCalendarHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	ref := h.refTime(r, parish)
	now := time.Now().In(h.parishes.Location(parish))

	viewData := map[string]interface{}{
		"Parish":   parish,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Ref":      ref,
	}

	var template string
	switch calendar.ViewMode(r.URL.Query().Get("view")) {
	case calendar.ViewWeek:
		grid, err := h.calendars.Week(r.Context(), parish.ID, ref, now)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to compute week view", Code: http.StatusInternalServerError}
		}
		viewData["Week"] = grid
		template = "calendar_week.html"
	case calendar.ViewList:
		list, err := h.calendars.List(r.Context(), parish.ID, ref)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to compute list view", Code: http.StatusInternalServerError}
		}
		viewData["List"] = list
		template = "calendar_list.html"
	default:
		month, err := h.calendars.Month(r.Context(), parish.ID, ref, now)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Failed to compute month view", Code: http.StatusInternalServerError}
		}
		viewData["Month"] = month
		template = "calendar_month.html"
	}

	if err := h.view.Render(w, r, template, viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render calendar", Code: http.StatusInternalServerError}
	}
	return nil
}

// icsFeedHandler serves the parish calendar as an iCalendar document so
// parishioners can subscribe from their own calendar apps.
func (h *CalendarHandler) icsFeedHandler(w http.ResponseWriter, r *http.Request) {
	parish := middleware.GetParish(r.Context())
	feed, err := h.calendars.ICSFeed(r.Context(), parish)
	if err != nil {
		h.log.Error(err, "Failed to build ICS feed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+parish.Slug+`.ics"`)
	w.Write([]byte(feed))
}

// adminListEventsHandler shows the parish's events, drafts included.
func (h *CalendarHandler) adminListEventsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	now := time.Now().In(h.parishes.Location(parish))

	events, err := h.calendars.AllEvents(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve events", Code: http.StatusInternalServerError}
	}
	schedules, err := h.calendars.AllSchedules(r.Context(), parish.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve schedules", Code: http.StatusInternalServerError}
	}

	viewData := map[string]interface{}{
		"Parish":    parish,
		"UserInfo":  middleware.GetUserInfo(r.Context()),
		"Events":    events,
		"Schedules": schedules,
		"Now":       now,
	}
	if err := h.view.Render(w, r, "admin_events.html", viewData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render event list", Code: http.StatusInternalServerError}
	}
	return nil
}

// eventInputFromForm reads the admin event form into an EventInput.
func (h *CalendarHandler) eventInputFromForm(r *http.Request, parish *data.Parish) (service.EventInput, error) {
	loc := h.parishes.Location(parish)
	in := service.EventInput{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		ServiceType:    r.FormValue("service_type"),
		Location:       r.FormValue("location"),
		IsFeast:        r.FormValue("is_feast") == "on",
		FeastName:      r.FormValue("feast_name"),
		Status:         r.FormValue("status"),
		Color:          r.FormValue("color"),
		RecurrenceRule: r.FormValue("recurrence_rule"),
	}
	start, err := time.ParseInLocation("2006-01-02T15:04", r.FormValue("start_at"), loc)
	if err != nil {
		return in, err
	}
	in.StartAt = start
	if raw := r.FormValue("end_at"); raw != "" {
		end, err := time.ParseInLocation("2006-01-02T15:04", raw, loc)
		if err != nil {
			return in, err
		}
		in.EndAt = &end
	}
	return in, nil
}

// adminCreateEventHandler creates an event from the admin form.
func (h *CalendarHandler) adminCreateEventHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	in, err := h.eventInputFromForm(r, parish)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid event times", Code: http.StatusBadRequest}
	}
	if _, err := h.calendars.CreateEvent(r.Context(), parish.ID, in); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create event", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}

// adminUpdateEventHandler updates an event from the admin form.
func (h *CalendarHandler) adminUpdateEventHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	in, err := h.eventInputFromForm(r, parish)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid event times", Code: http.StatusBadRequest}
	}
	if _, err := h.calendars.UpdateEvent(r.Context(), chi.URLParam(r, "eventID"), in); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Event not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update event", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}

// adminDeleteEventHandler removes an event.
func (h *CalendarHandler) adminDeleteEventHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := h.calendars.DeleteEvent(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete event", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}

// scheduleInputFromForm reads the admin schedule form. An empty weekday
// field means a special service with no fixed day.
func scheduleInputFromForm(r *http.Request) (service.ScheduleInput, error) {
	in := service.ScheduleInput{
		ServiceType: r.FormValue("service_type"),
		TimeOfDay:   r.FormValue("time_of_day"),
		Recurring:   r.FormValue("recurring") == "on",
		Notes:       r.FormValue("notes"),
	}
	if raw := r.FormValue("day_of_week"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil {
			return in, err
		}
		in.DayOfWeek = &day
	}
	return in, nil
}

// adminCreateScheduleHandler creates a weekly service schedule.
func (h *CalendarHandler) adminCreateScheduleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	in, err := scheduleInputFromForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid weekday", Code: http.StatusBadRequest}
	}
	if _, err := h.calendars.CreateSchedule(r.Context(), parish.ID, in); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to create schedule", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}

// adminUpdateScheduleHandler updates a service schedule.
func (h *CalendarHandler) adminUpdateScheduleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	in, err := scheduleInputFromForm(r)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid weekday", Code: http.StatusBadRequest}
	}
	if _, err := h.calendars.UpdateSchedule(r.Context(), chi.URLParam(r, "scheduleID"), in); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Schedule not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to update schedule", Code: http.StatusBadRequest}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}

// adminDeleteScheduleHandler removes a service schedule.
func (h *CalendarHandler) adminDeleteScheduleHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	parish := middleware.GetParish(r.Context())
	if err := h.calendars.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to delete schedule", Code: http.StatusInternalServerError}
	}
	http.Redirect(w, r, "/admin/"+parish.Slug+"/events", http.StatusFound)
	return nil
}
