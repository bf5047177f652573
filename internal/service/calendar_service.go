package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"go-parish-platform/internal/calendar"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
)

// maxOccurrencesPerEvent caps recurrence expansion so a malformed rule
// cannot blow up a view computation.
const maxOccurrencesPerEvent = 500

// EventRepository defines the database operations the calendar service needs for events.
type EventRepository interface {
	CreateEvent(ctx context.Context, ev *data.Event) error
	GetEventByID(ctx context.Context, id string) (*data.Event, error)
	ListEvents(ctx context.Context, parishID string) ([]*data.Event, error)
	ListEventsBetween(ctx context.Context, parishID string, start, end time.Time) ([]*data.Event, error)
	UpdateEvent(ctx context.Context, ev *data.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// ScheduleRepository defines the database operations the calendar service needs for schedules.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, s *data.ServiceSchedule) error
	GetScheduleByID(ctx context.Context, id string) (*data.ServiceSchedule, error)
	ListSchedules(ctx context.Context, parishID string) ([]*data.ServiceSchedule, error)
	UpdateSchedule(ctx context.Context, s *data.ServiceSchedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// CalendarService assembles calendar views: it fetches a parish's events
// and schedules, materializes recurring events into the requested
// window, and hands the pre-expanded list to the pure view engine in
// internal/calendar.
type CalendarService struct {
	events    EventRepository
	schedules ScheduleRepository
	log       logger.Logger
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(events EventRepository, schedules ScheduleRepository, log logger.Logger) *CalendarService {
	return &CalendarService{events: events, schedules: schedules, log: log}
}

// MonthView is the computed month view plus the window it covers.
type MonthView struct {
	Start time.Time
	End   time.Time
	Days  []calendar.Day
}

// ListView is the computed list view: events grouped by date, plus the
// parish's full service schedule (including special services without a
// fixed weekday, which never appear on grids).
type ListView struct {
	Start     time.Time
	End       time.Time
	Groups    []calendar.DateGroup
	Schedules []calendar.ServiceSchedule
}

// Month computes the public month view for the month containing ref.
func (s *CalendarService) Month(ctx context.Context, parishID string, ref, now time.Time) (*MonthView, error) {
	start, end := calendar.ViewRange(ref, calendar.ViewMonth)
	events, schedules, err := s.visibleRecords(ctx, parishID, start, end)
	if err != nil {
		return nil, err
	}
	return &MonthView{
		Start: start,
		End:   end,
		Days:  calendar.BuildMonthGrid(ref, now, events, schedules),
	}, nil
}

// Week computes the public week view for the week containing ref.
func (s *CalendarService) Week(ctx context.Context, parishID string, ref, now time.Time) (*calendar.WeekGrid, error) {
	start, end := calendar.ViewRange(ref, calendar.ViewWeek)
	events, schedules, err := s.visibleRecords(ctx, parishID, start, end)
	if err != nil {
		return nil, err
	}
	grid := calendar.BuildWeekGrid(ref, now, events, schedules)
	return &grid, nil
}

// List computes the public list view for the week containing ref.
func (s *CalendarService) List(ctx context.Context, parishID string, ref time.Time) (*ListView, error) {
	start, end := calendar.ViewRange(ref, calendar.ViewList)
	events, schedules, err := s.visibleRecords(ctx, parishID, start, end)
	if err != nil {
		return nil, err
	}
	return &ListView{
		Start:  start,
		End:    end,
		Groups: calendar.GroupEventsByDate(events),
		// The list view shows the full schedule, including special
		// services with no fixed weekday that grids never display.
		Schedules: schedules,
	}, nil
}

// Upcoming lists the parish's next published events within horizon, for
// the admin dashboard.
func (s *CalendarService) Upcoming(ctx context.Context, parishID string, now time.Time, horizon time.Duration) ([]calendar.Event, error) {
	rows, err := s.events.ListEventsBetween(ctx, parishID, now, now.Add(horizon))
	if err != nil {
		return nil, err
	}
	out := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		if row.Status == string(calendar.StatusPublished) {
			out = append(out, row.ToCalendar())
		}
	}
	return out, nil
}

// AllEvents lists every event of a parish, drafts included, for the
// admin screens. No recurrence expansion; admins edit the base events.
func (s *CalendarService) AllEvents(ctx context.Context, parishID string) ([]*data.Event, error) {
	return s.events.ListEvents(ctx, parishID)
}

// AllSchedules lists every service schedule of a parish.
func (s *CalendarService) AllSchedules(ctx context.Context, parishID string) ([]*data.ServiceSchedule, error) {
	return s.schedules.ListSchedules(ctx, parishID)
}

// visibleRecords loads the parish's published events, expands recurring
// ones into the window, filters to the window, and converts the weekly
// schedules.
func (s *CalendarService) visibleRecords(ctx context.Context, parishID string, start, end time.Time) ([]calendar.Event, []calendar.ServiceSchedule, error) {
	rows, err := s.events.ListEvents(ctx, parishID)
	if err != nil {
		return nil, nil, err
	}
	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		if row.Status != string(calendar.StatusPublished) {
			continue
		}
		events = append(events, row.ToCalendar())
	}
	expanded := s.ExpandEvents(events, start, end)
	filtered := calendar.FilterEventsInRange(expanded, start, end)

	scheduleRows, err := s.schedules.ListSchedules(ctx, parishID)
	if err != nil {
		return nil, nil, err
	}
	schedules := make([]calendar.ServiceSchedule, 0, len(scheduleRows))
	for _, row := range scheduleRows {
		schedules = append(schedules, row.ToCalendar())
	}
	return filtered, schedules, nil
}

// ExpandEvents materializes recurring events into concrete occurrences
// within [start, end]. Non-recurring events pass through unchanged. The
// view engine itself never expands recurrence; this is the "upstream"
// step that feeds it. A rule that fails to parse drops only that event's
// recurrence, never the computation.
func (s *CalendarService) ExpandEvents(events []calendar.Event, start, end time.Time) []calendar.Event {
	out := make([]calendar.Event, 0, len(events))
	for _, ev := range events {
		if ev.RecurrenceRule == "" {
			out = append(out, ev)
			continue
		}

		r, err := rrule.StrToRRule(ev.RecurrenceRule)
		if err != nil {
			s.log.Error(err, fmt.Sprintf("Skipping unparsable recurrence rule on event %s", ev.ID))
			// The base occurrence is still shown.
			out = append(out, ev)
			continue
		}
		r.DTStart(ev.StartAt)

		times := r.Between(start.In(ev.StartAt.Location()), end.In(ev.StartAt.Location()), true)
		if len(times) > maxOccurrencesPerEvent {
			s.log.Warn(fmt.Sprintf("Recurrence expansion for event %s truncated at %d occurrences", ev.ID, maxOccurrencesPerEvent))
			times = times[:maxOccurrencesPerEvent]
		}
		for _, occStart := range times {
			occ := ev
			occ.StartAt = occStart
			if ev.EndAt != nil {
				occEnd := occStart.Add(ev.EndAt.Sub(ev.StartAt))
				occ.EndAt = &occEnd
			}
			// Occurrences need distinct IDs for anchors and edit links.
			occ.ID = fmt.Sprintf("%s@%s", ev.ID, calendar.DateKey(occStart))
			out = append(out, occ)
		}
	}
	return out
}

// EventInput carries the admin form fields for creating or updating an event.
type EventInput struct {
	Title          string
	Description    string
	Category       string
	ServiceType    string
	StartAt        time.Time
	EndAt          *time.Time
	Location       string
	IsFeast        bool
	FeastName      string
	Status         string
	Color          string
	RecurrenceRule string
}

// validate enforces the invariants persisted events must satisfy.
func (in *EventInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if in.StartAt.IsZero() {
		return fmt.Errorf("event start time is required")
	}
	if in.EndAt != nil && in.EndAt.Before(in.StartAt) {
		return fmt.Errorf("event end time %v precedes its start %v", in.EndAt, in.StartAt)
	}
	if in.RecurrenceRule != "" {
		if _, err := rrule.StrToRRule(in.RecurrenceRule); err != nil {
			return fmt.Errorf("invalid recurrence rule: %w", err)
		}
	}
	return nil
}

// CreateEvent validates and stores a new event for a parish.
func (s *CalendarService) CreateEvent(ctx context.Context, parishID string, in EventInput) (*data.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = string(calendar.StatusDraft)
	}
	ev := &data.Event{
		ID:             uuid.NewString(),
		ParishID:       parishID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		ServiceType:    in.ServiceType,
		StartAt:        in.StartAt,
		EndAt:          in.EndAt,
		Location:       in.Location,
		IsFeast:        in.IsFeast,
		FeastName:      in.FeastName,
		Status:         in.Status,
		Color:          in.Color,
		RecurrenceRule: in.RecurrenceRule,
	}
	if err := s.events.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// UpdateEvent validates and applies changes to an existing event.
func (s *CalendarService) UpdateEvent(ctx context.Context, id string, in EventInput) (*data.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ev, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ev.Title = in.Title
	ev.Description = in.Description
	ev.Category = in.Category
	ev.ServiceType = in.ServiceType
	ev.StartAt = in.StartAt
	ev.EndAt = in.EndAt
	ev.Location = in.Location
	ev.IsFeast = in.IsFeast
	ev.FeastName = in.FeastName
	if in.Status != "" {
		ev.Status = in.Status
	}
	ev.Color = in.Color
	ev.RecurrenceRule = in.RecurrenceRule
	ev.UpdatedAt = time.Now()
	if err := s.events.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteEvent removes an event.
func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	return s.events.DeleteEvent(ctx, id)
}

// ScheduleInput carries the admin form fields for a weekly service schedule.
type ScheduleInput struct {
	ServiceType string
	DayOfWeek   *int
	TimeOfDay   string
	Recurring   bool
	Notes       string
}

func (in *ScheduleInput) validate() error {
	if in.ServiceType == "" {
		return fmt.Errorf("service type is required")
	}
	if in.DayOfWeek != nil && (*in.DayOfWeek < 0 || *in.DayOfWeek > 6) {
		return fmt.Errorf("day of week %d outside 0..6", *in.DayOfWeek)
	}
	return nil
}

// CreateSchedule validates and stores a new service schedule.
func (s *CalendarService) CreateSchedule(ctx context.Context, parishID string, in ScheduleInput) (*data.ServiceSchedule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	row := &data.ServiceSchedule{
		ID:          uuid.NewString(),
		ParishID:    parishID,
		ServiceType: in.ServiceType,
		DayOfWeek:   in.DayOfWeek,
		TimeOfDay:   in.TimeOfDay,
		Recurring:   in.Recurring,
		Notes:       in.Notes,
	}
	if err := s.schedules.CreateSchedule(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// UpdateSchedule validates and applies changes to a service schedule.
func (s *CalendarService) UpdateSchedule(ctx context.Context, id string, in ScheduleInput) (*data.ServiceSchedule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	row, err := s.schedules.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	row.ServiceType = in.ServiceType
	row.DayOfWeek = in.DayOfWeek
	row.TimeOfDay = in.TimeOfDay
	row.Recurring = in.Recurring
	row.Notes = in.Notes
	row.UpdatedAt = time.Now()
	if err := s.schedules.UpdateSchedule(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteSchedule removes a service schedule.
func (s *CalendarService) DeleteSchedule(ctx context.Context, id string) error {
	return s.schedules.DeleteSchedule(ctx, id)
}

// ICSFeed exports the parish's published events as an iCalendar
// document. Recurring events carry their RRULE so subscribing clients
// expand them natively.
func (s *CalendarService) ICSFeed(ctx context.Context, parish *data.Parish) (string, error) {
	rows, err := s.events.ListEvents(ctx, parish.ID)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//go-parish-platform//calendar//EN")
	cal.SetName(parish.Name)

	for _, row := range rows {
		if row.Status != string(calendar.StatusPublished) {
			continue
		}
		ve := cal.AddEvent(fmt.Sprintf("%s@%s", row.ID, parish.Slug))
		ve.SetSummary(row.Title)
		ve.SetStartAt(row.StartAt)
		if row.EndAt != nil {
			ve.SetEndAt(*row.EndAt)
		}
		if row.Description != "" {
			ve.SetDescription(row.Description)
		}
		if row.Location != "" {
			ve.SetLocation(row.Location)
		}
		if row.RecurrenceRule != "" {
			ve.AddRrule(row.RecurrenceRule)
		}
		ve.SetDtStampTime(row.UpdatedAt)
	}
	return cal.Serialize(), nil
}
