// Package calendar computes the data behind the parish calendar views.
// Everything in this package is a pure function over caller-supplied
// events and service schedules; fetching, recurrence expansion and
// rendering are the caller's problem.
package calendar

import (
	"sort"
	"time"
)

// ViewMode selects which calendar view is being computed.
type ViewMode string

const (
	ViewYear  ViewMode = "year"
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewList  ViewMode = "list"
)

// EventCategory classifies an event for display (icon, color fallback).
type EventCategory string

const (
	CategoryDivineLiturgy EventCategory = "divine_liturgy"
	CategoryVespers       EventCategory = "vespers"
	CategoryMatins        EventCategory = "matins"
	CategoryFeastDay      EventCategory = "feast_day"
	CategoryBaptism       EventCategory = "baptism"
	CategoryWedding       EventCategory = "wedding"
	CategoryMemorial      EventCategory = "memorial"
	CategoryMeeting       EventCategory = "meeting"
	CategoryOther         EventCategory = "other"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// Event is a single dated calendar entry belonging to a parish.
// Recurring events are materialized upstream (see service.ExpandEvents);
// this package never expands RecurrenceRule.
type Event struct {
	ID             string        `json:"id"`
	ParishID       string        `json:"parish_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Category       EventCategory `json:"category"`
	ServiceType    string        `json:"service_type,omitempty"`
	StartAt        time.Time     `json:"start_at"`
	EndAt          *time.Time    `json:"end_at,omitempty"`
	Location       string        `json:"location,omitempty"`
	IsFeast        bool          `json:"is_feast"`
	FeastName      string        `json:"feast_name,omitempty"`
	Status         EventStatus   `json:"status"`
	Color          string        `json:"color,omitempty"`
	RecurrenceRule string        `json:"recurrence_rule,omitempty"`
}

// ServiceSchedule is a recurring weekly service definition. It is not a
// dated occurrence: a schedule with DayOfWeek = 0 is shown on every
// Sunday cell of whatever grid is being displayed. A nil DayOfWeek means
// the service is not tied to a fixed weekday and never appears on a grid
// cell (it still shows up in schedule-only list sections).
type ServiceSchedule struct {
	ID          string `json:"id"`
	ParishID    string `json:"parish_id"`
	ServiceType string `json:"service_type"`
	DayOfWeek   *int   `json:"day_of_week,omitempty"` // 0=Sunday .. 6=Saturday
	TimeOfDay   string `json:"time_of_day,omitempty"` // "HH:MM", display only
	Recurring   bool   `json:"recurring"`
	Notes       string `json:"notes,omitempty"`
}

// Day is one cell of a month grid.
type Day struct {
	Date      time.Time
	InMonth   bool
	IsToday   bool
	Events    []Event
	Schedules []ServiceSchedule
}

// ViewRange computes the inclusive [start, end] window covered by a view
// centered on ref. Week and list views use the Sunday-to-Saturday week
// containing ref.
func ViewRange(ref time.Time, mode ViewMode) (time.Time, time.Time) {
	loc := ref.Location()
	switch mode {
	case ViewMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
		return start, end
	case ViewYear:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(1, 0, 0).Add(-time.Millisecond)
		return start, end
	default: // week and list share the surrounding week
		sunday := ref.AddDate(0, 0, -int(ref.Weekday()))
		start := time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, loc)
		end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
		return start, end
	}
}

// FilterEventsInRange keeps events whose StartAt lies within [start, end]
// inclusive. Only the start timestamp is consulted: a multi-day event
// whose start has scrolled out of the window is dropped even if it is
// still ongoing. That mirrors the admin UI's historical behavior and is
// deliberately left unchanged.
//
// Events with a zero StartAt (malformed upstream data) are excluded
// rather than treated as epoch.
func FilterEventsInRange(events []Event, start, end time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.StartAt.IsZero() {
			continue
		}
		if ev.StartAt.Before(start) || ev.StartAt.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// sameDate reports whether a and b fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DateKey formats t as the grouping key used by list and year views.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateGroup is one bucket of GroupEventsByDate output.
type DateGroup struct {
	Key    string
	Date   time.Time
	Events []Event
}

// GroupEventsByDate sorts events by start time (stable, so records with
// identical timestamps keep their input order) and buckets them by
// calendar date. Groups come back in chronological order.
func GroupEventsByDate(events []Event) []DateGroup {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	stableSortByStart(sorted)

	var groups []DateGroup
	index := make(map[string]int)
	for _, ev := range sorted {
		if ev.StartAt.IsZero() {
			continue
		}
		key := DateKey(ev.StartAt)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			day := time.Date(ev.StartAt.Year(), ev.StartAt.Month(), ev.StartAt.Day(), 0, 0, 0, 0, ev.StartAt.Location())
			groups = append(groups, DateGroup{Key: key, Date: day})
		}
		groups[i].Events = append(groups[i].Events, ev)
	}
	return groups
}

// stableSortByStart keeps the relative input order of events that share
// a start timestamp; callers rely on that for deterministic rendering.
func stableSortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartAt.Before(events[j].StartAt)
	})
}
