//go:build unit

package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"go-parish-platform/internal/calendar"
	"go-parish-platform/internal/config"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
)

// mockEventRepository is a mock implementation of the EventRepository interface.
type mockEventRepository struct {
	errToReturn      error
	eventToReturn    *data.Event
	eventsToReturn   []*data.Event
	createCalled     bool
	updateCalled     bool
	deleteCalled     bool
	lastEventPassed  *data.Event
	lastListedParish string
}

var _ EventRepository = (*mockEventRepository)(nil)

func (m *mockEventRepository) CreateEvent(ctx context.Context, ev *data.Event) error {
	m.createCalled = true
	m.lastEventPassed = ev
	return m.errToReturn
}

func (m *mockEventRepository) GetEventByID(ctx context.Context, id string) (*data.Event, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.eventToReturn, nil
}

func (m *mockEventRepository) ListEvents(ctx context.Context, parishID string) ([]*data.Event, error) {
	m.lastListedParish = parishID
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.eventsToReturn, nil
}

func (m *mockEventRepository) ListEventsBetween(ctx context.Context, parishID string, start, end time.Time) ([]*data.Event, error) {
	m.lastListedParish = parishID
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.eventsToReturn, nil
}

func (m *mockEventRepository) UpdateEvent(ctx context.Context, ev *data.Event) error {
	m.updateCalled = true
	m.lastEventPassed = ev
	return m.errToReturn
}

func (m *mockEventRepository) DeleteEvent(ctx context.Context, id string) error {
	m.deleteCalled = true
	return m.errToReturn
}

// mockScheduleRepository is a mock implementation of the ScheduleRepository interface.
type mockScheduleRepository struct {
	errToReturn       error
	scheduleToReturn  *data.ServiceSchedule
	schedulesToReturn []*data.ServiceSchedule
	createCalled      bool
	deleteCalled      bool
}

var _ ScheduleRepository = (*mockScheduleRepository)(nil)

func (m *mockScheduleRepository) CreateSchedule(ctx context.Context, s *data.ServiceSchedule) error {
	m.createCalled = true
	return m.errToReturn
}

func (m *mockScheduleRepository) GetScheduleByID(ctx context.Context, id string) (*data.ServiceSchedule, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.scheduleToReturn, nil
}

func (m *mockScheduleRepository) ListSchedules(ctx context.Context, parishID string) ([]*data.ServiceSchedule, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.schedulesToReturn, nil
}

func (m *mockScheduleRepository) UpdateSchedule(ctx context.Context, s *data.ServiceSchedule) error {
	return m.errToReturn
}

func (m *mockScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	m.deleteCalled = true
	return m.errToReturn
}

func newTestCalendarService(events *mockEventRepository, schedules *mockScheduleRepository) *CalendarService {
	log := logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
	return NewCalendarService(events, schedules, log)
}

func TestCalendarService_ExpandEvents(t *testing.T) {
	svc := newTestCalendarService(&mockEventRepository{}, &mockScheduleRepository{})

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)

	t.Run("weekly rule materializes one occurrence per week", func(t *testing.T) {
		endAt := time.Date(2024, 2, 4, 11, 0, 0, 0, time.UTC)
		events := []calendar.Event{{
			ID:             "vespers",
			Title:          "Vespers",
			StartAt:        time.Date(2024, 2, 4, 10, 0, 0, 0, time.UTC),
			EndAt:          &endAt,
			RecurrenceRule: "FREQ=WEEKLY",
		}}

		got := svc.ExpandEvents(events, start, end)
		// Sundays Feb 4, 11, 18, 25.
		if len(got) != 4 {
			t.Fatalf("expected 4 occurrences, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, occ := range got {
			if !strings.HasPrefix(occ.ID, "vespers@") {
				t.Errorf("occurrence ID %q not derived from the base event", occ.ID)
			}
			if seen[occ.ID] {
				t.Errorf("duplicate occurrence ID %q", occ.ID)
			}
			seen[occ.ID] = true
			if occ.EndAt == nil || occ.EndAt.Sub(occ.StartAt) != time.Hour {
				t.Errorf("occurrence %q lost the event duration", occ.ID)
			}
		}
		if got[1].StartAt != time.Date(2024, 2, 11, 10, 0, 0, 0, time.UTC) {
			t.Errorf("second occurrence at %v, want Feb 11 10:00", got[1].StartAt)
		}
	})

	t.Run("non-recurring events pass through unchanged", func(t *testing.T) {
		events := []calendar.Event{{
			ID:      "picnic",
			StartAt: time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
		}}
		got := svc.ExpandEvents(events, start, end)
		if len(got) != 1 || got[0].ID != "picnic" {
			t.Fatalf("expected the single base event back, got %v", got)
		}
	})

	t.Run("unparsable rule keeps the base event", func(t *testing.T) {
		events := []calendar.Event{{
			ID:             "broken",
			StartAt:        time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
			RecurrenceRule: "FREQ=NEVERLY",
		}}
		got := svc.ExpandEvents(events, start, end)
		if len(got) != 1 || got[0].ID != "broken" {
			t.Fatalf("expected the base event to survive, got %v", got)
		}
	})
}

func TestCalendarService_Month(t *testing.T) {
	sunday := 0
	events := &mockEventRepository{eventsToReturn: []*data.Event{
		{
			ID: "e1", ParishID: "parish-1", Title: "Feast of the Presentation",
			StartAt: time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC),
			Status:  string(calendar.StatusPublished),
		},
		{
			ID: "e2", ParishID: "parish-1", Title: "Draft retreat",
			StartAt: time.Date(2024, 2, 16, 9, 0, 0, 0, time.UTC),
			Status:  string(calendar.StatusDraft),
		},
	}}
	schedules := &mockScheduleRepository{schedulesToReturn: []*data.ServiceSchedule{
		{ID: "s1", ParishID: "parish-1", ServiceType: "liturgy", DayOfWeek: &sunday, TimeOfDay: "10:00"},
	}}
	svc := newTestCalendarService(events, schedules)

	ref := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	view, err := svc.Month(context.Background(), "parish-1", ref, ref)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	if len(view.Days) != 42 {
		t.Fatalf("expected a 42 cell grid, got %d", len(view.Days))
	}

	var publishedSeen, draftSeen bool
	var scheduledDays int
	for _, day := range view.Days {
		for _, ev := range day.Events {
			if ev.ID == "e1" {
				publishedSeen = true
			}
			if ev.ID == "e2" {
				draftSeen = true
			}
		}
		if len(day.Schedules) > 0 {
			scheduledDays++
		}
	}
	if !publishedSeen {
		t.Error("published event missing from the month view")
	}
	if draftSeen {
		t.Error("draft event leaked into the public month view")
	}
	// The Feb 2024 grid spans Jan 28 .. Mar 9 and holds 6 Sundays.
	if scheduledDays != 6 {
		t.Errorf("expected the weekly liturgy on 6 Sundays, got %d days", scheduledDays)
	}
}

func TestCalendarService_Upcoming(t *testing.T) {
	now := time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC)
	events := &mockEventRepository{eventsToReturn: []*data.Event{
		{ID: "e1", StartAt: now.Add(24 * time.Hour), Status: string(calendar.StatusPublished)},
		{ID: "e2", StartAt: now.Add(48 * time.Hour), Status: string(calendar.StatusCancelled)},
	}}
	svc := newTestCalendarService(events, &mockScheduleRepository{})

	got, err := svc.Upcoming(context.Background(), "parish-1", now, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Upcoming returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("expected only the published event, got %v", got)
	}
}

func TestCalendarService_CreateEvent(t *testing.T) {
	cases := []struct {
		name    string
		input   EventInput
		wantErr bool
	}{
		{
			name:  "valid event",
			input: EventInput{Title: "Vigil", StartAt: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)},
		},
		{
			name:    "missing title",
			input:   EventInput{StartAt: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)},
			wantErr: true,
		},
		{
			name:    "missing start",
			input:   EventInput{Title: "Vigil"},
			wantErr: true,
		},
		{
			name: "end before start",
			input: EventInput{
				Title:   "Vigil",
				StartAt: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
				EndAt:   timePtr(time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)),
			},
			wantErr: true,
		},
		{
			name: "bad recurrence rule",
			input: EventInput{
				Title:          "Vigil",
				StartAt:        time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
				RecurrenceRule: "FREQ=NEVERLY",
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockEventRepository{}
			svc := newTestCalendarService(repo, &mockScheduleRepository{})

			ev, err := svc.CreateEvent(context.Background(), "parish-1", tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				if repo.createCalled {
					t.Error("invalid input must not reach the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateEvent returned error: %v", err)
			}
			if ev.ID == "" {
				t.Error("expected a generated event ID")
			}
			if ev.Status != string(calendar.StatusDraft) {
				t.Errorf("new events default to draft, got %q", ev.Status)
			}
		})
	}
}

func TestCalendarService_CreateSchedule(t *testing.T) {
	t.Run("rejects weekday outside range", func(t *testing.T) {
		repo := &mockScheduleRepository{}
		svc := newTestCalendarService(&mockEventRepository{}, repo)

		bad := 7
		_, err := svc.CreateSchedule(context.Background(), "parish-1", ScheduleInput{
			ServiceType: "liturgy",
			DayOfWeek:   &bad,
		})
		if err == nil {
			t.Fatal("expected a validation error")
		}
		if repo.createCalled {
			t.Error("invalid input must not reach the repository")
		}
	})

	t.Run("accepts a special service without a weekday", func(t *testing.T) {
		repo := &mockScheduleRepository{}
		svc := newTestCalendarService(&mockEventRepository{}, repo)

		row, err := svc.CreateSchedule(context.Background(), "parish-1", ScheduleInput{
			ServiceType: "paschal vigil",
			Notes:       "announced each year",
		})
		if err != nil {
			t.Fatalf("CreateSchedule returned error: %v", err)
		}
		if row.DayOfWeek != nil {
			t.Error("expected no weekday on a special service")
		}
	})
}

func TestCalendarService_ICSFeed(t *testing.T) {
	endAt := time.Date(2024, 2, 4, 11, 0, 0, 0, time.UTC)
	events := &mockEventRepository{eventsToReturn: []*data.Event{
		{
			ID: "e1", ParishID: "parish-1", Title: "Divine Liturgy",
			StartAt: time.Date(2024, 2, 4, 10, 0, 0, 0, time.UTC), EndAt: &endAt,
			Location: "Main church", Status: string(calendar.StatusPublished),
			RecurrenceRule: "FREQ=WEEKLY",
		},
		{
			ID: "e2", ParishID: "parish-1", Title: "Unfinished plan",
			StartAt: time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC),
			Status:  string(calendar.StatusDraft),
		},
	}}
	svc := newTestCalendarService(events, &mockScheduleRepository{})

	feed, err := svc.ICSFeed(context.Background(), &data.Parish{
		ID: "parish-1", Name: "St. Nicholas", Slug: "st-nicholas",
	})
	if err != nil {
		t.Fatalf("ICSFeed returned error: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("feed is not an iCalendar document")
	}
	if !strings.Contains(feed, "Divine Liturgy") {
		t.Error("published event missing from the feed")
	}
	if strings.Contains(feed, "Unfinished plan") {
		t.Error("draft event leaked into the feed")
	}
	if !strings.Contains(feed, "RRULE:FREQ=WEEKLY") {
		t.Error("recurrence rule missing from the feed")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
