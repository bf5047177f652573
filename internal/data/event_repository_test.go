//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// setupEventTest creates a new in-memory SQLite database and an
// EventRepository for testing. It returns the repository and a teardown
// function to be deferred.
func setupEventTest(t *testing.T) (*EventRepository, func()) {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	schema := `
	CREATE TABLE events (
		id TEXT PRIMARY KEY,
		parish_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'other',
		service_type TEXT NOT NULL DEFAULT '',
		start_at TIMESTAMP NOT NULL,
		end_at TIMESTAMP,
		location TEXT NOT NULL DEFAULT '',
		is_feast BOOLEAN NOT NULL DEFAULT FALSE,
		feast_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		color TEXT NOT NULL DEFAULT '',
		recurrence_rule TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	db.MustExec(schema)

	repo := NewEventRepository(db)

	teardown := func() {
		db.Close()
	}

	return repo, teardown
}

func testEvent(id, parishID string, start time.Time) *Event {
	return &Event{
		ID:       id,
		ParishID: parishID,
		Title:    "Divine Liturgy",
		Category: "divine_liturgy",
		StartAt:  start,
		Status:   "published",
	}
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	repo, teardown := setupEventTest(t)
	defer teardown()
	ctx := context.Background()

	start := time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
	if err := repo.CreateEvent(ctx, testEvent("ev-1", "par-1", start)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetEventByID(ctx, "ev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Divine Liturgy" {
		t.Errorf("expected title 'Divine Liturgy', got '%s'", got.Title)
	}
	if !got.StartAt.Equal(start) {
		t.Errorf("expected start %v, got %v", start, got.StartAt)
	}

	// Not found surfaces ErrNotFound.
	if _, err := repo.GetEventByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_ListEventsBetween(t *testing.T) {
	repo, teardown := setupEventTest(t)
	defer teardown()
	ctx := context.Background()

	mar := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	apr := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	if err := repo.CreateEvent(ctx, testEvent("ev-mar", "par-1", mar)); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateEvent(ctx, testEvent("ev-apr", "par-1", apr)); err != nil {
		t.Fatal(err)
	}
	// A different parish's event must never leak into the result.
	if err := repo.CreateEvent(ctx, testEvent("ev-other", "par-2", mar)); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)
	events, err := repo.ListEventsBetween(ctx, "par-1", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-mar" {
		t.Fatalf("expected only ev-mar, got %+v", events)
	}
}

func TestEventRepository_UpdateAndDelete(t *testing.T) {
	repo, teardown := setupEventTest(t)
	defer teardown()
	ctx := context.Background()

	start := time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
	ev := testEvent("ev-1", "par-1", start)
	if err := repo.CreateEvent(ctx, ev); err != nil {
		t.Fatal(err)
	}

	ev.Title = "Festal Liturgy"
	ev.IsFeast = true
	ev.FeastName = "Annunciation"
	ev.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateEvent(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetEventByID(ctx, "ev-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsFeast || got.FeastName != "Annunciation" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.DeleteEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.DeleteEvent(ctx, "ev-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
