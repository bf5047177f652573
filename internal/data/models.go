package data

import (
	"time"

	"go-parish-platform/internal/calendar"
)

// Parish represents one tenant of the platform. Every other record is
// scoped to a parish by ID; the public site resolves the tenant from the
// URL slug.
type Parish struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	City      string    `db:"city"`
	Timezone  string    `db:"timezone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Page represents one builder-managed page of a parish site. Content is
// the persisted node-tree blob; it is decoded lazily by the content
// package, never by this layer.
type Page struct {
	ID        string    `db:"id"`
	ParishID  string    `db:"parish_id"`
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	Content   []byte    `db:"content"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Announcement is a dated parish notice shown on the public site.
type Announcement struct {
	ID        string     `db:"id"`
	ParishID  string     `db:"parish_id"`
	Title     string     `db:"title"`
	Body      string     `db:"body"` // markdown, sanitized on render
	Published bool       `db:"published"`
	PublishAt *time.Time `db:"publish_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Sermon is an archived homily, optionally with uploaded audio.
type Sermon struct {
	ID         string    `db:"id"`
	ParishID   string    `db:"parish_id"`
	Title      string    `db:"title"`
	Speaker    string    `db:"speaker"`
	Notes      string    `db:"notes"` // markdown
	AudioPath  string    `db:"audio_path"`
	PreachedOn time.Time `db:"preached_on"`
	CreatedAt  time.Time `db:"created_at"`
}

// Donation is a record-keeping entry for a received gift. The platform
// does not process payments; these rows are entered by parish staff.
type Donation struct {
	ID          string    `db:"id"`
	ParishID    string    `db:"parish_id"`
	DonorName   string    `db:"donor_name"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string    `db:"currency"`
	Purpose     string    `db:"purpose"`
	Note        string    `db:"note"`
	ReceivedOn  time.Time `db:"received_on"`
	CreatedAt   time.Time `db:"created_at"`
}

// Event is the database row behind calendar.Event.
type Event struct {
	ID             string     `db:"id"`
	ParishID       string     `db:"parish_id"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	Category       string     `db:"category"`
	ServiceType    string     `db:"service_type"`
	StartAt        time.Time  `db:"start_at"`
	EndAt          *time.Time `db:"end_at"`
	Location       string     `db:"location"`
	IsFeast        bool       `db:"is_feast"`
	FeastName      string     `db:"feast_name"`
	Status         string     `db:"status"`
	Color          string     `db:"color"`
	RecurrenceRule string     `db:"recurrence_rule"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// ToCalendar converts the row into the view engine's event type.
func (e *Event) ToCalendar() calendar.Event {
	return calendar.Event{
		ID:             e.ID,
		ParishID:       e.ParishID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       calendar.EventCategory(e.Category),
		ServiceType:    e.ServiceType,
		StartAt:        e.StartAt,
		EndAt:          e.EndAt,
		Location:       e.Location,
		IsFeast:        e.IsFeast,
		FeastName:      e.FeastName,
		Status:         calendar.EventStatus(e.Status),
		Color:          e.Color,
		RecurrenceRule: e.RecurrenceRule,
	}
}

// ServiceSchedule is the database row behind calendar.ServiceSchedule.
type ServiceSchedule struct {
	ID          string    `db:"id"`
	ParishID    string    `db:"parish_id"`
	ServiceType string    `db:"service_type"`
	DayOfWeek   *int      `db:"day_of_week"`
	TimeOfDay   string    `db:"time_of_day"`
	Recurring   bool      `db:"recurring"`
	Notes       string    `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToCalendar converts the row into the view engine's schedule type.
func (s *ServiceSchedule) ToCalendar() calendar.ServiceSchedule {
	return calendar.ServiceSchedule{
		ID:          s.ID,
		ParishID:    s.ParishID,
		ServiceType: s.ServiceType,
		DayOfWeek:   s.DayOfWeek,
		TimeOfDay:   s.TimeOfDay,
		Recurring:   s.Recurring,
		Notes:       s.Notes,
	}
}
