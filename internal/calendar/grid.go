package calendar

import "time"

const (
	// MonthGridCells is the fixed size of a month view: 6 weeks of 7 days,
	// padded with days from the adjacent months.
	MonthGridCells = 42

	// WeekGridFirstHour and WeekGridLastHour bound the week view's display
	// window (6 AM through 9 PM inclusive). Events outside it are simply
	// not shown in that view; this matches the product's existing behavior.
	WeekGridFirstHour = 6
	WeekGridLastHour  = 21
)

// BuildMonthGrid returns the 42 cells of the month view containing ref.
// Cells before the 1st and after the last day of the month carry dates
// from the previous/next month with InMonth=false. Events attach to the
// cell matching their start date; schedules attach to every cell whose
// weekday matches, padding cells included. now determines the IsToday
// flag and is passed in explicitly so the function stays deterministic.
func BuildMonthGrid(ref, now time.Time, events []Event, schedules []ServiceSchedule) []Day {
	loc := ref.Location()
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	byDate := indexEventsByDate(events)
	byWeekday := indexSchedulesByWeekday(schedules)

	cells := make([]Day, 0, MonthGridCells)
	for i := 0; i < MonthGridCells; i++ {
		date := gridStart.AddDate(0, 0, i)
		cells = append(cells, Day{
			Date:      date,
			InMonth:   date.Month() == ref.Month() && date.Year() == ref.Year(),
			IsToday:   sameDate(date, now),
			Events:    byDate[DateKey(date)],
			Schedules: byWeekday[int(date.Weekday())],
		})
	}
	return cells
}

// WeekCell is one hour slot of one weekday column in the week view.
type WeekCell struct {
	Hour      int
	Events    []Event
	Schedules []ServiceSchedule
}

// WeekColumn is one day of the week view.
type WeekColumn struct {
	Date    time.Time
	IsToday bool
	Cells   []WeekCell
}

// WeekGrid is the full week view: seven columns, Sunday through Saturday.
type WeekGrid struct {
	Start   time.Time
	End     time.Time
	Columns []WeekColumn
}

// BuildWeekGrid returns the week view for the week containing ref. Each
// column holds one cell per hour from WeekGridFirstHour through
// WeekGridLastHour. An event lands in the cell matching its start hour;
// recurring schedules for the column's weekday are attached only to the
// first row so they render once per day rather than once per hour.
func BuildWeekGrid(ref, now time.Time, events []Event, schedules []ServiceSchedule) WeekGrid {
	start, end := ViewRange(ref, ViewWeek)
	byDate := indexEventsByDate(events)
	byWeekday := indexSchedulesByWeekday(schedules)

	grid := WeekGrid{Start: start, End: end}
	for d := 0; d < 7; d++ {
		date := start.AddDate(0, 0, d)
		col := WeekColumn{Date: date, IsToday: sameDate(date, now)}
		dayEvents := byDate[DateKey(date)]
		for hour := WeekGridFirstHour; hour <= WeekGridLastHour; hour++ {
			cell := WeekCell{Hour: hour}
			for _, ev := range dayEvents {
				if ev.StartAt.Hour() == hour {
					cell.Events = append(cell.Events, ev)
				}
			}
			if hour == WeekGridFirstHour {
				cell.Schedules = byWeekday[int(date.Weekday())]
			}
			col.Cells = append(col.Cells, cell)
		}
		grid.Columns = append(grid.Columns, col)
	}
	return grid
}

func indexEventsByDate(events []Event) map[string][]Event {
	byDate := make(map[string][]Event)
	for _, ev := range events {
		if ev.StartAt.IsZero() {
			continue
		}
		key := DateKey(ev.StartAt)
		byDate[key] = append(byDate[key], ev)
	}
	return byDate
}

func indexSchedulesByWeekday(schedules []ServiceSchedule) map[int][]ServiceSchedule {
	byWeekday := make(map[int][]ServiceSchedule)
	for _, s := range schedules {
		if s.DayOfWeek == nil {
			continue
		}
		byWeekday[*s.DayOfWeek] = append(byWeekday[*s.DayOfWeek], s)
	}
	return byWeekday
}
