// Package heatmap builds the 53-week activity grid shown on the home and
// habit detail screens, and owns the keyboard focus state for that grid.
//
// Everything in this package is a pure function of its inputs: the caller
// supplies the current time, the check-ins and the todos. Nothing here
// reads the clock or the database.
package heatmap

import (
	"strings"
	"time"

	"kuse/internal/clock"
	"kuse/internal/tracker"
)

const (
	WeekCount = 53
	DayCount  = 7
	CellCount = WeekCount * DayCount

	// MaxLevel is the highest intensity a cell can reach on either scale.
	MaxLevel = 4
)

// DayCell is the derived activity for one calendar day.
type DayCell struct {
	// Date is noon local time on that day. Local midnight does not exist
	// on days where DST starts at 00:00.
	Date    time.Time
	DateKey string

	HabitCount          int
	TodoCount           int
	CompletedTodoCount  int
	IncompleteTodoCount int

	GreenLevel  int
	OrangeLevel int

	HasIncompleteTodos bool
	HasCompletedItems  bool

	// Future is set for days after today in the current week column.
	Future bool
}

// Grid holds CellCount contiguous days, oldest first. Cells are laid out
// week-major: index = week*DayCount + weekday, with weeks starting on Sunday.
type Grid struct {
	Cells      []DayCell
	TodayIndex int
}

// Bucket maps a count onto an intensity level in [0, MaxLevel].
func Bucket(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= MaxLevel {
		return MaxLevel
	}
	return n
}

type todoTotals struct {
	total     int
	completed int
}

// Build derives the grid ending with the Sunday-start week that contains
// now. The location of now is used as the local time zone when grouping
// check-in timestamps into days.
//
// If habitID is non-empty only that habit's check-ins are counted. Todos
// are counted as given; pass nil for a single-habit view.
//
// Check-ins with unparseable timestamps and todos without a usable date
// are skipped.
func Build(now time.Time, checkIns []tracker.CheckIn, todos []tracker.Todo, habitID string) Grid {
	loc := now.Location()
	y, m, d := now.Date()
	weekday := int(now.Weekday())
	weekStart := time.Date(y, m, d-weekday, 12, 0, 0, 0, loc)
	sy, sm, sd := weekStart.AddDate(0, 0, -(WeekCount-1)*DayCount).Date()

	habitsByDate := make(map[string]int)
	for _, c := range checkIns {
		if habitID != "" && c.HabitID != habitID {
			continue
		}
		t, err := c.Time()
		if err != nil {
			continue
		}
		habitsByDate[clock.DateKey(t.In(loc))]++
	}

	todosByDate := make(map[string]todoTotals)
	for _, t := range todos {
		key := strings.TrimSpace(t.Date)
		if key == "" {
			continue
		}
		tt := todosByDate[key]
		tt.total++
		if t.Completed {
			tt.completed++
		}
		todosByDate[key] = tt
	}

	todayKey := clock.DateKey(now)
	grid := Grid{
		Cells:      make([]DayCell, 0, CellCount),
		TodayIndex: (WeekCount-1)*DayCount + weekday,
	}
	for i := 0; i < CellCount; i++ {
		date := time.Date(sy, sm, sd+i, 12, 0, 0, 0, loc)
		key := clock.DateKey(date)
		grid.Cells = append(grid.Cells, newDayCell(date, key, habitsByDate[key], todosByDate[key], key > todayKey))
	}
	return grid
}

func newDayCell(date time.Time, key string, habits int, todos todoTotals, future bool) DayCell {
	incomplete := todos.total - todos.completed
	if incomplete < 0 {
		incomplete = 0
	}
	return DayCell{
		Date:                date,
		DateKey:             key,
		HabitCount:          habits,
		TodoCount:           todos.total,
		CompletedTodoCount:  todos.completed,
		IncompleteTodoCount: incomplete,
		GreenLevel:          Bucket(habits + todos.completed),
		OrangeLevel:         Bucket(incomplete),
		HasIncompleteTodos:  incomplete > 0,
		HasCompletedItems:   habits > 0 || todos.completed > 0,
		Future:              future,
	}
}

// Weeks partitions the grid into WeekCount columns of DayCount days.
func (g Grid) Weeks() [][]DayCell {
	weeks := make([][]DayCell, 0, WeekCount)
	for i := 0; i+DayCount <= len(g.Cells); i += DayCount {
		weeks = append(weeks, g.Cells[i:i+DayCount])
	}
	return weeks
}

// Index returns the position of the cell for dateKey.
func (g Grid) Index(dateKey string) (int, bool) {
	for i, c := range g.Cells {
		if c.DateKey == dateKey {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the cell at i, or false when i is outside the grid.
func (g Grid) Cell(i int) (DayCell, bool) {
	if i < 0 || i >= len(g.Cells) {
		return DayCell{}, false
	}
	return g.Cells[i], true
}
