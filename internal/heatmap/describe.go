package heatmap

import (
	"fmt"
	"strings"
)

const (
	longDateLayout  = "Monday, January 2, 2006"
	shortDateLayout = "Mon, Jan 2, 2006"

	// RegionLabel names the grid for assistive output.
	RegionLabel = "Activity heatmap showing check-ins and todos over the past year"
)

// Describe renders the accessible description of a cell, e.g.
// "2 habits, 1 pending todo on Monday, January 1, 2024".
func Describe(c DayCell) string {
	var parts []string
	if c.HabitCount > 0 {
		parts = append(parts, plural(c.HabitCount, "habit"))
	}
	if c.IncompleteTodoCount > 0 {
		parts = append(parts, plural(c.IncompleteTodoCount, "pending todo"))
	}
	if c.CompletedTodoCount > 0 {
		parts = append(parts, plural(c.CompletedTodoCount, "completed todo"))
	}
	summary := "No activity"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s on %s", summary, c.Date.Format(longDateLayout))
}

// ShortDate is the compact date used next to the grid.
func ShortDate(c DayCell) string {
	return c.Date.Format(shortDateLayout)
}

// Announcement is the text for the live status region: the focused cell's
// description, or empty when nothing in g is focused.
func Announcement(g Grid, f Focus) string {
	i, ok := f.Index()
	if !ok {
		return ""
	}
	c, ok := g.Cell(i)
	if !ok {
		return ""
	}
	return Describe(c)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
