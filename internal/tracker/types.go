package tracker

import (
	"strings"
	"time"
)

const DefaultColor = "default"

type Habit struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

// CheckIn marks one completion of a habit. Date holds the raw RFC3339
// timestamp as it was stored; use Time to interpret it.
type CheckIn struct {
	ID      int64
	HabitID string
	Date    string
	Message string
}

// Time parses the check-in timestamp. Fractional seconds are accepted.
func (c CheckIn) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(c.Date))
}

// Todo is a task bound to a single local calendar day (Date is YYYY-MM-DD).
type Todo struct {
	ID        string
	Name      string
	Completed bool
	Date      string
	CreatedAt time.Time
}
