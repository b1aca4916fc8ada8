package clock

import "time"

// Clock reports the current local time.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant. Its location is treated as local.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// DateKey formats t as a local calendar date (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

const DateLayout = "2006-01-02"
