package heatmap

// Key is a navigation input understood by the grid.
type Key int

const (
	KeyNone Key = iota
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyHome
	KeyEnd
)

// Navigate returns the index focus moves to when k is pressed on current.
// Moves past an edge are clamped. It reports false for keys that do not
// navigate.
func Navigate(current int, k Key) (int, bool) {
	last := CellCount - 1
	current = clamp(current, 0, last)
	week := current / DayCount

	switch k {
	case KeyRight:
		return min(current+DayCount, last), true
	case KeyLeft:
		return max(current-DayCount, 0), true
	case KeyDown:
		return min(current+1, last), true
	case KeyUp:
		return max(current-1, 0), true
	case KeyHome:
		return week * DayCount, true
	case KeyEnd:
		return min(week*DayCount+DayCount-1, last), true
	default:
		return current, false
	}
}

// Focus tracks which grid cell, if any, has keyboard focus.
type Focus struct {
	index   int
	focused bool
}

// Index returns the focused cell index and whether any cell is focused.
func (f Focus) Index() (int, bool) {
	return f.index, f.focused
}

// Set focuses cell i directly, as when focus arrives from outside the grid.
func (f *Focus) Set(i int) {
	f.index = clamp(i, 0, CellCount-1)
	f.focused = true
}

// Clear drops focus.
func (f *Focus) Clear() {
	f.index = 0
	f.focused = false
}

// Move applies k to the focused cell. It returns the new index and true
// when focus moved; the caller is responsible for moving input focus to
// that cell once the new state is committed.
func (f *Focus) Move(k Key) (int, bool) {
	if !f.focused {
		return 0, false
	}
	next, ok := Navigate(f.index, k)
	if !ok {
		return f.index, false
	}
	f.index = next
	return next, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
