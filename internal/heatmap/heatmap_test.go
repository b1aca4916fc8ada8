package heatmap

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuse/internal/clock"
	"kuse/internal/tracker"
)

// Wednesday.
var testNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func cellFor(t *testing.T, g Grid, key string) DayCell {
	t.Helper()
	i, ok := g.Index(key)
	require.True(t, ok, "no cell for %s", key)
	return g.Cells[i]
}

func TestBucket(t *testing.T) {
	for n := 0; n <= 4; n++ {
		assert.Equal(t, n, Bucket(n))
	}
	for _, n := range []int{5, 6, 10, 1000} {
		assert.Equal(t, 4, Bucket(n))
	}
	assert.Equal(t, 0, Bucket(-3))
}

func TestBuildShape(t *testing.T) {
	g := Build(testNow, nil, nil, "")

	require.Len(t, g.Cells, CellCount)
	weeks := g.Weeks()
	require.Len(t, weeks, WeekCount)
	for _, w := range weeks {
		assert.Len(t, w, DayCount)
		assert.Equal(t, time.Sunday, w[0].Date.Weekday())
		assert.Equal(t, time.Saturday, w[DayCount-1].Date.Weekday())
	}

	seen := make(map[string]bool)
	for i, c := range g.Cells {
		assert.False(t, seen[c.DateKey], "duplicate %s", c.DateKey)
		seen[c.DateKey] = true
		if i > 0 {
			prev := g.Cells[i-1].Date
			assert.Equal(t, clock.DateKey(prev.AddDate(0, 0, 1)), c.DateKey)
		}
	}
}

func TestBuildAnchorsToday(t *testing.T) {
	g := Build(testNow, nil, nil, "")

	today, ok := g.Cell(g.TodayIndex)
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", today.DateKey)
	assert.False(t, today.Future)
	assert.Equal(t, "2023-01-01", g.Cells[0].DateKey)

	for i, c := range g.Cells {
		assert.Equal(t, i > g.TodayIndex, c.Future, c.DateKey)
	}
	assert.Equal(t, "2024-01-06", g.Cells[CellCount-1].DateKey)
}

func TestBuildOnSaturdayEndsWithToday(t *testing.T) {
	now := time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)
	g := Build(now, nil, nil, "")

	assert.Equal(t, CellCount-1, g.TodayIndex)
	assert.Equal(t, "2024-01-06", g.Cells[CellCount-1].DateKey)
}

// Sao Paulo started DST at 00:00 on Sunday 2018-11-04, so that day had no
// local midnight.
func TestBuildMidnightDSTStart(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	t.Run("changeover day appears once", func(t *testing.T) {
		now := time.Date(2019, 3, 13, 12, 0, 0, 0, loc)
		checkIns := []tracker.CheckIn{{HabitID: "h1", Date: "2018-11-04T15:00:00Z"}}
		g := Build(now, checkIns, nil, "")

		require.Len(t, g.Cells, CellCount)
		seen := make(map[string]int)
		for i, c := range g.Cells {
			seen[c.DateKey]++
			assert.Equal(t, time.Weekday(i%DayCount), c.Date.Weekday(), c.DateKey)
		}
		for key, n := range seen {
			assert.Equal(t, 1, n, "duplicate %s", key)
		}
		c := cellFor(t, g, "2018-11-04")
		assert.Equal(t, 1, c.HabitCount)
		assert.Equal(t, "2018-11-05", g.Cells[239].DateKey)
	})

	t.Run("today in the changeover week", func(t *testing.T) {
		now := time.Date(2018, 11, 7, 12, 0, 0, 0, loc)
		g := Build(now, nil, nil, "")

		assert.Equal(t, time.Sunday, g.Cells[0].Date.Weekday())
		assert.Equal(t, "2018-11-07", g.Cells[g.TodayIndex].DateKey)
		assert.Equal(t, "2018-11-04", g.Cells[(WeekCount-1)*DayCount].DateKey)
	})
}

func TestBuildGroupsCheckInsByLocalDay(t *testing.T) {
	checkIns := []tracker.CheckIn{
		{HabitID: "h1", Date: "2024-01-01T10:00:00Z"},
		{HabitID: "h1", Date: "2024-01-01T22:00:00Z"},
	}

	g := Build(testNow, checkIns, nil, "")
	c := cellFor(t, g, "2024-01-01")
	assert.Equal(t, 2, c.HabitCount)
	assert.Equal(t, 2, c.GreenLevel)
	assert.True(t, c.HasCompletedItems)
	assert.Equal(t, Green2, ResolveColor(c))

	// The late check-in belongs to the next day east of UTC.
	tokyo := time.FixedZone("JST", 9*60*60)
	g = Build(testNow.In(tokyo), checkIns, nil, "")
	assert.Equal(t, 1, cellFor(t, g, "2024-01-01").HabitCount)
	assert.Equal(t, 1, cellFor(t, g, "2024-01-02").HabitCount)
}

func TestBuildTodoCounts(t *testing.T) {
	var todos []tracker.Todo
	for i := 0; i < 5; i++ {
		todos = append(todos, tracker.Todo{ID: string(rune('a' + i)), Date: "2024-01-02", Completed: i < 2})
	}
	checkIns := []tracker.CheckIn{
		{HabitID: "h1", Date: "2024-01-02T09:00:00Z"},
		{HabitID: "h2", Date: "2024-01-02T09:30:00Z"},
	}

	g := Build(testNow, checkIns, todos, "")
	c := cellFor(t, g, "2024-01-02")
	assert.Equal(t, 5, c.TodoCount)
	assert.Equal(t, 2, c.CompletedTodoCount)
	assert.Equal(t, 3, c.IncompleteTodoCount)
	assert.Equal(t, 3, c.OrangeLevel)
	assert.Equal(t, 4, c.GreenLevel)
	assert.True(t, c.HasIncompleteTodos)
	assert.True(t, c.HasCompletedItems)
	assert.Equal(t, Orange3, ResolveColor(c))

	for _, c := range g.Cells {
		assert.Equal(t, c.TodoCount-c.CompletedTodoCount, c.IncompleteTodoCount)
		assert.GreaterOrEqual(t, c.IncompleteTodoCount, 0)
	}
}

func TestBuildFilterByHabit(t *testing.T) {
	checkIns := []tracker.CheckIn{
		{HabitID: "h1", Date: "2024-01-01T10:00:00Z"},
		{HabitID: "h2", Date: "2024-01-01T11:00:00Z"},
		{HabitID: "h2", Date: "2023-12-30T11:00:00Z"},
	}

	g := Build(testNow, checkIns, nil, "h1")
	assert.Equal(t, 1, cellFor(t, g, "2024-01-01").HabitCount)
	assert.Equal(t, 0, cellFor(t, g, "2023-12-30").HabitCount)

	g = Build(testNow, checkIns, nil, "missing")
	for _, c := range g.Cells {
		assert.Zero(t, c.HabitCount, c.DateKey)
		assert.Zero(t, c.GreenLevel, c.DateKey)
		assert.Equal(t, Green0, ResolveColor(c))
	}
}

func TestBuildSkipsMalformedDates(t *testing.T) {
	checkIns := []tracker.CheckIn{
		{HabitID: "h1", Date: "not a date"},
		{HabitID: "h1", Date: ""},
		{HabitID: "h1", Date: "2024-01-01T10:00:00.000Z"},
	}
	todos := []tracker.Todo{
		{ID: "t1", Date: ""},
		{ID: "t2", Date: "yesterday"},
	}

	g := Build(testNow, checkIns, todos, "")
	require.Len(t, g.Cells, CellCount)
	total := 0
	for _, c := range g.Cells {
		total += c.HabitCount + c.TodoCount
	}
	assert.Equal(t, 1, total)
}

func TestBuildIgnoresOutOfRangeActivity(t *testing.T) {
	checkIns := []tracker.CheckIn{{HabitID: "h1", Date: "2020-05-05T10:00:00Z"}}
	g := Build(testNow, checkIns, nil, "")
	for _, c := range g.Cells {
		assert.Zero(t, c.HabitCount)
	}
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	checkIns := []tracker.CheckIn{{HabitID: "h1", Date: " 2024-01-01T10:00:00Z "}}
	todos := []tracker.Todo{{ID: "t1", Date: "2024-01-01"}}
	Build(testNow, checkIns, todos, "")
	assert.Equal(t, " 2024-01-01T10:00:00Z ", checkIns[0].Date)
	assert.Equal(t, "2024-01-01", todos[0].Date)
}
