package storage

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuse/internal/tracker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "kuse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpenTwiceKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kuse.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertHabit(tracker.Habit{ID: "h1", Name: "Read"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	habits, err := s.LoadHabits()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, tracker.DefaultColor, habits[0].Color)
}

func TestHabitsAndCheckIns(t *testing.T) {
	s := openTestStore(t)
	created := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.InsertHabit(tracker.Habit{ID: "h1", Name: "Read", Color: "blue", CreatedAt: created}))
	require.NoError(t, s.InsertHabit(tracker.Habit{ID: "h2", Name: "Run", CreatedAt: created}))

	habits, err := s.LoadHabits()
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "Read", habits[0].Name)
	assert.Equal(t, "blue", habits[0].Color)
	assert.True(t, created.Equal(habits[0].CreatedAt))

	id1, err := s.InsertCheckIn(tracker.CheckIn{HabitID: "h1", Date: "2024-01-01T10:00:00Z"})
	require.NoError(t, err)
	_, err = s.InsertCheckIn(tracker.CheckIn{HabitID: "h2", Date: "2024-01-01T11:00:00Z", Message: "5k"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateCheckInMessage(id1, "chapter 3"))
	checkIns, err := s.LoadCheckIns()
	require.NoError(t, err)
	require.Len(t, checkIns, 2)
	assert.Equal(t, "chapter 3", checkIns[0].Message)
	assert.Equal(t, "2024-01-01T10:00:00Z", checkIns[0].Date)

	require.NoError(t, s.DeleteHabit("h2"))
	habits, err = s.LoadHabits()
	require.NoError(t, err)
	assert.Len(t, habits, 1)
	checkIns, err = s.LoadCheckIns()
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	assert.Equal(t, "h1", checkIns[0].HabitID)

	require.NoError(t, s.DeleteCheckIn(id1))
	checkIns, err = s.LoadCheckIns()
	require.NoError(t, err)
	assert.Empty(t, checkIns)
}

func TestTodos(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	require.NoError(t, s.InsertTodo(tracker.Todo{ID: "t1", Name: "Write report", Date: "2024-01-02", CreatedAt: now}))
	require.NoError(t, s.InsertTodo(tracker.Todo{ID: "t2", Name: "Call mum", Date: "2024-01-02", CreatedAt: now}))
	require.NoError(t, s.SetTodoCompleted("t1", true))

	todos, err := s.LoadTodos()
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.True(t, todos[0].Completed)
	assert.False(t, todos[1].Completed)

	require.NoError(t, s.DeleteTodo("t1"))
	todos, err = s.LoadTodos()
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "t2", todos[0].ID)
}

func TestExportImport(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	src := openTestStore(t)
	require.NoError(t, src.InsertHabit(tracker.Habit{ID: "h1", Name: "Read", Color: tracker.DefaultColor, CreatedAt: created}))
	_, err := src.InsertCheckIn(tracker.CheckIn{HabitID: "h1", Date: "2024-01-01T10:00:00.000Z", Message: "ok"})
	require.NoError(t, err)
	_, err = src.InsertCheckIn(tracker.CheckIn{HabitID: "h1", Date: "not a date"})
	require.NoError(t, err)
	require.NoError(t, src.InsertTodo(tracker.Todo{ID: "t1", Name: "Plan", Completed: true, Date: "2024-01-01", CreatedAt: created}))

	want := snapshotOf(t, src)

	tests := []struct {
		format   Format
		contains []string
	}{
		{FormatJSON, []string{`"checkIns"`, `"habitId": "h1"`, `"createdAt"`}},
		{FormatYAML, []string{"checkIns:", "habitId: h1", "createdAt:"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, src.Export(&buf, tt.format))
			for _, c := range tt.contains {
				assert.Contains(t, buf.String(), c)
			}

			dst := openTestStore(t)
			require.NoError(t, dst.InsertHabit(tracker.Habit{ID: "stale", Name: "Old", CreatedAt: created}))
			require.NoError(t, dst.Import(&buf, tt.format))

			got := snapshotOf(t, dst)
			ignoreRowID := cmpopts.IgnoreFields(tracker.CheckIn{}, "ID")
			if diff := cmp.Diff(want, got, ignoreRowID); diff != "" {
				t.Errorf("imported records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type records struct {
	Habits   []tracker.Habit
	CheckIns []tracker.CheckIn
	Todos    []tracker.Todo
}

func snapshotOf(t *testing.T, s *Store) records {
	t.Helper()
	var r records
	var err error
	r.Habits, err = s.LoadHabits()
	require.NoError(t, err)
	r.CheckIns, err = s.LoadCheckIns()
	require.NoError(t, err)
	r.Todos, err = s.LoadTodos()
	require.NoError(t, err)
	return r
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		invalid bool
	}{
		{name: "malformed json", format: FormatJSON, input: "{not json"},
		{name: "malformed yaml", format: FormatYAML, input: "habits: [unclosed"},
		{name: "habit without name", format: FormatJSON, input: `{"habits":[{"id":"h2","name":""}]}`, invalid: true},
		{name: "todo date", format: FormatJSON, input: `{"todos":[{"id":"t2","name":"x","date":"Jan 1"}]}`, invalid: true},
		{name: "check-in without habit", format: FormatYAML, input: "checkIns:\n  - date: \"2024-01-01T00:00:00Z\"\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			require.NoError(t, s.InsertHabit(tracker.Habit{ID: "h1", Name: "Read", CreatedAt: time.Now()}))

			err := s.Import(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidSnapshot)
			}

			habits, err := s.LoadHabits()
			require.NoError(t, err)
			assert.Len(t, habits, 1)
		})
	}
}

func TestImportKeepsMalformedCheckInDates(t *testing.T) {
	s := openTestStore(t)
	doc := `{"habits":[{"id":"h1","name":"Read"}],"checkIns":[{"habitId":"h1","date":"garbage"}]}`
	require.NoError(t, s.Import(strings.NewReader(doc), FormatJSON))

	checkIns, err := s.LoadCheckIns()
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	assert.Equal(t, "garbage", checkIns[0].Date)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("backup.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("/tmp/BACKUP.YML"))
	assert.Equal(t, FormatJSON, FormatForPath("backup.json"))
	assert.Equal(t, FormatJSON, FormatForPath("-"))
}
