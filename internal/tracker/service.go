// Package tracker holds the habit, check-in and todo records and the
// operations the UI and CLI perform on them.
package tracker

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kuse/internal/clock"
)

var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrHabitNotFound = errors.New("habit not found")
	ErrTodoNotFound  = errors.New("todo not found")
)

// Store persists records. Implemented by storage.Store.
type Store interface {
	LoadHabits() ([]Habit, error)
	InsertHabit(h Habit) error
	DeleteHabit(id string) error

	LoadCheckIns() ([]CheckIn, error)
	InsertCheckIn(c CheckIn) (int64, error)
	DeleteCheckIn(id int64) error
	UpdateCheckInMessage(id int64, message string) error

	LoadTodos() ([]Todo, error)
	InsertTodo(t Todo) error
	SetTodoCompleted(id string, completed bool) error
	DeleteTodo(id string) error
}

type Service struct {
	store Store
	clock clock.Clock
	log   *zap.Logger
	newID func() string
}

func NewService(store Store, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		clock: clk,
		log:   log,
		newID: uuid.NewString,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Today is the current local date as YYYY-MM-DD.
func (s *Service) Today() string {
	return clock.DateKey(s.clock.Now())
}

// Snapshot holds every record, as fed to the heatmap.
type Snapshot struct {
	Habits   []Habit
	CheckIns []CheckIn
	Todos    []Todo
}

func (s *Service) Snapshot() (Snapshot, error) {
	habits, err := s.store.LoadHabits()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load habits: %w", err)
	}
	checkIns, err := s.store.LoadCheckIns()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load check-ins: %w", err)
	}
	todos, err := s.store.LoadTodos()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load todos: %w", err)
	}
	return Snapshot{Habits: habits, CheckIns: checkIns, Todos: todos}, nil
}

func (s *Service) Habits() ([]Habit, error) {
	return s.store.LoadHabits()
}

func (s *Service) Habit(id string) (Habit, error) {
	habits, err := s.store.LoadHabits()
	if err != nil {
		return Habit{}, err
	}
	for _, h := range habits {
		if h.ID == id {
			return h, nil
		}
	}
	return Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
}

func (s *Service) AddHabit(name string) (Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Habit{}, ErrEmptyName
	}
	h := Habit{
		ID:        s.newID(),
		Name:      name,
		Color:     DefaultColor,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.InsertHabit(h); err != nil {
		return Habit{}, fmt.Errorf("save habit: %w", err)
	}
	s.log.Info("habit added", zap.String("habit_id", h.ID), zap.String("name", h.Name))
	return h, nil
}

// DeleteHabit removes the habit and every check-in recorded for it.
func (s *Service) DeleteHabit(id string) error {
	if err := s.store.DeleteHabit(id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	s.log.Info("habit deleted", zap.String("habit_id", id))
	return nil
}

// ToggleCheckIn checks the habit in for today, or removes today's check-in
// if there already is one. It reports whether the habit is now checked in.
func (s *Service) ToggleCheckIn(habitID string) (bool, error) {
	checkIns, err := s.store.LoadCheckIns()
	if err != nil {
		return false, fmt.Errorf("load check-ins: %w", err)
	}
	if existing, ok := s.todaysCheckIn(checkIns, habitID); ok {
		if err := s.store.DeleteCheckIn(existing.ID); err != nil {
			return false, fmt.Errorf("remove check-in: %w", err)
		}
		s.log.Info("check-in removed", zap.String("habit_id", habitID))
		return false, nil
	}
	if _, err := s.insertCheckIn(habitID, ""); err != nil {
		return false, err
	}
	return true, nil
}

// CheckIn records today's check-in with a message. If the habit is already
// checked in today only the message is replaced.
func (s *Service) CheckIn(habitID, message string) (CheckIn, error) {
	if _, err := s.Habit(habitID); err != nil {
		return CheckIn{}, err
	}
	message = strings.TrimSpace(message)
	checkIns, err := s.store.LoadCheckIns()
	if err != nil {
		return CheckIn{}, fmt.Errorf("load check-ins: %w", err)
	}
	if existing, ok := s.todaysCheckIn(checkIns, habitID); ok {
		if err := s.store.UpdateCheckInMessage(existing.ID, message); err != nil {
			return CheckIn{}, fmt.Errorf("update check-in: %w", err)
		}
		existing.Message = message
		s.log.Info("check-in message updated", zap.String("habit_id", habitID))
		return existing, nil
	}
	return s.insertCheckIn(habitID, message)
}

func (s *Service) insertCheckIn(habitID, message string) (CheckIn, error) {
	c := CheckIn{
		HabitID: habitID,
		Date:    s.clock.Now().UTC().Format(time.RFC3339Nano),
		Message: message,
	}
	id, err := s.store.InsertCheckIn(c)
	if err != nil {
		return CheckIn{}, fmt.Errorf("save check-in: %w", err)
	}
	c.ID = id
	s.log.Info("check-in added", zap.String("habit_id", habitID))
	return c, nil
}

// TodaysCheckIn returns the habit's check-in for the current local day.
func (s *Service) TodaysCheckIn(habitID string) (CheckIn, bool, error) {
	checkIns, err := s.store.LoadCheckIns()
	if err != nil {
		return CheckIn{}, false, err
	}
	c, ok := s.todaysCheckIn(checkIns, habitID)
	return c, ok, nil
}

// CheckedToday reports whether checkIns hold a check-in for habitID on the
// current local day.
func (s *Service) CheckedToday(checkIns []CheckIn, habitID string) bool {
	_, ok := s.todaysCheckIn(checkIns, habitID)
	return ok
}

func (s *Service) todaysCheckIn(checkIns []CheckIn, habitID string) (CheckIn, bool) {
	now := s.clock.Now()
	today := clock.DateKey(now)
	for _, c := range checkIns {
		if c.HabitID != habitID {
			continue
		}
		t, err := c.Time()
		if err != nil {
			s.log.Debug("skipping unparseable check-in", zap.Int64("check_in_id", c.ID), zap.String("date", c.Date))
			continue
		}
		if clock.DateKey(t.In(now.Location())) == today {
			return c, true
		}
	}
	return CheckIn{}, false
}

// History returns the habit's check-ins, newest first. Check-ins whose
// timestamp cannot be parsed are listed last.
func (s *Service) History(habitID string) ([]CheckIn, error) {
	checkIns, err := s.store.LoadCheckIns()
	if err != nil {
		return nil, err
	}
	type entry struct {
		c  CheckIn
		t  time.Time
		ok bool
	}
	var entries []entry
	for _, c := range checkIns {
		if c.HabitID != habitID {
			continue
		}
		t, err := c.Time()
		entries = append(entries, entry{c: c, t: t, ok: err == nil})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ok != entries[j].ok {
			return entries[i].ok
		}
		return entries[i].t.After(entries[j].t)
	})
	history := make([]CheckIn, 0, len(entries))
	for _, e := range entries {
		history = append(history, e.c)
	}
	return history, nil
}

// AddTodo creates a todo for the current local day.
func (s *Service) AddTodo(name string) (Todo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Todo{}, ErrEmptyName
	}
	now := s.clock.Now()
	t := Todo{
		ID:        s.newID(),
		Name:      name,
		Date:      clock.DateKey(now),
		CreatedAt: now.UTC(),
	}
	if err := s.store.InsertTodo(t); err != nil {
		return Todo{}, fmt.Errorf("save todo: %w", err)
	}
	s.log.Info("todo added", zap.String("todo_id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// ToggleTodo flips the completion flag and returns the updated todo.
func (s *Service) ToggleTodo(id string) (Todo, error) {
	todos, err := s.store.LoadTodos()
	if err != nil {
		return Todo{}, fmt.Errorf("load todos: %w", err)
	}
	for _, t := range todos {
		if t.ID != id {
			continue
		}
		t.Completed = !t.Completed
		if err := s.store.SetTodoCompleted(id, t.Completed); err != nil {
			return Todo{}, fmt.Errorf("update todo: %w", err)
		}
		s.log.Info("todo toggled", zap.String("todo_id", id), zap.Bool("completed", t.Completed))
		return t, nil
	}
	return Todo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
}

func (s *Service) DeleteTodo(id string) error {
	if err := s.store.DeleteTodo(id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	s.log.Info("todo deleted", zap.String("todo_id", id))
	return nil
}

// TodaysTodos filters todos down to those dated today.
func (s *Service) TodaysTodos(todos []Todo) []Todo {
	today := s.Today()
	var out []Todo
	for _, t := range todos {
		if t.Date == today {
			out = append(out, t)
		}
	}
	return out
}
