package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kuse/internal/tracker"
)

// Format selects the encoding used by Export and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Snapshot is the document written by Export. Field names follow the
// browser local-storage records so data can move between the two.
type Snapshot struct {
	Habits   []habitRecord   `json:"habits" yaml:"habits"`
	CheckIns []checkInRecord `json:"checkIns" yaml:"checkIns"`
	Todos    []todoRecord    `json:"todos" yaml:"todos"`
}

type habitRecord struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color" yaml:"color"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

type checkInRecord struct {
	HabitID string `json:"habitId" yaml:"habitId"`
	Date    string `json:"date" yaml:"date"`
	Message string `json:"message" yaml:"message"`
}

type todoRecord struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Completed bool   `json:"completed" yaml:"completed"`
	Date      string `json:"date" yaml:"date"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

func (s *Store) Export(w io.Writer, f Format) error {
	habits, err := s.LoadHabits()
	if err != nil {
		return fmt.Errorf("load habits: %w", err)
	}
	checkIns, err := s.LoadCheckIns()
	if err != nil {
		return fmt.Errorf("load check-ins: %w", err)
	}
	todos, err := s.LoadTodos()
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}

	snap := Snapshot{
		Habits:   make([]habitRecord, 0, len(habits)),
		CheckIns: make([]checkInRecord, 0, len(checkIns)),
		Todos:    make([]todoRecord, 0, len(todos)),
	}
	for _, h := range habits {
		snap.Habits = append(snap.Habits, habitRecord{ID: h.ID, Name: h.Name, Color: h.Color, CreatedAt: formatTime(h.CreatedAt)})
	}
	for _, c := range checkIns {
		snap.CheckIns = append(snap.CheckIns, checkInRecord{HabitID: c.HabitID, Date: c.Date, Message: c.Message})
	}
	for _, t := range todos {
		snap.Todos = append(snap.Todos, todoRecord{ID: t.ID, Name: t.Name, Completed: t.Completed, Date: t.Date, CreatedAt: formatTime(t.CreatedAt)})
	}

	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces every stored record with the contents of r. The document
// is validated before anything is deleted.
func (s *Store) Import(r io.Reader, f Format) error {
	var snap Snapshot
	var err error
	if f == FormatYAML {
		err = yaml.NewDecoder(r).Decode(&snap)
	} else {
		err = json.NewDecoder(r).Decode(&snap)
	}
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, table := range []string{"check_ins", "todos", "habits"} {
		if _, err := tx.Exec(`DELETE FROM ` + table + `;`); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, h := range snap.Habits {
		err := insertHabit(tx, tracker.Habit{ID: h.ID, Name: h.Name, Color: h.Color, CreatedAt: parseTime(h.CreatedAt)})
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("import habit %s: %w", h.ID, err)
		}
	}
	for _, c := range snap.CheckIns {
		if _, err := insertCheckIn(tx, tracker.CheckIn{HabitID: c.HabitID, Date: c.Date, Message: c.Message}); err != nil {
			tx.Rollback()
			return fmt.Errorf("import check-in: %w", err)
		}
	}
	for _, t := range snap.Todos {
		created := parseTime(t.CreatedAt)
		if created.IsZero() {
			created = time.Now()
		}
		err := insertTodo(tx, tracker.Todo{ID: t.ID, Name: t.Name, Completed: t.Completed, Date: t.Date, CreatedAt: created})
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("import todo %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
