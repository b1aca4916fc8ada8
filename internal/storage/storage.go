package storage

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kuse/internal/tracker"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS habits (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS check_ins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	habit_id TEXT NOT NULL,
	date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_check_ins_habit ON check_ins(habit_id);
CREATE TABLE IF NOT EXISTS todos (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	date TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_date ON todos(date);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	if err := s.ensureColumns("habits", map[string]string{
		"color": "ALTER TABLE habits ADD COLUMN color TEXT NOT NULL DEFAULT 'default';",
	}); err != nil {
		return err
	}
	return s.ensureColumns("check_ins", map[string]string{
		"message": "ALTER TABLE check_ins ADD COLUMN message TEXT NOT NULL DEFAULT '';",
	})
}

// ensureColumns adds columns introduced after a table was first created.
func (s *Store) ensureColumns(table string, required map[string]string) error {
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(` + table + `);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LoadHabits() ([]tracker.Habit, error) {
	rows, err := s.db.Query(`SELECT id, name, color, created_at FROM habits ORDER BY rowid;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []tracker.Habit
	for rows.Next() {
		var h tracker.Habit
		var createdStr string
		if err := rows.Scan(&h.ID, &h.Name, &h.Color, &createdStr); err != nil {
			return nil, err
		}
		h.CreatedAt = parseTime(createdStr)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *Store) InsertHabit(h tracker.Habit) error {
	return insertHabit(s.db, h)
}

// DeleteHabit removes the habit together with all of its check-ins.
func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM check_ins WHERE habit_id = ?;`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM habits WHERE id = ?;`, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) LoadCheckIns() ([]tracker.CheckIn, error) {
	rows, err := s.db.Query(`SELECT id, habit_id, date, message FROM check_ins ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkIns []tracker.CheckIn
	for rows.Next() {
		var c tracker.CheckIn
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Date, &c.Message); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checkIns, nil
}

// InsertCheckIn stores c and returns the new row id.
func (s *Store) InsertCheckIn(c tracker.CheckIn) (int64, error) {
	return insertCheckIn(s.db, c)
}

func (s *Store) DeleteCheckIn(id int64) error {
	_, err := s.db.Exec(`DELETE FROM check_ins WHERE id = ?;`, id)
	return err
}

func (s *Store) UpdateCheckInMessage(id int64, message string) error {
	_, err := s.db.Exec(`UPDATE check_ins SET message = ? WHERE id = ?;`, message, id)
	return err
}

func (s *Store) LoadTodos() ([]tracker.Todo, error) {
	rows, err := s.db.Query(`SELECT id, name, completed, date, created_at FROM todos ORDER BY rowid;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []tracker.Todo
	for rows.Next() {
		var t tracker.Todo
		var completed int
		var createdStr string
		if err := rows.Scan(&t.ID, &t.Name, &completed, &t.Date, &createdStr); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.CreatedAt = parseTime(createdStr)
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

func (s *Store) InsertTodo(t tracker.Todo) error {
	return insertTodo(s.db, t)
}

func (s *Store) SetTodoCompleted(id string, completed bool) error {
	_, err := s.db.Exec(`UPDATE todos SET completed = ? WHERE id = ?;`, boolToInt(completed), id)
	return err
}

func (s *Store) DeleteTodo(id string) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?;`, id)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertHabit(db execer, h tracker.Habit) error {
	color := h.Color
	if color == "" {
		color = tracker.DefaultColor
	}
	_, err := db.Exec(`INSERT INTO habits (id, name, color, created_at) VALUES (?, ?, ?, ?);`,
		h.ID, h.Name, color, formatTime(h.CreatedAt))
	return err
}

func insertCheckIn(db execer, c tracker.CheckIn) (int64, error) {
	res, err := db.Exec(`INSERT INTO check_ins (habit_id, date, message) VALUES (?, ?, ?);`,
		c.HabitID, c.Date, c.Message)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertTodo(db execer, t tracker.Todo) error {
	_, err := db.Exec(`INSERT INTO todos (id, name, completed, date, created_at) VALUES (?, ?, ?, ?, ?);`,
		t.ID, t.Name, boolToInt(t.Completed), t.Date, formatTime(t.CreatedAt))
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
