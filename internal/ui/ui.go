package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"kuse/internal/config"
	"kuse/internal/heatmap"
	"kuse/internal/tracker"
)

type screen int

const (
	screenHome screen = iota
	screenDetail
)

type section int

const (
	sectionHabits section = iota
	sectionTodos
	sectionGrid
)

type mode int

const (
	modeList mode = iota
	modeAddHabit
	modeAddTodo
	modeCheckIn
)

type pendingDelete struct {
	habit bool
	id    string
	name  string
}

type Model struct {
	svc     *tracker.Service
	cfg     config.Config
	log     *zap.Logger
	palette heatmap.Palette

	screen      screen
	section     section
	prevSection section
	mode        mode
	input       textinput.Model

	habits      []tracker.Habit
	checkIns    []tracker.CheckIn
	todos       []tracker.Todo
	hasAnyData  bool
	habitCursor int
	todoCursor  int

	detail       *tracker.Habit
	history      []tracker.CheckIn
	todayCheckIn *tracker.CheckIn

	grid    heatmap.Grid
	gridDay string
	focus   heatmap.Focus

	status     string
	announce   string
	showHelp   bool
	confirmDel bool
	pendingDel *pendingDelete
}

// cellFocusedMsg is delivered after a grid transition has been committed,
// and moves the live announcement to the newly focused cell.
type cellFocusedMsg struct {
	index int
}

type dayTickMsg struct{}

func focusCell(index int) tea.Cmd {
	return func() tea.Msg {
		return cellFocusedMsg{index: index}
	}
}

func dayTick() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg {
		return dayTickMsg{}
	})
}

func New(svc *tracker.Service, cfg config.Config, log *zap.Logger) (Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		svc:     svc,
		cfg:     cfg,
		log:     log,
		palette: heatmap.PaletteFor(cfg.Theme),
		input:   ti,
		mode:    modeList,
		status:  fmt.Sprintf("Press '%s' to add, space to toggle, '%s' for shortcuts.", cfg.Keys.Add, cfg.Keys.Help),
	}
	if err := m.reload(); err != nil {
		return m, err
	}
	return m, nil
}

func Run(svc *tracker.Service, cfg config.Config, log *zap.Logger) error {
	m, err := New(svc, cfg, log)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return dayTick()
}

// reload refreshes every record from the store and rebuilds the grid.
func (m *Model) reload() error {
	snap, err := m.svc.Snapshot()
	if err != nil {
		return err
	}
	m.habits = snap.Habits
	m.checkIns = snap.CheckIns
	m.todos = m.svc.TodaysTodos(snap.Todos)
	m.hasAnyData = len(snap.Habits) > 0 || len(snap.Todos) > 0
	m.habitCursor = clampCursor(m.habitCursor, len(m.habits))
	m.todoCursor = clampCursor(m.todoCursor, len(m.todos))

	now := m.svc.Now()
	m.gridDay = m.svc.Today()
	if m.screen == screenDetail && m.detail != nil {
		var found *tracker.Habit
		for i := range m.habits {
			if m.habits[i].ID == m.detail.ID {
				found = &m.habits[i]
				break
			}
		}
		if found == nil {
			m.goHome()
			m.status = "Habit no longer exists"
		} else {
			m.detail = found
			m.grid = heatmap.Build(now, snap.CheckIns, nil, found.ID)
			m.history, err = m.svc.History(found.ID)
			if err != nil {
				return err
			}
			m.todayCheckIn = nil
			if c, ok, err := m.svc.TodaysCheckIn(found.ID); err == nil && ok {
				m.todayCheckIn = &c
			}
			return nil
		}
	}
	m.grid = heatmap.Build(now, snap.CheckIns, snap.Todos, "")
	m.log.Debug("grid rebuilt", zap.String("today", m.gridDay), zap.Int("check_ins", len(snap.CheckIns)), zap.Int("todos", len(snap.Todos)))
	return nil
}

// rollOver rebuilds the grid for a new day. The grid shifts by a week on
// Sundays, so focus follows the date it was on rather than the index.
func (m *Model) rollOver() {
	focusedKey := ""
	if i, ok := m.focus.Index(); ok {
		if c, ok := m.grid.Cell(i); ok {
			focusedKey = c.DateKey
		}
	}
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	if _, ok := m.focus.Index(); !ok {
		return
	}
	if i, ok := m.grid.Index(focusedKey); ok {
		m.focus.Set(i)
	} else {
		m.focus.Set(m.grid.TodayIndex)
	}
	m.announce = heatmap.Announcement(m.grid, m.focus)
}

func (m *Model) goHome() {
	m.screen = screenHome
	m.detail = nil
	m.history = nil
	m.todayCheckIn = nil
	m.section = sectionHabits
	m.focus.Clear()
	m.announce = ""
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode != modeList {
			return m.updateInputMode(msg.String(), msg)
		}
		if m.section == sectionGrid {
			return m.updateGridMode(msg.String())
		}
		if m.screen == screenDetail {
			return m.updateDetailMode(msg.String())
		}
		return m.updateListMode(msg.String())
	case cellFocusedMsg:
		if i, ok := m.focus.Index(); ok && i == msg.index {
			m.announce = heatmap.Announcement(m.grid, m.focus)
		}
	case dayTickMsg:
		if m.svc.Today() != m.gridDay {
			m.rollOver()
		}
		return m, dayTick()
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Help:
		m.showHelp = !m.showHelp
	case m.cfg.Keys.Switch:
		if m.section == sectionHabits {
			m.section = sectionTodos
		} else {
			m.section = sectionHabits
		}
	case m.cfg.Keys.Down, "down":
		m.moveCursor(1)
	case m.cfg.Keys.Up, "up":
		m.moveCursor(-1)
	case m.cfg.Keys.Add, "ctrl+n":
		if m.section == sectionTodos {
			return m.startInput(modeAddTodo, "New todo for today...", "")
		}
		return m.startInput(modeAddHabit, "New habit...", "")
	case m.cfg.Keys.Grid:
		return m.enterGrid()
	case m.cfg.Keys.Toggle:
		if m.section == sectionTodos {
			return m.toggleTodo()
		}
		return m.toggleHabit()
	case m.cfg.Keys.Delete, "delete", "backspace":
		return m.askDelete()
	case m.cfg.Keys.Detail:
		if m.section != sectionHabits || len(m.habits) == 0 {
			return m, nil
		}
		h := m.habits[m.habitCursor]
		m.screen = screenDetail
		m.detail = &h
		m.focus.Clear()
		m.announce = ""
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Press '%s' to check in, '%s' to go back.", m.cfg.Keys.CheckIn, m.cfg.Keys.Cancel)
	}
	return m, nil
}

// moveCursor steps through the active list, wrapping at both ends.
func (m *Model) moveCursor(delta int) {
	switch m.section {
	case sectionHabits:
		m.habitCursor = wrapIndex(m.habitCursor+delta, len(m.habits))
	case sectionTodos:
		m.todoCursor = wrapIndex(m.todoCursor+delta, len(m.todos))
	}
}

func (m Model) toggleHabit() (tea.Model, tea.Cmd) {
	if len(m.habits) == 0 {
		return m, nil
	}
	h := m.habits[m.habitCursor]
	checked, err := m.svc.ToggleCheckIn(h.ID)
	if err != nil {
		m.status = fmt.Sprintf("toggle failed: %v", err)
		return m, nil
	}
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}
	if checked {
		m.status = "Checked: " + h.Name
	} else {
		m.status = "Unchecked: " + h.Name
	}
	return m, nil
}

func (m Model) toggleTodo() (tea.Model, tea.Cmd) {
	if len(m.todos) == 0 {
		return m, nil
	}
	t, err := m.svc.ToggleTodo(m.todos[m.todoCursor].ID)
	if err != nil {
		m.status = fmt.Sprintf("toggle failed: %v", err)
		return m, nil
	}
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}
	if t.Completed {
		m.status = "Completed: " + t.Name
	} else {
		m.status = "Marked as not completed: " + t.Name
	}
	return m, nil
}

func (m Model) askDelete() (tea.Model, tea.Cmd) {
	switch {
	case m.section == sectionHabits && len(m.habits) > 0:
		h := m.habits[m.habitCursor]
		m.pendingDel = &pendingDelete{habit: true, id: h.ID, name: h.Name}
	case m.section == sectionTodos && len(m.todos) > 0:
		t := m.todos[m.todoCursor]
		m.pendingDel = &pendingDelete{id: t.ID, name: t.Name}
	default:
		return m, nil
	}
	m.confirmDel = true
	m.status = fmt.Sprintf("Delete \"%s\"? y/n", m.pendingDel.name)
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		p := m.pendingDel
		m.confirmDel = false
		m.pendingDel = nil
		if p == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		var err error
		if p.habit {
			err = m.svc.DeleteHabit(p.id)
		} else {
			err = m.svc.DeleteTodo(p.id)
		}
		if err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
			return m, nil
		}
		if p.habit {
			m.status = "Deleted habit: " + p.name
		} else {
			m.status = "Deleted todo: " + p.name
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) startInput(md mode, placeholder, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	switch md {
	case modeAddHabit:
		m.section = sectionHabits
		m.status = "Add habit: type a name and press Enter"
	case modeAddTodo:
		m.section = sectionTodos
		m.status = "Add todo: type a name and press Enter"
	case modeCheckIn:
		m.status = "Check in: type an optional message and press Enter"
	}
	return m, cmd
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		return m.submitInput()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	var status string
	var err error

	switch m.mode {
	case modeAddHabit:
		var h tracker.Habit
		if h, err = m.svc.AddHabit(value); err == nil {
			status = "Added habit: " + h.Name
		}
	case modeAddTodo:
		var t tracker.Todo
		if t, err = m.svc.AddTodo(value); err == nil {
			status = "Added todo: " + t.Name
		}
	case modeCheckIn:
		if m.detail != nil {
			if _, err = m.svc.CheckIn(m.detail.ID, value); err == nil {
				status = "Checked: " + m.detail.Name
			}
		}
	}
	if errors.Is(err, tracker.ErrEmptyName) {
		m.status = "Name cannot be empty"
		return m, nil
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	added := m.mode
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m, nil
	}
	switch added {
	case modeAddHabit:
		m.habitCursor = clampCursor(len(m.habits)-1, len(m.habits))
	case modeAddTodo:
		m.todoCursor = clampCursor(len(m.todos)-1, len(m.todos))
	}
	m.status = status
	return m, nil
}

func (m Model) updateDetailMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Help:
		m.showHelp = !m.showHelp
	case m.cfg.Keys.Cancel, "backspace":
		m.goHome()
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
			return m, nil
		}
		m.status = "Back to all habits"
	case m.cfg.Keys.CheckIn:
		msg := ""
		if m.todayCheckIn != nil {
			msg = m.todayCheckIn.Message
		}
		return m.startInput(modeCheckIn, "Check in message (optional)...", msg)
	case m.cfg.Keys.Grid:
		return m.enterGrid()
	}
	return m, nil
}

// enterGrid gives the heatmap keyboard focus, starting on today's cell.
func (m Model) enterGrid() (tea.Model, tea.Cmd) {
	if m.screen == screenHome && !m.hasAnyData {
		m.status = "Nothing to show yet"
		return m, nil
	}
	m.prevSection = m.section
	m.section = sectionGrid
	m.focus.Set(m.grid.TodayIndex)
	i, _ := m.focus.Index()
	m.status = "Heatmap: arrows move, home/end jump within a week, esc leaves"
	return m, focusCell(i)
}

func (m Model) updateGridMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Cancel, m.cfg.Keys.Grid:
		m.focus.Clear()
		m.announce = ""
		m.section = m.prevSection
		m.status = ""
		return m, nil
	}
	i, moved := m.focus.Move(gridKey(key, m.cfg.Keys))
	if !moved {
		return m, nil
	}
	return m, focusCell(i)
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "No message"
	}
	return v
}
