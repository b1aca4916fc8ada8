package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kuse/internal/config"
	"kuse/internal/heatmap"
)

func (m Model) View() string {
	var b strings.Builder

	if m.screen == screenDetail && m.detail != nil {
		b.WriteString(m.renderDetail())
	} else {
		b.WriteString(m.renderHome())
	}

	if m.mode != modeList {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(panelStyle.Render(renderShortcuts(m.cfg.Keys)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(renderHelp(m.cfg.Keys, m.screen)))
	return b.String()
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("kuse · habits & todos"))
	b.WriteString("\n\n")

	if m.hasAnyData {
		b.WriteString(m.renderGrid())
		b.WriteString("\n")
	}

	habits := m.renderHabits()
	todos := m.renderTodos()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columnStyle.Render(habits), columnStyle.Render(todos)))
	b.WriteString("\n")
	return b.String()
}

// renderGrid draws the heatmap panel followed by the live region line that
// announces the focused cell.
func (m Model) renderGrid() string {
	header := headerStyle
	if m.section == sectionGrid {
		header = activeHeader
	}
	var b strings.Builder
	b.WriteString(header.Render("Activity"))
	b.WriteString(dimStyle.Render("  " + heatmap.RegionLabel))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(RenderHeatmap(m.grid, m.palette, m.focus)))
	b.WriteString("\n")
	b.WriteString(announceStyle.Render(m.announce))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHabits() string {
	header := headerStyle
	if m.section == sectionHabits {
		header = activeHeader
	}
	var b strings.Builder
	b.WriteString(header.Render("Habits"))
	b.WriteString("\n")
	if len(m.habits) == 0 {
		b.WriteString(dimStyle.Render("No habits yet. Add one above!"))
		return b.String()
	}
	for i, h := range m.habits {
		selected := i == m.habitCursor && m.section == sectionHabits && m.mode == modeList
		b.WriteString(renderItem(h.Name, m.svc.CheckedToday(m.checkIns, h.ID), selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTodos() string {
	header := headerStyle
	if m.section == sectionTodos {
		header = activeHeader
	}
	var b strings.Builder
	b.WriteString(header.Render("Todos"))
	b.WriteString(dimStyle.Render(" · " + m.svc.Today()))
	b.WriteString("\n")
	if len(m.todos) == 0 {
		b.WriteString(dimStyle.Render("No todos for today. Add one above!"))
		return b.String()
	}
	for i, t := range m.todos {
		selected := i == m.todoCursor && m.section == sectionTodos && m.mode == modeList
		b.WriteString(renderItem(t.Name, t.Completed, selected))
		b.WriteString("\n")
	}
	return b.String()
}

func renderItem(name string, done, selected bool) string {
	if selected {
		return selectedStyle.Render(fmt.Sprintf("> %s %s", checkbox(done), name))
	}
	if done {
		return "  " + checkbox(true) + " " + doneStyle.Render(name)
	}
	return fmt.Sprintf("  %s %s", checkbox(false), name)
}

func (m Model) renderDetail() string {
	h := m.detail
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("← %s back to all habits", m.cfg.Keys.Cancel)))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(h.Name))
	if !h.CreatedAt.IsZero() {
		b.WriteString(dimStyle.Render("  Created " + h.CreatedAt.In(m.svc.Now().Location()).Format("Jan 2, 2006")))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if m.todayCheckIn != nil {
		b.WriteString(headerStyle.Render("✓ Checked In Today"))
		b.WriteString("\n")
		b.WriteString("  " + emptyPlaceholder(m.todayCheckIn.Message))
	} else {
		b.WriteString(headerStyle.Render("Check In Today"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  press %s to check in", keyStyle.Render(m.cfg.Keys.CheckIn))))
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("History"))
	b.WriteString("\n")
	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("No check-ins yet. Start tracking!"))
		b.WriteString("\n")
		return b.String()
	}
	loc := m.svc.Now().Location()
	for _, c := range m.history {
		when := c.Date
		if t, err := c.Time(); err == nil {
			when = t.In(loc).Format("Mon, Jan 2, 2006 at 15:04")
		}
		b.WriteString("  " + when)
		if c.Message != "" {
			b.WriteString(dimStyle.Render("  " + c.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderHelp(k config.Keymap, s screen) string {
	if s == screenDetail {
		return fmt.Sprintf("%s check in • %s heatmap • %s back • %s shortcuts • %s quit",
			k.CheckIn, k.Grid, k.Cancel, k.Help, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • %s switch • %s add • space toggle • %s delete • %s detail • %s heatmap • %s shortcuts • %s quit",
		k.Up, k.Down, k.Switch, k.Add, k.Delete, k.Detail, k.Grid, k.Help, k.Quit)
}

func renderShortcuts(k config.Keymap) string {
	rows := [][2]string{
		{k.Help, "Toggle keyboard shortcuts"},
		{k.Add + " / ctrl+n", "Add to the active list"},
		{"space", "Toggle habit check or todo"},
		{k.Down + " / ↓", "Next item"},
		{k.Up + " / ↑", "Previous item"},
		{k.Delete + " / backspace", "Delete focused item"},
		{k.Switch, "Switch between habits and todos"},
		{k.Detail, "Open habit detail"},
		{k.Grid, "Focus the heatmap"},
		{"← → ↑ ↓", "Move by week / day in the heatmap"},
		{"home / end", "First / last day of the week column"},
		{k.Cancel, "Leave heatmap or go back"},
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Keyboard shortcuts"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(keyStyle.Render(padRight(r[0], 20)))
		b.WriteString(r[1])
	}
	return b.String()
}
