package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kuse/internal/config"
	"kuse/internal/heatmap"
)

const (
	cellGlyph    = "■"
	focusedGlyph = "▣"
	cellWidth    = 2
	labelWidth   = 4
)

var weekdayLabels = [heatmap.DayCount]string{"", "Mon", "", "Wed", "", "Fri", ""}

// RenderHeatmap draws the grid as seven weekday rows by 53 week columns
// with month labels on top. focus may be the zero Focus.
func RenderHeatmap(g heatmap.Grid, palette heatmap.Palette, focus heatmap.Focus) string {
	weeks := g.Weeks()
	focused, hasFocus := focus.Index()

	styles := make(map[heatmap.ColorToken]lipgloss.Style, len(palette))
	for tok, hex := range palette {
		styles[tok] = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}

	var b strings.Builder
	b.WriteString(monthRow(weeks))
	b.WriteString("\n")
	for day := 0; day < heatmap.DayCount; day++ {
		b.WriteString(padRight(weekdayLabels[day], labelWidth))
		for w, week := range weeks {
			c := week[day]
			idx := w*heatmap.DayCount + day
			switch {
			case hasFocus && idx == focused:
				b.WriteString(styles[heatmap.ResolveColor(c)].Bold(true).Render(focusedGlyph))
			case c.Future && !c.HasCompletedItems && !c.HasIncompleteTodos:
				b.WriteString(" ")
			default:
				b.WriteString(styles[heatmap.ResolveColor(c)].Render(cellGlyph))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	b.WriteString(legend(styles))
	return b.String()
}

func monthRow(weeks [][]heatmap.DayCell) string {
	row := []rune(strings.Repeat(" ", labelWidth+len(weeks)*cellWidth))
	prevMonth := -1
	nextFree := 0
	for w, week := range weeks {
		month := int(week[0].Date.Month())
		if month == prevMonth {
			continue
		}
		prevMonth = month
		pos := labelWidth + w*cellWidth
		label := week[0].Date.Format("Jan")
		if pos < nextFree || pos+len(label) > len(row) {
			continue
		}
		copy(row[pos:], []rune(label))
		nextFree = pos + len(label) + 1
	}
	return strings.TrimRight(string(row), " ")
}

func legend(styles map[heatmap.ColorToken]lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(padRight("", labelWidth))
	b.WriteString(dimStyle.Render("Less "))
	for _, tok := range []heatmap.ColorToken{heatmap.Green0, heatmap.Green1, heatmap.Green2, heatmap.Green3, heatmap.Green4} {
		b.WriteString(styles[tok].Render(cellGlyph))
	}
	b.WriteString(dimStyle.Render(" More   Pending "))
	for _, tok := range []heatmap.ColorToken{heatmap.Orange1, heatmap.Orange2, heatmap.Orange3, heatmap.Orange4} {
		b.WriteString(styles[tok].Render(cellGlyph))
	}
	return b.String()
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// gridKey translates a key press into a grid navigation key. Arrow keys,
// home and end always navigate; the keymap adds optional aliases.
func gridKey(key string, k config.Keymap) heatmap.Key {
	switch key {
	case "right", k.GridRight:
		return heatmap.KeyRight
	case "left", k.GridLeft:
		return heatmap.KeyLeft
	case "down", k.GridDown:
		return heatmap.KeyDown
	case "up", k.GridUp:
		return heatmap.KeyUp
	case "home":
		return heatmap.KeyHome
	case "end":
		return heatmap.KeyEnd
	}
	return heatmap.KeyNone
}
