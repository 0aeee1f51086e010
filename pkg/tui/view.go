package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/layout"
	"github.com/tstromberg/photowall/pkg/overlay"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9"))
	photoStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6272a4"))
	selectedStyle = photoStyle.BorderForeground(lipgloss.Color("#50fa7b"))
	cursorStyle   = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#f1fa8c"))
	menuStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#ff79c6")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	}

	lines := m.wall()
	if menu := m.menu(); menu != "" {
		// The menu is drawn over the bottom of the wall.
		ml := strings.Split(menu, "\n")
		at := max(0, len(lines)-len(ml))
		for n, l := range ml {
			if at+n < len(lines) {
				lines[at+n] = l
			}
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	s := m.title
	if n := m.e.Overlay().Count(); n > 0 {
		s += fmt.Sprintf(" | %d selected", n)
	}
	if m.status != "" {
		s += " | " + m.status
	}
	return s
}

// wall draws the engine's window and returns the screen lines for the viewport.
// Lines are placed at the engine's offset, which trails m.scroll until the next frame.
func (m Model) wall() []string {
	rows := max(0, m.height-footerLines)
	lines := make([]string, rows)
	offset, _ := m.e.Position()
	first := lineOf(offset)

	for _, p := range m.e.Visible() {
		block := m.drawRow(p)
		start := lineOf(p.Top)
		for n, l := range strings.Split(block, "\n") {
			at := start + n - first
			if at >= 0 && at < rows {
				lines[at] = l
			}
		}
	}
	return lines
}

func (m Model) drawRow(p feed.Placed) string {
	h := max(1, lineOf(p.Row.Height))
	if p.Row.Kind == layout.KindHeader {
		pad := strings.Repeat("\n", h-1)
		return pad + headerStyle.Render(p.Row.Header.Title)
	}

	sel := m.e.Overlay().Selection()
	boxes := make([]string, 0, len(p.Row.Cells))
	for n, c := range p.Row.Cells {
		cols := max(3, colOf(c.Width))
		st := photoStyle
		switch {
		case c.Item.ID == m.cursor:
			st = cursorStyle
		case sel.Has(c.Item.ID):
			st = selectedStyle
		}
		label := c.Item.Caption
		if label == "" {
			label = c.Item.ID
		}
		if sel.Has(c.Item.ID) {
			label = "* " + label
		}
		box := st.Width(cols - 2).Height(max(1, h-2)).MaxHeight(h).Render(truncate(label, cols-2))
		if n > 0 {
			box = lipgloss.JoinHorizontal(lipgloss.Top, strings.Repeat(" ", max(1, colOf(c.X)-colOf(p.Row.Cells[n-1].X+p.Row.Cells[n-1].Width))), box)
		}
		boxes = append(boxes, box)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	if p.Row.Center {
		left := max(0, (m.width-lipgloss.Width(row))/2)
		row = lipgloss.NewStyle().PaddingLeft(left).Render(row)
	}
	return row
}

func (m Model) menu() string {
	id, open := m.e.Overlay().Menu()
	if !open {
		return ""
	}
	keys := map[overlay.Action]string{
		overlay.AddToAlbum:      m.keys.Add.Help().Key,
		overlay.RemoveFromAlbum: m.keys.Remove.Help().Key,
		overlay.Download:        m.keys.Fetch.Help().Key,
	}
	items := []string{headerStyle.Render(id)}
	for _, a := range overlay.Actions {
		items = append(items, keys[a]+"  "+string(a))
	}
	return menuStyle.Render(strings.Join(items, "\n"))
}

func lineOf(v float64) int {
	return int(math.Round(v / LineHeight))
}

func colOf(v float64) int {
	return int(math.Round(v / CellWidth))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
