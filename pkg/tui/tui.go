// Package tui draws a photo wall in the terminal with Bubble Tea.
//
// Terminal cells stand in for layout units: one column is CellWidth units
// wide and one line is LineHeight units tall, so the wall is laid out
// exactly as a browser of the same size would lay it out.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
)

var (
	// CellWidth is the layout width of one terminal column.
	CellWidth = 8.0
	// LineHeight is the layout height of one terminal line.
	LineHeight = 16.0
)

// footerLines are reserved below the wall for status and help.
const footerLines = 2

// Options configures the UI.
type Options struct {
	Engine *feed.Engine
	Title  string
	// Frame is the scroll throttle interval; zero means feed.FrameInterval.
	Frame time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	e        *feed.Engine
	title    string
	keys     keyMap
	help     help.Model
	throttle *feed.Throttle
	frame    time.Duration

	// UI state
	width    int
	height   int
	ready    bool
	showHelp bool
	ticking  bool
	status   string

	// scroll is where the user wants to be; the engine catches up once per frame.
	scroll float64
	cursor string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	frame := opts.Frame
	if frame <= 0 {
		frame = feed.FrameInterval
	}
	return Model{
		e:        opts.Engine,
		title:    opts.Title,
		keys:     defaultKeyMap(),
		help:     help.New(),
		throttle: feed.NewThrottle(frame),
		frame:    frame,
	}
}

type frameMsg time.Time

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.e.OnWidthChanged(float64(msg.Width) * CellWidth)
		m.scroll = m.clamp(m.scroll)
		m.e.Scroll(m.scroll, m.viewport())
		if m.cursor == "" {
			m.cursor = m.first()
		}
		return m, nil

	case frameMsg:
		if p, ok := m.throttle.Take(time.Time(msg)); ok {
			w := m.e.Scroll(p.Offset, p.Viewport)
			klog.V(2).Infof("frame: scroll=%v rows %d-%d", p.Offset, w.Start, w.End)
		}
		if m.throttle.Pending() {
			return m, frameCmd(m.frame)
		}
		m.ticking = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		m.help.ShowAll = false
		return m, nil
	}

	o := m.e.Overlay()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.help.ShowAll = true
		return m, nil

	case key.Matches(msg, m.keys.Down):
		return m.scrollTo(m.scroll + LineHeight)
	case key.Matches(msg, m.keys.Up):
		return m.scrollTo(m.scroll - LineHeight)
	case key.Matches(msg, m.keys.PageDown):
		return m.scrollTo(m.scroll + m.viewport())
	case key.Matches(msg, m.keys.PageUp):
		return m.scrollTo(m.scroll - m.viewport())
	case key.Matches(msg, m.keys.Top):
		return m.scrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		return m.scrollTo(m.e.Rows().TotalHeight)

	case key.Matches(msg, m.keys.Next):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.Prev):
		return m.moveCursor(-1)

	case key.Matches(msg, m.keys.Select):
		if m.cursor != "" {
			on := o.ToggleSelect(m.cursor)
			m.status = fmt.Sprintf("%s %s (%d selected)", selectVerb(on), m.cursor, o.Count())
		}
	case key.Matches(msg, m.keys.Menu):
		if m.cursor != "" {
			o.OpenMenu(m.cursor)
		}
	case key.Matches(msg, m.keys.Add):
		m.action(overlay.AddToAlbum)
	case key.Matches(msg, m.keys.Remove):
		m.action(overlay.RemoveFromAlbum)
	case key.Matches(msg, m.keys.Fetch):
		m.action(overlay.Download)
	case key.Matches(msg, m.keys.Open):
		if i, ok := m.e.Item(m.cursor); ok {
			o.Click(i)
			m.status = fmt.Sprintf("opened %s", i.ID)
		}
	case key.Matches(msg, m.keys.Escape):
		if _, open := o.Menu(); open {
			o.CloseMenu()
		} else {
			o.Reset()
			m.status = "selection cleared"
		}
	}

	_, open := o.Menu()
	m.keys.menuOpen(open)
	return m, nil
}

// action requests a contextual action on the open menu's item, or the cursor.
func (m *Model) action(a overlay.Action) {
	id, open := m.e.Overlay().Menu()
	if !open {
		id = m.cursor
	}
	if id == "" {
		return
	}
	m.e.Overlay().RequestContextAction(id, a)
	m.status = fmt.Sprintf("%s: %s", a, id)
}

// scrollTo queues a scroll position for the next frame.
func (m Model) scrollTo(offset float64) (tea.Model, tea.Cmd) {
	m.scroll = m.clamp(offset)
	m.throttle.Push(feed.Position{Offset: m.scroll, Viewport: m.viewport()})
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, frameCmd(m.frame)
}

// moveCursor steps through photos in layout order and scrolls the cursor into view.
func (m Model) moveCursor(step int) (tea.Model, tea.Cmd) {
	ids := m.order()
	if len(ids) == 0 {
		return m, nil
	}
	n := 0
	for i, id := range ids {
		if id == m.cursor {
			n = i + step
			break
		}
	}
	n = max(0, min(n, len(ids)-1))
	m.cursor = ids[n]
	m.e.Overlay().Interact(m.cursor)

	rl := m.e.Rows()
	r, _, ok := rl.Locate(m.cursor)
	if !ok {
		return m, nil
	}
	top, bottom := rl.Offsets[r], rl.Bottom(r)
	switch {
	case top < m.scroll:
		return m.scrollTo(top)
	case bottom > m.scroll+m.viewport():
		return m.scrollTo(bottom - m.viewport())
	}
	return m, nil
}

// order lists item IDs in the order they are laid out.
func (m Model) order() []string {
	var ids []string
	for _, r := range m.e.Rows().Rows {
		for _, c := range r.Cells {
			ids = append(ids, c.Item.ID)
		}
	}
	return ids
}

func (m Model) first() string {
	if ids := m.order(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (m Model) viewport() float64 {
	return float64(max(0, m.height-footerLines)) * LineHeight
}

func (m Model) clamp(offset float64) float64 {
	limit := max(0, m.e.Rows().TotalHeight-m.viewport())
	return max(0, min(offset, limit))
}

// Scroll returns the position the user asked for.
func (m Model) Scroll() float64 {
	return m.scroll
}

// Cursor returns the ID of the photo under the cursor.
func (m Model) Cursor() string {
	return m.cursor
}

// Item returns the item under the cursor.
func (m Model) Item() (*photo.Item, bool) {
	return m.e.Item(m.cursor)
}

func selectVerb(on bool) string {
	if on {
		return "selected"
	}
	return "deselected"
}
