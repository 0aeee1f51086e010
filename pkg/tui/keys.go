package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the wall.
type keyMap struct {
	// Scrolling
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Cursor
	Prev key.Binding
	Next key.Binding

	// Interaction
	Select key.Binding
	Menu   key.Binding
	Add    key.Binding
	Remove key.Binding
	Fetch  key.Binding
	Open   key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Prev: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "previous photo"),
		),
		Next: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l", "next photo"),
		),

		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "menu"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to album"),
		),
		Remove: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "remove from album"),
			key.WithDisabled(),
		),
		Fetch: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
			key.WithDisabled(),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close menu / clear"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// menuOpen enables the bindings that only make sense while a menu is shown.
func (k *keyMap) menuOpen(open bool) {
	k.Remove.SetEnabled(open)
	k.Fetch.SetEnabled(open)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Next, k.Select, k.Menu, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Prev, k.Next, k.Select, k.Open},
		{k.Menu, k.Add, k.Remove, k.Fetch, k.Escape},
		{k.Help, k.Quit},
	}
}
