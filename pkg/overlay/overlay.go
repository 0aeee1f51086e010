// Package overlay tracks selection and the open contextual menu, apart from layout.
package overlay

import (
	"slices"

	"github.com/tstromberg/photowall/pkg/photo"
	"k8s.io/klog/v2"
)

// Action is a contextual menu action.
type Action string

const (
	AddToAlbum      Action = "add-to-album"
	RemoveFromAlbum Action = "remove-from-album"
	Download        Action = "download"
)

// Actions lists the actions a menu offers, in display order.
var Actions = []Action{AddToAlbum, RemoveFromAlbum, Download}

// Selection is a set of item IDs.
type Selection map[string]struct{}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the selected IDs, sorted.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Callbacks are invoked on user interaction. Any of them may be nil.
type Callbacks struct {
	OnItemClick            func(i *photo.Item)
	OnToggleSelect         func(id string)
	OnRequestContextAction func(id string, a Action)
}

// Overlay owns the selection set and the single menu slot.
type Overlay struct {
	cb       Callbacks
	selected Selection
	menu     string
}

// New returns an empty overlay.
func New(cb Callbacks) *Overlay {
	return &Overlay{cb: cb, selected: Selection{}}
}

// ToggleSelect flips the membership of id and returns whether it is now selected.
func (o *Overlay) ToggleSelect(id string) bool {
	o.Interact(id)

	on := !o.selected.Has(id)
	if on {
		o.selected[id] = struct{}{}
	} else {
		delete(o.selected, id)
	}
	klog.V(1).Infof("toggle %s: selected=%v (%d total)", id, on, len(o.selected))

	if o.cb.OnToggleSelect != nil {
		o.cb.OnToggleSelect(id)
	}
	return on
}

// Selection returns a copy of the current selection.
func (o *Overlay) Selection() Selection {
	s := make(Selection, len(o.selected))
	for id := range o.selected {
		s[id] = struct{}{}
	}
	return s
}

// Selected reports whether id is selected.
func (o *Overlay) Selected(id string) bool {
	return o.selected.Has(id)
}

// Count returns the number of selected items.
func (o *Overlay) Count() int {
	return len(o.selected)
}

// OpenMenu opens the contextual menu for id, replacing any open menu.
func (o *Overlay) OpenMenu(id string) {
	if o.menu != "" && o.menu != id {
		klog.V(1).Infof("menu for %s replaced by %s", o.menu, id)
	}
	o.menu = id
}

// CloseMenu closes the open menu, if any.
func (o *Overlay) CloseMenu() {
	o.menu = ""
}

// Menu returns the item whose menu is open.
func (o *Overlay) Menu() (string, bool) {
	return o.menu, o.menu != ""
}

// Interact records an interaction with id (empty for the background).
// Anything outside the open menu's item closes the menu.
func (o *Overlay) Interact(id string) {
	if o.menu != "" && id != o.menu {
		o.CloseMenu()
	}
}

// Click reports a click on i to OnItemClick, exactly once.
func (o *Overlay) Click(i *photo.Item) {
	o.Interact(i.ID)
	if o.cb.OnItemClick != nil {
		o.cb.OnItemClick(i)
	}
}

// RequestContextAction forwards a from the menu of id and closes the menu.
func (o *Overlay) RequestContextAction(id string, a Action) {
	klog.V(1).Infof("context action %s on %s", a, id)
	if o.cb.OnRequestContextAction != nil {
		o.cb.OnRequestContextAction(id, a)
	}
	o.CloseMenu()
}

// Reset clears the selection and closes the menu.
func (o *Overlay) Reset() {
	o.selected = Selection{}
	o.menu = ""
}
