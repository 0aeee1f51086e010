// Package feed drives the wall: it recomputes layout only when its inputs
// change and the window on every scroll tick.
//
// An Engine is meant to be driven from a single goroutine, the way a UI
// thread would drive it. It does no locking of its own.
package feed

import (
	"fmt"

	"github.com/tstromberg/photowall/pkg/layout"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
	"k8s.io/klog/v2"
)

// ImageLoader fetches image bytes for items about to be shown. Load must not block.
type ImageLoader interface {
	Load(i *photo.Item, width, height float64)
}

// Placed is a windowed row with its absolute offset.
type Placed struct {
	Index int
	Top   float64
	Row   layout.Row
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader sets the image loader invoked for rows near the viewport.
func WithLoader(l ImageLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithCallbacks sets the interaction callbacks.
func WithCallbacks(cb overlay.Callbacks) Option {
	return func(e *Engine) { e.overlay = overlay.New(cb) }
}

// WithGrouping sets the initial grouping key and order.
func WithGrouping(k photo.Key, o photo.Order) Option {
	return func(e *Engine) {
		e.key = k
		e.order = o
	}
}

// Engine owns the layout pipeline for one wall.
type Engine struct {
	cfg     layout.Config
	loader  ImageLoader
	overlay *overlay.Overlay

	items []*photo.Item
	key   photo.Key
	order photo.Order
	width float64

	groups []photo.Group
	rows   *layout.RowList
	stale  bool

	scroll    float64
	viewport  float64
	window    layout.Window
	requested map[string]bool
}

// New returns an engine for c, or an error if c is unusable.
func New(c layout.Config, opts ...Option) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	e := &Engine{
		cfg:       c,
		rows:      &layout.RowList{},
		window:    layout.Window{Empty: true},
		requested: map[string]bool{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.overlay == nil {
		e.overlay = overlay.New(overlay.Callbacks{})
	}
	return e, nil
}

// SetItems replaces the item list and regroups it.
func (e *Engine) SetItems(is []*photo.Item) error {
	if e.items != nil && sameItems(e.items, is) {
		return nil
	}
	gs, err := photo.Normalize(is, e.key, e.order)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	e.items = is
	e.setGroups(gs)
	return nil
}

// SetGroups replaces the groups directly, for callers that group themselves.
func (e *Engine) SetGroups(gs []photo.Group) error {
	for n, g := range gs {
		if err := photo.Validate(g.Items); err != nil {
			return fmt.Errorf("group %d: %w", n, err)
		}
	}
	e.items = nil
	e.setGroups(gs)
	return nil
}

func (e *Engine) setGroups(gs []photo.Group) {
	e.groups = gs
	e.stale = true
	klog.V(1).Infof("groups replaced: %d groups", len(gs))
}

// SetGrouping changes how items are grouped.
func (e *Engine) SetGrouping(k photo.Key, o photo.Order) error {
	if k == e.key && o == e.order {
		return nil
	}
	e.key, e.order = k, o
	if e.items == nil {
		return nil
	}
	gs, err := photo.Normalize(e.items, k, o)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	e.setGroups(gs)
	return nil
}

// OnWidthChanged reports a new container width. Non-positive or non-finite
// values mean not ready and are stored as 0.
func (e *Engine) OnWidthChanged(w float64) {
	if !layout.Ready(w) {
		w = 0
	}
	if w == e.width {
		return
	}
	klog.V(1).Infof("width changed: %v -> %v", e.width, w)
	e.width = w
	e.stale = true
}

// Scroll reports the scroll position and viewport height and returns the new window.
func (e *Engine) Scroll(offset, viewport float64) layout.Window {
	e.scroll = offset
	e.viewport = viewport
	if e.stale {
		e.relayout()
	}
	e.rewindow()
	return e.window
}

// Rows returns the current row list.
func (e *Engine) Rows() *layout.RowList {
	if e.stale {
		e.relayout()
		e.rewindow()
	}
	return e.rows
}

// Groups returns the current groups.
func (e *Engine) Groups() []photo.Group {
	return e.groups
}

// Window returns the current window.
func (e *Engine) Window() layout.Window {
	if e.stale {
		e.relayout()
		e.rewindow()
	}
	return e.window
}

// Visible returns the windowed rows.
func (e *Engine) Visible() []Placed {
	w := e.Window()
	if w.Empty {
		return nil
	}
	ps := make([]Placed, 0, w.Len())
	for i := w.Start; i <= w.End; i++ {
		ps = append(ps, Placed{Index: i, Top: e.rows.Offsets[i], Row: e.rows.Rows[i]})
	}
	return ps
}

// All returns every row, for hosts that render the whole wall at once.
func (e *Engine) All() []Placed {
	rl := e.Rows()
	ps := make([]Placed, 0, rl.Len())
	for i, r := range rl.Rows {
		ps = append(ps, Placed{Index: i, Top: rl.Offsets[i], Row: r})
	}
	return ps
}

// Overlay returns the selection and menu state.
func (e *Engine) Overlay() *overlay.Overlay {
	return e.overlay
}

// Config returns the engine configuration.
func (e *Engine) Config() layout.Config {
	return e.cfg
}

// Width returns the last reported container width.
func (e *Engine) Width() float64 {
	return e.width
}

// Position returns the last reported scroll offset and viewport height.
func (e *Engine) Position() (offset, viewport float64) {
	return e.scroll, e.viewport
}

// Item finds a laid out item by ID.
func (e *Engine) Item(id string) (*photo.Item, bool) {
	rl := e.Rows()
	r, c, ok := rl.Locate(id)
	if !ok {
		return nil, false
	}
	return rl.Rows[r].Cells[c].Item, true
}

func (e *Engine) relayout() {
	e.rows = layout.Build(e.groups, e.width, e.cfg)
	e.stale = false
	e.requested = map[string]bool{}
}

func (e *Engine) rewindow() {
	e.window = e.rows.Window(e.scroll, e.viewport, e.cfg.OverscanRows)
	e.prefetch()
}

// prefetch asks the loader for every photo within the prefetch margin of the viewport.
func (e *Engine) prefetch() {
	if e.loader == nil || e.rows.Len() == 0 {
		return
	}
	start, end := e.rows.Span(e.scroll-e.cfg.PrefetchMargin, e.scroll+e.viewport+e.cfg.PrefetchMargin)
	start = max(start, 0)
	end = min(end, e.rows.Len()-1)

	for i := start; i <= end; i++ {
		r := e.rows.Rows[i]
		for _, c := range r.Cells {
			if e.requested[c.Item.ID] {
				continue
			}
			e.requested[c.Item.ID] = true
			e.loader.Load(c.Item, c.Width, r.Height)
		}
	}
}

func sameItems(a, b []*photo.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
