// Package render turns windowed rows into HTML.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/layout"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
)

//go:embed assets/feed.tmpl
var feedTmpl string

//go:embed assets/style.css
var styleText string

var tmpl = template.Must(template.New("assets").Funcs(tmplFunctions()).Parse(feedTmpl))

// menuWidth is the horizontal space reserved for the menu when anchoring it.
var menuWidth = 180.0

// Page is everything needed to draw one state of the wall.
type Page struct {
	Title string
	// Width is the container width the rows were laid out for.
	Width       float64
	TotalHeight float64
	Rows        []feed.Placed
	Selection   overlay.Selection
	// Menu is the ID whose menu is open, or "".
	Menu   string
	Source func(i *photo.Item) string
	// Live pages fetch fresh windows from the server as they scroll.
	Live bool
}

// FromEngine captures the engine's current window.
func FromEngine(e *feed.Engine, title string, src func(*photo.Item) string) Page {
	menu, _ := e.Overlay().Menu()
	return Page{
		Title:       title,
		Width:       e.Width(),
		TotalHeight: e.Rows().TotalHeight,
		Rows:        e.Visible(),
		Selection:   e.Overlay().Selection(),
		Menu:        menu,
		Source:      src,
	}
}

type cellView struct {
	ID       string
	Src      string
	Alt      string
	Selected bool
	Style    template.CSS
}

type rowView struct {
	Index   int
	Header  bool
	Title   string
	Avatar  string
	Partial bool
	Center  bool
	Style   template.CSS
	Cells   []cellView
}

type menuView struct {
	ID      string
	Style   template.CSS
	Actions []overlay.Action
}

type pageView struct {
	Title string
	Style template.CSS
	CSS   template.CSS
	Rows  []rowView
	Menu  *menuView
	Live  bool
}

// HTML writes the feed fragment: the rows container and, after it, the open menu.
func HTML(w io.Writer, p Page) error {
	return execute(w, "feed", p)
}

// Document writes a complete HTML page around the feed fragment.
func Document(w io.Writer, p Page) error {
	return execute(w, "page", p)
}

func execute(w io.Writer, name string, p Page) error {
	v := view(p)
	klog.V(1).Infof("rendering %s: %d rows, menu=%v", name, len(v.Rows), v.Menu != nil)
	if err := tmpl.ExecuteTemplate(w, name, v); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func view(p Page) pageView {
	src := p.Source
	if src == nil {
		src = func(i *photo.Item) string { return i.URL }
	}

	v := pageView{
		Title: p.Title,
		Style: box(0, 0, p.Width, p.TotalHeight),
		CSS:   template.CSS(styleText),
		Live:  p.Live,
	}

	for _, pl := range p.Rows {
		r := pl.Row
		rv := rowView{Index: pl.Index, Partial: r.Partial, Center: r.Center}

		if r.Kind == layout.KindHeader {
			rv.Header = true
			rv.Title = r.Header.Title
			if r.Header.Person != nil {
				rv.Avatar = r.Header.Person.Avatar
			}
			rv.Style = box(0, pl.Top, p.Width, r.Height)
			v.Rows = append(v.Rows, rv)
			continue
		}

		left := rowLeft(r, p.Width)
		rv.Style = box(left, pl.Top, r.Width(), r.Height)
		for _, c := range r.Cells {
			rv.Cells = append(rv.Cells, cellView{
				ID:       c.Item.ID,
				Src:      src(c.Item),
				Alt:      alt(c.Item),
				Selected: p.Selection.Has(c.Item.ID),
				Style:    box(c.X, 0, c.Width, r.Height),
			})

			if c.Item.ID == p.Menu {
				x := min(left+c.X, max(0, p.Width-menuWidth))
				v.Menu = &menuView{
					ID:      c.Item.ID,
					Style:   template.CSS(fmt.Sprintf("left:%s;top:%s", px(x), px(pl.Top+r.Height))),
					Actions: overlay.Actions,
				}
			}
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}

// rowLeft centers single-item partial rows; everything else starts at the left edge.
func rowLeft(r layout.Row, width float64) float64 {
	if !r.Center {
		return 0
	}
	return max(0, (width-r.Width())/2)
}

func alt(i *photo.Item) string {
	if i.Caption != "" {
		return i.Caption
	}
	return i.ID
}

func box(left, top, width, height float64) template.CSS {
	return template.CSS(fmt.Sprintf("left:%s;top:%s;width:%s;height:%s", px(left), px(top), px(width), px(height)))
}

func px(v float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	return s + "px"
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"Label": func(a overlay.Action) string {
			return strings.ReplaceAll(string(a), "-", " ")
		},
	}
}
