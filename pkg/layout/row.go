package layout

import "github.com/tstromberg/photowall/pkg/photo"

// Kind tags a Row.
type Kind int

const (
	KindHeader Kind = iota
	KindPhotos
)

func (k Kind) String() string {
	if k == KindHeader {
		return "header"
	}
	return "photos"
}

// Cell is one photo placed in a row. X is relative to the row's left edge.
type Cell struct {
	Item  *photo.Item
	X     float64
	Width float64
}

// Row is either a group header or a row of photos.
type Row struct {
	Kind   Kind
	Height float64

	// Header rows
	Group  int
	Header photo.Header

	// Photo rows
	Partial bool
	Center  bool
	Cells   []Cell
}

// Width returns the horizontal space the row's cells occupy, including gaps.
func (r Row) Width() float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	last := r.Cells[len(r.Cells)-1]
	return last.X + last.Width
}

func headerRow(g int, h photo.Header, c Config) Row {
	return Row{Kind: KindHeader, Height: c.HeaderHeight, Group: g, Header: h}
}

// photoRow places items left to right at height h.
func photoRow(g int, is []*photo.Item, h float64, gap float64, partial bool) Row {
	r := Row{Kind: KindPhotos, Height: h, Group: g, Partial: partial, Cells: make([]Cell, 0, len(is))}
	x := 0.0
	for n, i := range is {
		if n > 0 {
			x += gap
		}
		w := h * i.Aspect()
		r.Cells = append(r.Cells, Cell{Item: i, X: x, Width: w})
		x += w
	}
	r.Center = partial && len(is) == 1
	return r
}
