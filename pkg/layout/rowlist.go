package layout

import (
	"math"

	"github.com/tstromberg/photowall/pkg/photo"
	"k8s.io/klog/v2"
)

// RowList is the flattened wall: every row with its vertical offset.
type RowList struct {
	Rows        []Row
	Offsets     []float64
	TotalHeight float64

	Width float64
	Gap   float64

	// index maps an item ID to its row and cell.
	index map[string]cellRef
}

type cellRef struct {
	row, cell int
}

// Ready reports whether width is a usable container width: positive and finite.
func Ready(width float64) bool {
	return width > 0 && !math.IsInf(width, 1)
}

// Build lays out every group at width. A width that is not Ready means the
// container is not ready and yields an empty list.
func Build(gs []photo.Group, width float64, c Config) *RowList {
	rl := &RowList{Width: width, Gap: c.Gap}
	if !Ready(width) {
		klog.V(1).Infof("width %v not ready, skipping layout of %d groups", width, len(gs))
		return rl
	}

	for n, g := range gs {
		rl.Rows = append(rl.Rows, BuildGroup(n, g, width, c)...)
	}

	rl.Offsets = make([]float64, len(rl.Rows))
	rl.index = map[string]cellRef{}
	y := 0.0
	for n, r := range rl.Rows {
		rl.Offsets[n] = y
		y += r.Height + c.Gap
		for m, cell := range r.Cells {
			if _, dup := rl.index[cell.Item.ID]; !dup {
				rl.index[cell.Item.ID] = cellRef{row: n, cell: m}
			}
		}
	}
	if len(rl.Rows) > 0 {
		last := len(rl.Rows) - 1
		rl.TotalHeight = rl.Offsets[last] + rl.Rows[last].Height
	}

	klog.V(1).Infof("laid out %d groups into %d rows at width %v (height %.0f)", len(gs), len(rl.Rows), width, rl.TotalHeight)
	return rl
}

// Len returns the number of rows.
func (rl *RowList) Len() int {
	return len(rl.Rows)
}

// Bottom returns the offset of the bottom edge of row i.
func (rl *RowList) Bottom(i int) float64 {
	return rl.Offsets[i] + rl.Rows[i].Height
}

// Locate returns the row index and cell index holding id.
func (rl *RowList) Locate(id string) (row int, cell int, ok bool) {
	ref, ok := rl.index[id]
	if !ok {
		return 0, 0, false
	}
	return ref.row, ref.cell, true
}
