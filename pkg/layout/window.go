package layout

import "sort"

// Window is the contiguous, inclusive range of rows to realize.
type Window struct {
	Start int
	End   int
	Top   float64
	Empty bool
}

// Len returns the number of rows in the window.
func (w Window) Len() int {
	if w.Empty {
		return 0
	}
	return w.End - w.Start + 1
}

// Contains reports whether row i is inside the window.
func (w Window) Contains(i int) bool {
	return !w.Empty && i >= w.Start && i <= w.End
}

// Span returns the rows intersecting [lo, hi] without any overscan.
func (rl *RowList) Span(lo, hi float64) (start, end int) {
	n := len(rl.Rows)
	// smallest i whose bottom edge reaches lo
	start = sort.Search(n, func(i int) bool {
		return rl.Bottom(i) >= lo
	})
	// largest j whose top edge is at or above hi
	end = sort.Search(n, func(j int) bool {
		return rl.Offsets[j] > hi
	}) - 1
	return start, end
}

// Window returns the rows covering [scroll, scroll+height], widened by
// overscan rows on either side.
func (rl *RowList) Window(scroll, height float64, overscan int) Window {
	n := len(rl.Rows)
	if n == 0 {
		return Window{Empty: true}
	}

	start, end := rl.Span(scroll, scroll+height)
	if start > end {
		// The viewport sits entirely inside a gap.
		start, end = end, start
	}

	start = clamp(start-overscan, 0, n-1)
	end = clamp(end+overscan, 0, n-1)
	return Window{Start: start, End: end, Top: rl.Offsets[start]}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
