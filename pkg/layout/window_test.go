package layout

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tstromberg/photowall/pkg/photo"
)

func testGroups(r *rand.Rand, n int) []photo.Group {
	gs := []photo.Group{}
	for g := range n {
		// every fourth group is empty
		count := 0
		if g%4 != 3 {
			count = 1 + r.Intn(40)
		}
		gs = append(gs, photo.Group{
			Header: photo.Header{Title: fmt.Sprintf("group %d", g)},
			Items:  randomItems(r, count),
		})
	}
	return gs
}

func TestBuildOffsets(t *testing.T) {
	c := testConfig()
	rl := Build(testGroups(rand.New(rand.NewSource(1)), 30), 1200, c)
	if rl.Len() == 0 {
		t.Fatal("empty row list")
	}
	if rl.Offsets[0] != 0 {
		t.Fatalf("Offsets[0] = %v, want 0", rl.Offsets[0])
	}
	for i := 0; i+1 < rl.Len(); i++ {
		got := rl.Offsets[i+1] - rl.Offsets[i]
		want := rl.Rows[i].Height + c.Gap
		if math.Abs(got-want) > 1e-6 {
			t.Fatalf("Offsets[%d]-Offsets[%d] = %v, want %v", i+1, i, got, want)
		}
	}
	last := rl.Len() - 1
	if rl.TotalHeight != rl.Offsets[last]+rl.Rows[last].Height {
		t.Fatalf("TotalHeight = %v, want %v", rl.TotalHeight, rl.Offsets[last]+rl.Rows[last].Height)
	}
}

func TestBuildOneHeaderPerGroup(t *testing.T) {
	gs := testGroups(rand.New(rand.NewSource(2)), 12)
	rl := Build(gs, 900, testConfig())

	headers := map[int]int{}
	for _, r := range rl.Rows {
		if r.Kind == KindHeader {
			headers[r.Group]++
		}
	}
	for g := range gs {
		if headers[g] != 1 {
			t.Fatalf("group %d has %d header rows, want 1", g, headers[g])
		}
	}
}

func TestBuildEmptyGroupOnly(t *testing.T) {
	rl := Build([]photo.Group{{Header: photo.Header{Title: "nothing"}}}, 1200, testConfig())
	if rl.Len() != 1 || rl.Rows[0].Kind != KindHeader {
		t.Fatalf("rows = %+v, want exactly one header", rl.Rows)
	}
	if rl.TotalHeight != testConfig().HeaderHeight {
		t.Fatalf("TotalHeight = %v, want %v", rl.TotalHeight, testConfig().HeaderHeight)
	}
}

func TestBuildNonFiniteWidth(t *testing.T) {
	is := []*photo.Item{item("a", 100, 100), item("b", 100, 100), item("c", 100, 100)}
	for _, width := range []float64{math.NaN(), math.Inf(1)} {
		for _, r := range BuildGroup(0, photo.Group{Items: is}, width, testConfig()) {
			if r.Kind == KindPhotos {
				t.Fatalf("width %v: got photo row with height %v", width, r.Height)
			}
		}
	}
}

func TestBuildNotReady(t *testing.T) {
	gs := testGroups(rand.New(rand.NewSource(3)), 3)
	for _, width := range []float64{0, -100, math.NaN(), math.Inf(1), math.Inf(-1)} {
		rl := Build(gs, width, testConfig())
		if rl.Len() != 0 || rl.TotalHeight != 0 {
			t.Fatalf("width %v: got %d rows, want none", width, rl.Len())
		}
		if w := rl.Window(0, 500, 5); !w.Empty || w.Len() != 0 {
			t.Fatalf("width %v: Window = %+v, want empty", width, w)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	gs := testGroups(rand.New(rand.NewSource(4)), 20)
	a := Build(gs, 1080, testConfig())
	b := Build(gs, 1080, testConfig())
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(RowList{}, cellRef{})); diff != "" {
		t.Fatalf("Build is not deterministic (-first +second):\n%s", diff)
	}
}

func TestWindowCoversViewport(t *testing.T) {
	c := testConfig()
	rl := Build(testGroups(rand.New(rand.NewSource(5)), 200), 1200, c)
	viewport := 900.0

	r := rand.New(rand.NewSource(6))
	for range 2000 {
		scroll := r.Float64() * (rl.TotalHeight - viewport)
		w := rl.Window(scroll, viewport, c.OverscanRows)

		if w.Start > w.End {
			t.Fatalf("scroll %v: Start %d > End %d", scroll, w.Start, w.End)
		}
		if w.Top != rl.Offsets[w.Start] {
			t.Fatalf("scroll %v: Top = %v, want %v", scroll, w.Top, rl.Offsets[w.Start])
		}
		if rl.Offsets[w.Start] > scroll {
			t.Fatalf("scroll %v: window starts at %v, below the viewport top", scroll, rl.Offsets[w.Start])
		}
		if rl.Bottom(w.End) < scroll+viewport {
			t.Fatalf("scroll %v: window ends at %v, above the viewport bottom %v", scroll, rl.Bottom(w.End), scroll+viewport)
		}

		start, end := rl.Span(scroll, scroll+viewport)
		if want := max(0, start-c.OverscanRows); w.Start != want {
			t.Fatalf("scroll %v: Start = %d, want %d", scroll, w.Start, want)
		}
		if want := min(rl.Len()-1, end+c.OverscanRows); w.End != want {
			t.Fatalf("scroll %v: End = %d, want %d", scroll, w.End, want)
		}
	}
}

func TestWindowMatchesLinearScan(t *testing.T) {
	rl := Build(testGroups(rand.New(rand.NewSource(8)), 40), 800, testConfig())
	r := rand.New(rand.NewSource(9))

	for range 500 {
		lo := r.Float64()*rl.TotalHeight*1.2 - 100
		hi := lo + r.Float64()*1500
		start, end := rl.Span(lo, hi)

		wantStart, wantEnd := rl.Len(), -1
		for i := range rl.Rows {
			if rl.Bottom(i) >= lo && i < wantStart {
				wantStart = i
			}
			if rl.Offsets[i] <= hi {
				wantEnd = i
			}
		}
		if start != wantStart || end != wantEnd {
			t.Fatalf("Span(%v, %v) = %d..%d, want %d..%d", lo, hi, start, end, wantStart, wantEnd)
		}
	}
}

func TestWindowEdges(t *testing.T) {
	c := testConfig()
	rl := Build(testGroups(rand.New(rand.NewSource(10)), 50), 1200, c)
	last := rl.Len() - 1

	tests := []struct {
		name      string
		scroll    float64
		height    float64
		overscan  int
		wantStart int
		wantEnd   int
	}{
		{"top", 0, 0, 0, 0, 0},
		{"everything", 0, rl.TotalHeight, 0, 0, last},
		{"above", -5000, 100, 2, 0, 2},
		{"below", rl.TotalHeight + 5000, 100, 2, last - 2, last},
		{"inside gap", rl.Bottom(0) + c.Gap/2, 0, 0, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := rl.Window(tc.scroll, tc.height, tc.overscan)
			if w.Start != tc.wantStart || w.End != tc.wantEnd {
				t.Fatalf("Window = %d..%d, want %d..%d", w.Start, w.End, tc.wantStart, tc.wantEnd)
			}
			if w.Start > w.End {
				t.Fatalf("Start %d > End %d", w.Start, w.End)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	is := []*photo.Item{item("a", 100, 100), item("b", 100, 100)}
	rl := Build([]photo.Group{{Items: is}}, 1200, testConfig())
	row, cell, ok := rl.Locate("b")
	if !ok || row != 1 || cell != 1 {
		t.Fatalf("Locate(b) = %d, %d, %v; want 1, 1, true", row, cell, ok)
	}
	if _, _, ok := rl.Locate("zzz"); ok {
		t.Fatal("Locate(zzz) found a cell")
	}
}

func TestLocateEveryCell(t *testing.T) {
	is := randomItems(rand.New(rand.NewSource(9)), 400)
	rl := Build([]photo.Group{{Items: is[:150]}, {Items: is[150:]}}, 1200, testConfig())
	for n, r := range rl.Rows {
		for m, c := range r.Cells {
			row, cell, ok := rl.Locate(c.Item.ID)
			if !ok || row != n || cell != m {
				t.Fatalf("Locate(%s) = %d, %d, %v; want %d, %d, true", c.Item.ID, row, cell, ok, n, m)
			}
		}
	}
	if _, _, ok := Build(nil, 0, testConfig()).Locate("a"); ok {
		t.Fatal("Locate on an empty list found a cell")
	}
}
