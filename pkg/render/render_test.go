package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tstromberg/photowall/pkg/feed"
	"github.com/tstromberg/photowall/pkg/layout"
	"github.com/tstromberg/photowall/pkg/overlay"
	"github.com/tstromberg/photowall/pkg/photo"
)

func engine(t *testing.T) *feed.Engine {
	t.Helper()
	e, err := feed.New(layout.DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	taken := time.Date(2024, time.May, 9, 12, 0, 0, 0, time.UTC)
	is := []*photo.Item{
		{ID: "a", URL: "/a.jpg", Width: 3000, Height: 2000, Taken: taken},
		{ID: "b", URL: "/b.jpg", Width: 2000, Height: 2000, Taken: taken, Caption: "Low tide"},
		{ID: "c", URL: "/c.jpg", Width: 2000, Height: 3000, Taken: taken},
	}
	if err := e.SetItems(is); err != nil {
		t.Fatalf("SetItems returned error: %v", err)
	}
	e.OnWidthChanged(1200)
	e.Scroll(0, 800)
	return e
}

func TestHTML(t *testing.T) {
	e := engine(t)
	e.Overlay().ToggleSelect("a")
	e.Overlay().OpenMenu("b")

	var buf bytes.Buffer
	p := FromEngine(e, "wall", func(i *photo.Item) string { return "/_thumbs" + i.URL })
	if err := HTML(&buf, p); err != nil {
		t.Fatalf("HTML returned error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"May 2024",
		`class="photo selected" data-id="a"`,
		`class="photo" data-id="b"`,
		`src="/_thumbs/b.jpg"`,
		`alt="Low tide"`,
		`data-action="add-to-album"`,
		">add to album<",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := strings.Count(out, "<img "); got != 3 {
		t.Errorf("rendered %d images, want 3", got)
	}
	if strings.Index(out, `class="menu"`) < strings.LastIndex(out, `class="row`) {
		t.Errorf("menu is not rendered after the rows:\n%s", out)
	}
	if strings.Contains(out, "<script") {
		t.Error("fragment contains a script")
	}
}

func TestHTMLMenuClosed(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, FromEngine(engine(t), "wall", nil)); err != nil {
		t.Fatalf("HTML returned error: %v", err)
	}
	if strings.Contains(buf.String(), `class="menu"`) {
		t.Errorf("menu rendered while closed:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `src="/a.jpg"`) {
		t.Errorf("default source not used:\n%s", buf.String())
	}
}

func TestCenteredRow(t *testing.T) {
	i := &photo.Item{ID: "solo", URL: "/solo.jpg", Width: 3, Height: 2}
	p := Page{
		Width:       1000,
		TotalHeight: 200,
		Rows: []feed.Placed{{
			Index: 0,
			Row: layout.Row{
				Kind:    layout.KindPhotos,
				Height:  200,
				Partial: true,
				Center:  true,
				Cells:   []layout.Cell{{Item: i, Width: 300}},
			},
		}},
	}

	var buf bytes.Buffer
	if err := HTML(&buf, p); err != nil {
		t.Fatalf("HTML returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "left:350px;top:0px;width:300px;height:200px") {
		t.Errorf("row not centered:\n%s", out)
	}
	if !strings.Contains(out, `class="row partial center"`) {
		t.Errorf("row classes missing:\n%s", out)
	}
	if !strings.Contains(out, `class="wall" style="left:0px;top:0px;width:1000px;height:200px"`) {
		t.Errorf("container not sized to the total height:\n%s", out)
	}
}

func TestDocument(t *testing.T) {
	p := FromEngine(engine(t), "Summer <2024>", nil)
	p.Live = true

	var buf bytes.Buffer
	if err := Document(&buf, p); err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "<title>Summer &lt;2024&gt;</title>", `data-live="true"`, "<script>", ".photo.selected"} {
		if !strings.Contains(out, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestPx(t *testing.T) {
	tests := map[float64]string{0: "0px", 100: "100px", 412.5: "412.5px", 1.256: "1.26px"}
	for in, want := range tests {
		if got := px(in); got != want {
			t.Errorf("px(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestActionLabel(t *testing.T) {
	label := tmplFunctions()["Label"].(func(overlay.Action) string)
	if got := label(overlay.RemoveFromAlbum); got != "remove from album" {
		t.Errorf("Label = %q", got)
	}
}
