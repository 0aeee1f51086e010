package library

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/google/go-cmp/cmp"

	"github.com/tstromberg/photowall/pkg/photo"
)

func TestFromMetadata(t *testing.T) {
	fm := exiftool.FileMetadata{
		File: "/photos/2024/beach.jpg",
		Fields: map[string]interface{}{
			"ImageWidth":       float64(4032),
			"ImageHeight":      float64(3024),
			"Headline":         "Low tide",
			"Keywords":         []interface{}{"beach", "fav"},
			"City":             "Ostend",
			"Country":          "Belgium",
			"PersonInImage":    []interface{}{"Ann Smith", "Bob"},
			"DateTimeOriginal": "2024:05:09 17:30:00",
		},
	}
	people := map[string]photo.Person{"ann smith": {BirthYear: 1990, Avatar: "ann.jpg"}}

	i, err := fromMetadata(fm, people)
	if err != nil {
		t.Fatalf("fromMetadata returned error: %v", err)
	}

	want := &photo.Item{
		Width:       4032,
		Height:      3024,
		Caption:     "Low tide",
		Keywords:    []string{"beach", "fav"},
		Location:    "Ostend, Belgium",
		PersonLabel: "Ann Smith, Bob",
		Person:      &photo.Person{ID: "ann-smith", Name: "Ann Smith", BirthYear: 1990, Avatar: "ann.jpg"},
		Taken:       time.Date(2024, time.May, 9, 17, 30, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, i); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMetadataMissingFields(t *testing.T) {
	i, err := fromMetadata(exiftool.FileMetadata{File: "x.jpg", Fields: map[string]interface{}{}}, nil)
	if err != nil {
		t.Fatalf("fromMetadata returned error: %v", err)
	}
	if i.Width != 0 || i.Height != 0 || !i.Taken.IsZero() || i.Person != nil {
		t.Fatalf("item = %+v, want blank", i)
	}
	if i.Aspect() != photo.FallbackAspect {
		t.Fatalf("Aspect() = %v, want fallback", i.Aspect())
	}
}

func TestFromMetadataBadDate(t *testing.T) {
	fm := exiftool.FileMetadata{Fields: map[string]interface{}{"DateTimeOriginal": "yesterday"}}
	if _, err := fromMetadata(fm, nil); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestApplySidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path+".json", []byte(`{"title":"Sunset","tags":["sky"]}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	i := &photo.Item{Caption: "old", Keywords: []string{"x"}}
	if err := applySidecar(i, path); err != nil {
		t.Fatalf("applySidecar returned error: %v", err)
	}
	if i.Caption != "Sunset" || len(i.Keywords) != 1 || i.Keywords[0] != "sky" {
		t.Fatalf("item = %+v", i)
	}

	untouched := &photo.Item{Caption: "keep"}
	if err := applySidecar(untouched, filepath.Join(dir, "missing.jpg")); err != nil {
		t.Fatalf("applySidecar without sidecar returned error: %v", err)
	}
	if untouched.Caption != "keep" {
		t.Fatalf("Caption = %q, want keep", untouched.Caption)
	}

	if err := os.WriteFile(path+".json", []byte(`{`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := applySidecar(i, path); err == nil {
		t.Fatal("expected error for broken sidecar")
	}
}

func TestURLSafePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024/beach.jpg", "/2024/beach.jpg"},
		{"Ann's trip/day 1.jpg", "/Ann%27s%20trip/day%201.jpg"},
	}
	for _, tc := range tests {
		if got := urlSafePath(tc.in); got != tc.want {
			t.Fatalf("urlSafePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsPhoto(t *testing.T) {
	for path, want := range map[string]bool{"a.jpg": true, "b.JPEG": true, "c.png": false, "d": false} {
		if got := isPhoto(path); got != want {
			t.Fatalf("isPhoto(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestFindRequiresDirs(t *testing.T) {
	if _, err := Find(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without input directories")
	}
}

func TestFindEmptyTree(t *testing.T) {
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not found")
	}

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := Find(context.Background(), Options{InDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(l.Items) != 0 {
		t.Fatalf("found %d items, want 0", len(l.Items))
	}
}
