package photo

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func ids(g Group) []string {
	out := []string{}
	for _, i := range g.Items {
		out = append(out, i.ID)
	}
	return out
}

func TestAspectFallback(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want float64
	}{
		{"landscape", Item{Width: 1200, Height: 600}, 2.0},
		{"portrait", Item{Width: 800, Height: 1000}, 0.8},
		{"missing", Item{}, FallbackAspect},
		{"missing height", Item{Width: 300}, FallbackAspect},
		{"negative", Item{Width: -4, Height: 3}, FallbackAspect},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.item.Aspect(); got != tc.want {
				t.Fatalf("Aspect() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeByMonthDescending(t *testing.T) {
	is := []*Item{
		{ID: "a", Taken: day(2024, time.March, 2)},
		{ID: "b", Taken: day(2024, time.May, 9)},
		{ID: "c", Taken: day(2024, time.March, 20)},
		{ID: "d"},
		{ID: "e", Taken: day(2023, time.December, 31)},
	}

	gs, err := Normalize(is, ByMonth, Descending)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	var titles [][]string
	for _, g := range gs {
		titles = append(titles, append([]string{g.Header.Title}, ids(g)...))
	}
	want := [][]string{
		{"May 2024", "b"},
		{"March 2024", "c", "a"},
		{"December 2023", "e"},
		{"Undated", "d"},
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}

	if is[0].ID != "a" || is[2].ID != "c" {
		t.Fatalf("Normalize reordered its input: %v, %v", is[0].ID, is[2].ID)
	}
}

func TestNormalizeByMonthAscending(t *testing.T) {
	is := []*Item{
		{ID: "a", Taken: day(2024, time.March, 2)},
		{ID: "b", Taken: day(2022, time.July, 1)},
	}
	gs, err := Normalize(is, ByMonth, Ascending)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(gs) != 2 || gs[0].Header.Title != "July 2022" || gs[1].Header.Title != "March 2024" {
		t.Fatalf("unexpected groups: %+v", gs)
	}
}

func TestNormalizeByPerson(t *testing.T) {
	ann := &Person{ID: "ann", Name: "Ann", BirthYear: 1990, Avatar: "ann.jpg"}
	annLater := &Person{ID: "ann", Name: "Annie", BirthYear: 1991}
	bob := &Person{ID: "bob", Name: "Bob"}

	is := []*Item{
		{ID: "1", Person: ann, Taken: day(2020, time.January, 1)},
		{ID: "2", Person: bob, Taken: day(2024, time.January, 1)},
		{ID: "3", Person: annLater, Taken: day(2021, time.January, 1)},
		{ID: "4"},
	}

	gs, err := Normalize(is, ByPerson, Descending)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(gs) != 3 {
		t.Fatalf("got %d groups, want 3", len(gs))
	}
	if gs[0].Header.Person.ID != "bob" {
		t.Fatalf("first group = %q, want bob", gs[0].Header.Person.ID)
	}
	h := gs[1].Header
	if h.Title != "Ann" || h.Person.BirthYear != 1990 || h.Person.Avatar != "ann.jpg" {
		t.Fatalf("person header = %+v, want first-encountered descriptor", h.Person)
	}
	if diff := cmp.Diff([]string{"1", "3"}, ids(gs[1])); diff != "" {
		t.Fatalf("ann items mismatch (-want +got):\n%s", diff)
	}
	if gs[2].Header.Title != "Unknown" || gs[2].Header.Person != nil {
		t.Fatalf("last group = %+v, want Unknown", gs[2].Header)
	}
}

func TestNormalizeRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name string
		is   []*Item
		want error
	}{
		{"missing", []*Item{{ID: "a"}, {URL: "/x.jpg"}}, ErrMissingID},
		{"duplicate", []*Item{{ID: "a"}, {ID: "a"}}, ErrDuplicateID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.is, ByMonth, Descending)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Normalize error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseKeyAndOrder(t *testing.T) {
	if k, err := ParseKey("Person"); err != nil || k != ByPerson {
		t.Fatalf("ParseKey(Person) = %v, %v", k, err)
	}
	if _, err := ParseKey("color"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if o, err := ParseOrder("asc"); err != nil || o != Ascending {
		t.Fatalf("ParseOrder(asc) = %v, %v", o, err)
	}
	if o, err := ParseOrder(""); err != nil || o != Descending {
		t.Fatalf("ParseOrder(\"\") = %v, %v", o, err)
	}
}
