package photo

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// Key selects how items are grouped.
type Key int

const (
	ByMonth Key = iota
	ByPerson
)

// Order is the order groups are emitted in.
type Order int

const (
	Descending Order = iota
	Ascending
)

var (
	monthTitle   = "January 2006"
	undatedTitle = "Undated"
	unknownTitle = "Unknown"
)

func (k Key) String() string {
	switch k {
	case ByPerson:
		return "person"
	default:
		return "month"
	}
}

func (o Order) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// ParseKey parses "month" or "person".
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month", "date":
		return ByMonth, nil
	case "person", "people":
		return ByPerson, nil
	}
	return ByMonth, fmt.Errorf("unknown grouping %q", s)
}

// ParseOrder parses "desc" or "asc".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return Descending, fmt.Errorf("unknown order %q", s)
}

// Normalize groups items by key, emitting groups in the given order.
// The input slice is not modified.
func Normalize(is []*Item, k Key, o Order) ([]Group, error) {
	if err := Validate(is); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var gs []Group
	switch k {
	case ByMonth:
		gs = byMonth(is, o)
	case ByPerson:
		gs = byPerson(is, o)
	default:
		return nil, fmt.Errorf("unknown grouping key %d", k)
	}

	klog.V(1).Infof("normalized %d items into %d groups by %s (%s)", len(is), len(gs), k, o)
	return gs, nil
}

// bucket is a group under construction, with the date used to order it.
type bucket struct {
	group Group
	when  time.Time
}

func sortBuckets(bs []*bucket, o Order) {
	slices.SortStableFunc(bs, func(a, b *bucket) int {
		if o == Ascending {
			return a.when.Compare(b.when)
		}
		return b.when.Compare(a.when)
	})
}

func byMonth(is []*Item, o Order) []Group {
	buckets := map[time.Time]*bucket{}
	order := []*bucket{}
	var undated []*Item

	for _, i := range is {
		if i.Taken.IsZero() {
			undated = append(undated, i)
			continue
		}
		m := time.Date(i.Taken.Year(), i.Taken.Month(), 1, 0, 0, 0, 0, time.UTC)
		b := buckets[m]
		if b == nil {
			b = &bucket{group: Group{Header: Header{Title: m.Format(monthTitle)}}, when: m}
			buckets[m] = b
			order = append(order, b)
		}
		b.group.Items = append(b.group.Items, i)
	}

	sortBuckets(order, o)

	gs := make([]Group, 0, len(order)+1)
	for _, b := range order {
		slices.SortStableFunc(b.group.Items, func(x, y *Item) int {
			return y.Taken.Compare(x.Taken)
		})
		gs = append(gs, b.group)
	}
	if len(undated) > 0 {
		gs = append(gs, Group{Header: Header{Title: undatedTitle}, Items: undated})
	}
	return gs
}

func byPerson(is []*Item, o Order) []Group {
	buckets := map[string]*bucket{}
	order := []*bucket{}
	var unknown []*Item

	for _, i := range is {
		if i.Person == nil || i.Person.ID == "" {
			unknown = append(unknown, i)
			continue
		}
		b := buckets[i.Person.ID]
		if b == nil {
			// The header is a copy of whatever the first item says about this person.
			p := *i.Person
			b = &bucket{group: Group{Header: Header{Title: p.Name, Person: &p}}}
			buckets[p.ID] = b
			order = append(order, b)
		}
		b.group.Items = append(b.group.Items, i)
		if i.Taken.After(b.when) {
			b.when = i.Taken
		}
	}

	sortBuckets(order, o)

	gs := make([]Group, 0, len(order)+1)
	for _, b := range order {
		gs = append(gs, b.group)
	}
	if len(unknown) > 0 {
		gs = append(gs, Group{Header: Header{Title: unknownTitle}, Items: unknown})
	}
	return gs
}
