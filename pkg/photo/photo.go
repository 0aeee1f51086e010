// Package photo holds the photo records handed to the wall and groups them for display.
package photo

import (
	"errors"
	"fmt"
	"time"
)

// FallbackAspect is assumed for items without usable native dimensions (1200x800).
const FallbackAspect = 1.5

var (
	// ErrMissingID is returned for an item without an ID.
	ErrMissingID = errors.New("item has no id")
	// ErrDuplicateID is returned when two items share an ID.
	ErrDuplicateID = errors.New("duplicate item id")
)

// Person is someone who appears in a photo.
type Person struct {
	ID        string
	Name      string
	BirthYear int
	Avatar    string
}

// Item represents a photo. Width and Height are native pixels and may be zero.
type Item struct {
	ID  string
	URL string

	Width  int64
	Height int64

	Caption     string
	Location    string
	PersonLabel string

	Taken    time.Time
	Person   *Person
	Keywords []string
}

// Aspect returns width divided by height, or FallbackAspect if either is missing.
func (i *Item) Aspect() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return FallbackAspect
	}
	return float64(i.Width) / float64(i.Height)
}

// Header describes a group: either a title or a person.
type Header struct {
	Title  string
	Person *Person
}

// Group is a header followed by its items in display order.
type Group struct {
	Header Header
	Items  []*Item
}

// Validate rejects items that would break click and selection identity.
func Validate(is []*Item) error {
	seen := make(map[string]int, len(is))
	for n, i := range is {
		if i.ID == "" {
			return fmt.Errorf("item %d (%s): %w", n, i.URL, ErrMissingID)
		}
		if prev, ok := seen[i.ID]; ok {
			return fmt.Errorf("items %d and %d share %q: %w", prev, n, i.ID, ErrDuplicateID)
		}
		seen[i.ID] = n
	}
	return nil
}
