package models

import (
	"slices"
	"time"
)

// Mode selects which feed is displayed
type Mode string

const (
	ModeFaith      Mode = "faith"
	ModeMainstream Mode = "mainstream"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeFaith || m == ModeMainstream
}

// FeedWindow is a one-day calendar window; From is always the day before To
type FeedWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DateLayout is the wire format of window bounds
const DateLayout = "2006-01-02"

// FromString formats the lower bound as YYYY-MM-DD
func (w FeedWindow) FromString() string { return w.From.Format(DateLayout) }

// ToString formats the upper bound as YYYY-MM-DD
func (w FeedWindow) ToString() string { return w.To.Format(DateLayout) }

// Equal compares two windows by calendar date
func (w FeedWindow) Equal(o FeedWindow) bool {
	return w.FromString() == o.FromString() && w.ToString() == o.ToString()
}

// FeedFilters holds the selected source domains and category tags
type FeedFilters struct {
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
}

// ViewParams is the immutable description of what the feed view shows.
// A view changes only by replacing the whole value.
type ViewParams struct {
	Mode    Mode        `json:"mode"`
	Offset  int         `json:"offset"`
	Filters FeedFilters `json:"filters"`
}

// Equal compares two views, treating filter sets as unordered
func (v ViewParams) Equal(o ViewParams) bool {
	return v.Mode == o.Mode &&
		v.Offset == o.Offset &&
		sameSet(v.Filters.Sources, o.Filters.Sources) &&
		sameSet(v.Filters.Categories, o.Filters.Categories)
}

func sameSet(a, b []string) bool {
	a, b = dedupeSorted(a), dedupeSorted(b)
	return slices.Equal(a, b)
}

func dedupeSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
