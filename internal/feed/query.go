package feed

import (
	"net/url"
	"slices"
	"time"

	"github.com/bilgisen/faithcheck/internal/models"
)

const (
	// PageSize is the fixed number of articles requested and displayed
	PageSize = 18
	// MainstreamSourceGroup is the top-source group queried in mainstream mode
	MainstreamSourceGroup = "top10"

	faithEndpoint      = "/all"
	mainstreamEndpoint = "/headlines"
)

// Query describes one feed request. Building it performs no I/O.
type Query struct {
	Mode     models.Mode
	Endpoint string
	Window   models.FeedWindow
	Params   url.Values
}

// QueryBuilder turns view parameters into feed requests
type QueryBuilder struct {
	APIKey string
}

// NewWindow returns the one-day window ending offset days before today.
// Negative offsets are treated as zero.
func NewWindow(today time.Time, offset int) models.FeedWindow {
	offset = max(offset, 0)
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return models.FeedWindow{
		From: day.AddDate(0, 0, -(offset + 1)),
		To:   day.AddDate(0, 0, -offset),
	}
}

// Build computes the request for a view as of today
func (b QueryBuilder) Build(today time.Time, view models.ViewParams) Query {
	window := NewWindow(today, view.Offset)

	params := url.Values{}
	params.Set("apiKey", b.APIKey)
	params.Set("from", window.FromString())
	params.Set("to", window.ToString())
	params.Set("showNumResults", "true")
	params.Set("size", "18")
	params.Set("sortBy", "date")

	q := Query{Mode: view.Mode, Window: window, Params: params}

	if view.Mode == models.ModeMainstream {
		q.Endpoint = mainstreamEndpoint
		params.Set("sourceGroup", MainstreamSourceGroup)
		return q
	}

	q.Mode = models.ModeFaith
	q.Endpoint = faithEndpoint
	setRepeated(params, "source", view.Filters.Sources)
	setRepeated(params, "category", view.Filters.Categories)
	return q
}

// setRepeated writes one parameter per value, sorted for stable URLs.
// An empty set is still sent as a single empty parameter.
func setRepeated(params url.Values, key string, values []string) {
	if len(values) == 0 {
		params[key] = []string{""}
		return
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	params[key] = slices.Compact(sorted)
}
