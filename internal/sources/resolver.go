package sources

import (
	"net/url"
	"sort"
	"strings"

	"github.com/bilgisen/faithcheck/internal/models"
)

// Resolver answers display-metadata lookups against the static source table.
// It is read-only after construction and safe for concurrent use.
type Resolver struct {
	records map[string]models.SourceRecord
}

// NewResolver indexes records by normalized domain. Later duplicates replace earlier ones.
func NewResolver(records []models.SourceRecord) *Resolver {
	r := &Resolver{records: make(map[string]models.SourceRecord, len(records))}
	for _, rec := range records {
		key := NormalizeDomain(rec.Domain)
		if key == "" {
			continue
		}
		rec.Domain = key
		r.records[key] = rec
	}
	return r
}

// NormalizeDomain lower-cases a domain and strips scheme, "www." and any path
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if strings.Contains(d, "://") {
		if u, err := url.Parse(d); err == nil {
			d = u.Host
		}
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if host, _, ok := strings.Cut(d, ":"); ok {
		d = host
	}
	return strings.TrimPrefix(d, "www.")
}

// Resolve returns the record for a domain, if the table has one
func (r *Resolver) Resolve(domain string) (models.SourceRecord, bool) {
	rec, ok := r.records[NormalizeDomain(domain)]
	return rec, ok
}

// BiasRatingOf returns the first rating present in provider priority order.
// Unparseable provider values count as absent.
func BiasRatingOf(rec models.SourceRecord) (models.BiasRating, bool) {
	for _, raw := range rec.Ratings() {
		if raw == "" {
			continue
		}
		if rating, ok := models.ParseBiasRating(raw); ok {
			return rating, true
		}
	}
	return 0, false
}

// Annotate attaches favicon and bias metadata to each article.
// Unknown domains degrade to no favicon and NoRating.
func (r *Resolver) Annotate(articles []models.Article) []models.DisplayArticle {
	out := make([]models.DisplayArticle, 0, len(articles))
	for _, a := range articles {
		d := models.DisplayArticle{Article: a, BiasLabel: models.NoRating}
		if rec, ok := r.Resolve(a.Domain); ok {
			d.FaviconURL = rec.FaviconURL
			if rating, ok := BiasRatingOf(rec); ok {
				pos := rating.Position()
				d.Bias = &rating
				d.BiasLabel = rating.String()
				d.BiasPosition = &pos
			}
		}
		out = append(out, d)
	}
	return out
}

// FaithSources lists the faith-aligned domains offered as feed filters, sorted by domain
func (r *Resolver) FaithSources() []models.SourceRecord {
	var out []models.SourceRecord
	for _, rec := range r.records {
		if rec.Faith {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Len reports how many sources are indexed
func (r *Resolver) Len() int {
	return len(r.records)
}
