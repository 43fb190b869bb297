package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
)

// Result is one normalized feed page
type Result struct {
	Mode     models.Mode       `json:"mode"`
	Window   models.FeedWindow `json:"window"`
	Articles []models.Article  `json:"articles"`
}

// Aggregator fetches the feed for the active mode and normalizes both response shapes
type Aggregator struct {
	builder QueryBuilder
	fetcher *Fetcher
	parser  *Parser
	now     func() time.Time
	log     zerolog.Logger
}

func NewAggregator(builder QueryBuilder, fetcher *Fetcher) *Aggregator {
	return &Aggregator{
		builder: builder,
		fetcher: fetcher,
		parser:  NewParser(),
		now:     time.Now,
		log:     logger.Component("feed"),
	}
}

// Fetch issues one feed request for the view and returns at most PageSize articles
func (a *Aggregator) Fetch(ctx context.Context, view models.ViewParams) (*Result, error) {
	start := time.Now()
	q := a.builder.Build(a.now(), view)

	a.log.Debug().
		Str("mode", string(q.Mode)).
		Str("from", q.Window.FromString()).
		Str("to", q.Window.ToString()).
		Msg("Fetching feed")

	body, err := a.fetcher.Fetch(ctx, q)
	if err != nil {
		a.log.Error().
			Err(err).
			Str("mode", string(q.Mode)).
			Msg("Feed request failed")
		return nil, err
	}

	articles, err := a.Normalize(q.Mode, body)
	if err != nil {
		return nil, err
	}

	a.log.Info().
		Str("mode", string(q.Mode)).
		Int("articles", len(articles)).
		Dur("duration", time.Since(start)).
		Msg("Fetched feed")

	return &Result{Mode: q.Mode, Window: q.Window, Articles: articles}, nil
}

// Normalize decodes a feed body of either shape into deduplicated, truncated articles.
// A body that is not a JSON object is an error; a missing or malformed
// article/cluster list yields zero articles.
func (a *Aggregator) Normalize(mode models.Mode, body []byte) ([]models.Article, error) {
	var envelope struct {
		Articles json.RawMessage `json:"articles"`
		Clusters json.RawMessage `json:"clusters"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %v", ErrFeedUnavailable, err)
	}

	var raws []rawArticle
	if mode == models.ModeMainstream {
		raws = a.representatives(envelope.Clusters)
	} else {
		raws = a.flat(envelope.Articles)
	}

	articles := make([]models.Article, 0, len(raws))
	for _, raw := range raws {
		articles = append(articles, a.parser.Normalize(raw))
	}
	return dedupe(articles, PageSize), nil
}

func (a *Aggregator) flat(data json.RawMessage) []rawArticle {
	if isAbsent(data) {
		a.log.Warn().Msg("Feed response has no article list")
		return nil
	}
	var raws []rawArticle
	if err := json.Unmarshal(data, &raws); err != nil {
		a.log.Warn().Err(err).Msg("Malformed article list in feed response")
		return nil
	}
	return raws
}

// representatives picks the first hit of each cluster, in cluster order.
// Clusters without hits are dropped; a malformed cluster is skipped.
func (a *Aggregator) representatives(data json.RawMessage) []rawArticle {
	if isAbsent(data) {
		a.log.Warn().Msg("Headline response has no cluster list")
		return nil
	}

	var clusters []json.RawMessage
	if err := json.Unmarshal(data, &clusters); err != nil {
		a.log.Warn().Err(err).Msg("Malformed cluster list in headline response")
		return nil
	}

	out := make([]rawArticle, 0, min(len(clusters), PageSize))
	for i, raw := range clusters {
		var cluster struct {
			Hits []rawArticle `json:"hits"`
		}
		if err := json.Unmarshal(raw, &cluster); err != nil {
			a.log.Warn().Err(err).Int("cluster", i).Msg("Skipping malformed cluster")
			continue
		}
		if len(cluster.Hits) == 0 {
			continue
		}
		out = append(out, cluster.Hits[0])
	}
	return out
}

func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
