// Package view holds the state of the single feed view: its parameters, the
// displayed articles and the verification cache scoped to them.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/feed"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
	"github.com/bilgisen/faithcheck/internal/verify"
)

var (
	// ErrUnknownArticle is returned for articles not displayed in the current view
	ErrUnknownArticle = errors.New("article not in current view")
	// ErrSuperseded is returned when another refresh replaced the view mid-fetch
	ErrSuperseded = errors.New("view superseded by a newer refresh")
)

// FeedSource fetches one feed page for a set of view parameters
type FeedSource interface {
	Fetch(ctx context.Context, params models.ViewParams) (*feed.Result, error)
}

// Annotator attaches display metadata to articles
type Annotator interface {
	Annotate(articles []models.Article) []models.DisplayArticle
}

// Page is what the view displays after a refresh
type Page struct {
	Generation uint64                  `json:"generation"`
	Params     models.ViewParams       `json:"params"`
	Window     models.FeedWindow       `json:"window"`
	Articles   []models.DisplayArticle `json:"articles"`
}

type View struct {
	feed      FeedSource
	annotator Annotator
	cache     *verify.Cache
	log       zerolog.Logger

	mu       sync.Mutex
	params   *models.ViewParams
	window   *models.FeedWindow
	articles map[string]models.Article
}

func New(source FeedSource, annotator Annotator, cache *verify.Cache) *View {
	return &View{
		feed:      source,
		annotator: annotator,
		cache:     cache,
		log:       logger.Component("view"),
		articles:  make(map[string]models.Article),
	}
}

// Refresh fetches the feed for params. Changing the parameters replaces the
// view: the verification cache moves to a new generation before the fetch.
// Equal parameters resolving to a new date window (offsets are relative to
// today) also replace it, once the fetch reports the window.
func (v *View) Refresh(ctx context.Context, params models.ViewParams) (*Page, error) {
	gen, err := v.apply(ctx, params)
	if err != nil {
		return nil, err
	}

	res, err := v.feed.Fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache.Generation() != gen {
		return nil, ErrSuperseded
	}
	if v.window != nil && !v.window.Equal(res.Window) {
		gen = v.resetLocked(ctx)
		v.log.Info().
			Str("from", res.Window.FromString()).
			Str("to", res.Window.ToString()).
			Uint64("generation", gen).
			Msg("Date window moved")
	}
	window := res.Window
	v.window = &window

	v.articles = make(map[string]models.Article, len(res.Articles))
	for _, a := range res.Articles {
		v.articles[a.ID] = a
	}

	return &Page{
		Generation: gen,
		Params:     params,
		Window:     res.Window,
		Articles:   v.annotator.Annotate(res.Articles),
	}, nil
}

func (v *View) apply(ctx context.Context, params models.ViewParams) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.params != nil && v.params.Equal(params) {
		return v.cache.Generation(), nil
	}

	gen := v.resetLocked(ctx)
	v.params = &params
	v.window = nil
	v.articles = make(map[string]models.Article)

	v.log.Info().
		Str("mode", string(params.Mode)).
		Int("offset", params.Offset).
		Uint64("generation", gen).
		Msg("View changed")
	return gen, nil
}

func (v *View) resetLocked(ctx context.Context) uint64 {
	gen, err := v.cache.Reset(ctx)
	if err != nil {
		// The new generation is in place; a store that failed to clear only
		// holds entries keyed to older generations.
		v.log.Error().Err(err).Msg("Error clearing verification store")
	}
	return gen
}

// Params returns the current view parameters, if any refresh happened yet
func (v *View) Params() (models.ViewParams, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.params == nil {
		return models.ViewParams{}, false
	}
	return *v.params, true
}

func (v *View) article(id string) (models.Article, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.articles[id]
	if !ok {
		return models.Article{}, ErrUnknownArticle
	}
	return a, nil
}

// Verify triggers verification of a displayed article. The view stays locked
// until the run is registered, so a concurrent view change either precedes
// the lookup or cancels the run.
func (v *View) Verify(articleID string) (verify.Status, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, ok := v.articles[articleID]
	if !ok {
		return verify.Status{}, false, ErrUnknownArticle
	}
	status, started := v.cache.Trigger(a)
	return status, started, nil
}

// Verification reports the verification state of a displayed article
func (v *View) Verification(articleID string) (verify.Status, error) {
	if _, err := v.article(articleID); err != nil {
		return verify.Status{}, err
	}
	return v.cache.Status(articleID), nil
}
