package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/answer"
	"github.com/bilgisen/faithcheck/internal/cache"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
)

const storeTimeout = 5 * time.Second

// Runner performs one verification
type Runner interface {
	Run(ctx context.Context, article models.Article, onProgress answer.ProgressFunc) models.Verification
}

// Status is the externally visible state of one article's verification
type Status struct {
	ArticleID    string                   `json:"article_id"`
	State        models.VerificationState `json:"state"`
	Generation   uint64                   `json:"generation"`
	Partial      *models.AnswerResult     `json:"partial,omitempty"`
	Verification *models.Verification     `json:"verification,omitempty"`
}

type flight struct {
	partial models.AnswerResult
}

// Cache enforces at most one verification per article and view generation.
// Idle -> InFlight -> Completed; triggers while InFlight or Completed do nothing.
// Reset starts a new generation: in-flight work is cancelled and its results dropped.
type Cache struct {
	runner  Runner
	store   cache.Store
	timeout time.Duration
	log     zerolog.Logger

	// storeMu orders store writes against Reset: Put holds it shared,
	// Reset holds it exclusively while it moves the generation and clears.
	// Lock order is storeMu then mu; store calls never run under mu.
	storeMu sync.RWMutex

	mu         sync.Mutex
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	inflight   map[string]*flight
	completed  map[string]struct{}
	wg         sync.WaitGroup
}

// NewCache creates a cache whose verifications are each bounded by timeout
func NewCache(runner Runner, store cache.Store, timeout time.Duration) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		runner:    runner,
		store:     store,
		timeout:   timeout,
		log:       logger.Component("verify"),
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[string]*flight),
		completed: make(map[string]struct{}),
	}
}

// Trigger starts verification of the article unless one is already in flight
// or completed in this generation. It reports whether a run was started.
func (c *Cache) Trigger(article models.Article) (Status, bool) {
	c.mu.Lock()

	id := article.ID
	_, running := c.inflight[id]
	_, done := c.completed[id]
	if running || done {
		s := c.statusLocked(id)
		c.mu.Unlock()
		return c.withResult(s), false
	}

	f := &flight{}
	c.inflight[id] = f
	gen := c.generation
	runCtx, cancel := context.WithTimeout(c.ctx, c.timeout)

	c.log.Info().
		Str("article_id", id).
		Uint64("generation", gen).
		Msg("Verification started")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		v := c.runner.Run(runCtx, article, func(partial models.AnswerResult) {
			c.mu.Lock()
			if c.generation == gen {
				f.partial = partial
			}
			c.mu.Unlock()
		})
		c.finish(gen, id, v)
	}()

	s := c.statusLocked(id)
	c.mu.Unlock()
	return s, true
}

func (c *Cache) finish(gen uint64, id string, v models.Verification) {
	err := c.persist(gen, id, v)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug().
			Str("article_id", id).
			Uint64("generation", gen).
			Uint64("current_generation", c.generation).
			Msg("Dropping verification for a stale view")
		return
	}
	delete(c.inflight, id)

	if err != nil {
		// Leave the article idle so it can be triggered again
		c.log.Error().Err(err).Str("article_id", id).Msg("Error storing verification")
		return
	}
	c.completed[id] = struct{}{}
}

// persist writes v under gen. Nothing is written once gen is stale, so a
// Reset never races a late write into the store.
func (c *Cache) persist(gen uint64, id string, v models.Verification) error {
	c.storeMu.RLock()
	defer c.storeMu.RUnlock()

	if c.Generation() != gen {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return c.store.Put(ctx, gen, id, data)
}

// Status returns the state of an article's verification in the current generation
func (c *Cache) Status(articleID string) Status {
	c.mu.Lock()
	s := c.statusLocked(articleID)
	c.mu.Unlock()
	return c.withResult(s)
}

func (c *Cache) statusLocked(id string) Status {
	s := Status{ArticleID: id, State: models.StateIdle, Generation: c.generation}

	if f, ok := c.inflight[id]; ok {
		s.State = models.StateInFlight
		partial := f.partial
		s.Partial = &partial
		return s
	}
	if _, ok := c.completed[id]; ok {
		s.State = models.StateCompleted
	}
	return s
}

// withResult loads the stored verification of a completed status. An entry
// that cannot be loaded is forgotten, so the article can be verified again.
func (c *Cache) withResult(s Status) Status {
	if s.State != models.StateCompleted {
		return s
	}

	v, err := c.load(s.Generation, s.ArticleID)
	if err != nil {
		c.log.Error().Err(err).Str("article_id", s.ArticleID).Msg("Error loading verification")

		c.mu.Lock()
		if c.generation == s.Generation {
			delete(c.completed, s.ArticleID)
		}
		c.mu.Unlock()

		s.State = models.StateIdle
		return s
	}
	s.Verification = v
	return s
}

func (c *Cache) load(gen uint64, id string) (*models.Verification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	data, ok, err := c.store.Get(ctx, gen, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("verification for %s missing from store", id)
	}
	var v models.Verification
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding verification: %w", err)
	}
	return &v, nil
}

// Reset discards every entry and starts a new generation. In-flight runs are
// cancelled and anything they produce afterwards is dropped.
func (c *Cache) Reset(ctx context.Context) (uint64, error) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.generation++
	gen := c.generation
	dropped := len(c.inflight)
	c.inflight = make(map[string]*flight)
	c.completed = make(map[string]struct{})
	c.mu.Unlock()

	c.log.Info().
		Uint64("generation", gen).
		Int("cancelled", dropped).
		Msg("Verification cache reset")

	if err := c.store.Clear(ctx); err != nil {
		return gen, fmt.Errorf("clearing verification store: %w", err)
	}
	return gen, nil
}

// Generation returns the current view generation
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Close cancels in-flight work and waits for it to finish
func (c *Cache) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}
