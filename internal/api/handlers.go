package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/faithcheck/internal/feed"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/middleware"
	"github.com/bilgisen/faithcheck/internal/models"
	"github.com/bilgisen/faithcheck/internal/sources"
	"github.com/bilgisen/faithcheck/internal/view"
)

// FeedQuery is the validated query of GET /feed
type FeedQuery struct {
	Mode       string   `query:"mode" validate:"required,oneof=faith mainstream"`
	Offset     int      `query:"offset" validate:"min=0,max=365"`
	Sources    []string `query:"source" validate:"max=50,dive,max=253"`
	Categories []string `query:"category" validate:"max=50,dive,max=100"`
}

// Params converts the query into view parameters, dropping empty filter values.
// Strings are cloned: fiber reuses request buffers and the view outlives the request.
func (q *FeedQuery) Params() models.ViewParams {
	params := models.ViewParams{
		Mode:   models.Mode(strings.Clone(q.Mode)),
		Offset: q.Offset,
	}
	if params.Mode == models.ModeFaith {
		params.Filters = models.FeedFilters{
			Sources:    nonEmpty(q.Sources, sources.NormalizeDomain),
			Categories: nonEmpty(q.Categories, strings.TrimSpace),
		}
	}
	return params
}

func nonEmpty(values []string, clean func(string) string) []string {
	var out []string
	for _, v := range values {
		if v = clean(v); v != "" {
			out = append(out, strings.Clone(v))
		}
	}
	return out
}

type Handlers struct {
	view    *view.View
	sources *sources.Resolver
}

func NewHandlers(v *view.View, resolver *sources.Resolver) *Handlers {
	return &Handlers{view: v, sources: resolver}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// GetFeed handles GET /feed
func (h *Handlers) GetFeed(c *fiber.Ctx) error {
	q := c.Locals(middleware.QueryKey).(*FeedQuery)

	page, err := h.view.Refresh(c.UserContext(), q.Params())
	switch {
	case errors.Is(err, feed.ErrFeedUnavailable):
		logger.Get().Error().Err(err).Str("mode", q.Mode).Msg("Error fetching feed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Feed is unavailable",
		})
	case errors.Is(err, view.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "View changed while loading, retry",
		})
	case err != nil:
		return err
	}

	return c.JSON(fiber.Map{
		"generation": page.Generation,
		"mode":       page.Params.Mode,
		"from":       page.Window.FromString(),
		"to":         page.Window.ToString(),
		"filters":    page.Params.Filters,
		"total":      len(page.Articles),
		"items":      page.Articles,
	})
}

// GetSources handles GET /sources
func (h *Handlers) GetSources(c *fiber.Ctx) error {
	records := h.sources.FaithSources()
	items := make([]fiber.Map, 0, len(records))
	for _, rec := range records {
		label := models.NoRating
		if rating, ok := sources.BiasRatingOf(rec); ok {
			label = rating.String()
		}
		items = append(items, fiber.Map{
			"domain":      rec.Domain,
			"name":        rec.Name,
			"favicon_url": rec.FaviconURL,
			"bias_label":  label,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

// VerifyArticle handles POST /articles/:id/verify
func (h *Handlers) VerifyArticle(c *fiber.Ctx) error {
	id := c.Params("id")
	status, started, err := h.view.Verify(id)
	if errors.Is(err, view.ErrUnknownArticle) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article is not in the current feed",
		})
	}
	if err != nil {
		return err
	}

	code := fiber.StatusOK
	if started {
		code = fiber.StatusAccepted
	}
	return c.Status(code).JSON(status)
}

// GetVerification handles GET /articles/:id/verification
func (h *Handlers) GetVerification(c *fiber.Ctx) error {
	id := c.Params("id")
	status, err := h.view.Verification(id)
	if errors.Is(err, view.ErrUnknownArticle) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article is not in the current feed",
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(status)
}
