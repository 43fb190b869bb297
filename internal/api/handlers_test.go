package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/faithcheck/internal/answer"
	"github.com/bilgisen/faithcheck/internal/cache"
	"github.com/bilgisen/faithcheck/internal/feed"
	"github.com/bilgisen/faithcheck/internal/middleware"
	"github.com/bilgisen/faithcheck/internal/models"
	"github.com/bilgisen/faithcheck/internal/sources"
	"github.com/bilgisen/faithcheck/internal/verify"
	"github.com/bilgisen/faithcheck/internal/view"
)

type stubFeed struct {
	last models.ViewParams
	err  error
}

func (s *stubFeed) Fetch(_ context.Context, params models.ViewParams) (*feed.Result, error) {
	s.last = params
	if s.err != nil {
		return nil, s.err
	}
	return &feed.Result{
		Mode:     params.Mode,
		Window:   feed.NewWindow(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), params.Offset),
		Articles: []models.Article{{ID: "art-1", Title: "T", Domain: "cbn.com", SourceName: "CBN"}},
	}, nil
}

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, a models.Article, _ answer.ProgressFunc) models.Verification {
	return models.Verification{ArticleID: a.ID, Status: models.OutcomeSucceeded, HTML: "<b>ok</b>"}
}

func newTestApp(t *testing.T, f *stubFeed) *fiber.App {
	t.Helper()
	resolver := sources.NewResolver([]models.SourceRecord{
		{Domain: "cbn.com", Name: "CBN News", Faith: true, AllSides: "Lean Right"},
		{Domain: "cnn.com", Name: "CNN", AllSides: "Left"},
	})
	c := verify.NewCache(stubRunner{}, cache.NewMemoryStore(), time.Minute)
	t.Cleanup(c.Close)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(app, NewHandlers(view.New(f, resolver, c), resolver))
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestGetFeed(t *testing.T) {
	f := &stubFeed{}
	app := newTestApp(t, f)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/feed?mode=faith&offset=1&source=www.CBN.com&source=&category=Religion", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode(t, resp.Body)
	if body["from"] != "2024-04-30" || body["to"] != "2024-05-01" {
		t.Errorf("unexpected window %v..%v", body["from"], body["to"])
	}
	items := body["items"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["bias_label"] != "Lean Right" {
		t.Errorf("unexpected items %v", items)
	}
	if len(f.last.Filters.Sources) != 1 || f.last.Filters.Sources[0] != "cbn.com" {
		t.Errorf("expected normalized source filter, got %v", f.last.Filters.Sources)
	}
}

func TestGetFeedMainstreamDropsFilters(t *testing.T) {
	f := &stubFeed{}
	app := newTestApp(t, f)

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/feed?mode=mainstream&source=cbn.com", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(f.last.Filters.Sources) != 0 {
		t.Errorf("expected filters to be ignored in mainstream mode, got %v", f.last.Filters)
	}
}

func TestGetFeedValidation(t *testing.T) {
	app := newTestApp(t, &stubFeed{})

	for _, target := range []string{"/api/v1/feed", "/api/v1/feed?mode=other", "/api/v1/feed?mode=faith&offset=-1"} {
		resp, _ := app.Test(httptest.NewRequest("GET", target, nil))
		if resp.StatusCode != fiber.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", target, resp.StatusCode)
		}
	}
}

func TestGetFeedUnavailable(t *testing.T) {
	app := newTestApp(t, &stubFeed{err: errors.Join(feed.ErrFeedUnavailable, errors.New("status 500"))})

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/feed?mode=faith", nil))
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestVerifyFlow(t *testing.T) {
	app := newTestApp(t, &stubFeed{})

	resp, _ := app.Test(httptest.NewRequest("POST", "/api/v1/articles/art-1/verify", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 before the feed is loaded, got %d", resp.StatusCode)
	}

	if resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/feed?mode=faith", nil)); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected feed to load, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("POST", "/api/v1/articles/art-1/verify", nil))
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("expected 202 on first trigger, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/articles/art-1/verification", nil))
		body := decode(t, resp.Body)
		if body["state"] == string(models.StateCompleted) {
			v := body["verification"].(map[string]interface{})
			if v["html"] != "<b>ok</b>" || v["status"] != "succeeded" {
				t.Fatalf("unexpected verification %v", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("verification did not complete: %v", body)
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, _ = app.Test(httptest.NewRequest("POST", "/api/v1/articles/art-1/verify", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for completed article, got %d", resp.StatusCode)
	}
}

func TestGetSources(t *testing.T) {
	app := newTestApp(t, &stubFeed{})

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/sources", nil))
	body := decode(t, resp.Body)
	items := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected only faith sources, got %v", items)
	}
	item := items[0].(map[string]interface{})
	if item["domain"] != "cbn.com" || item["bias_label"] != "Lean Right" {
		t.Errorf("unexpected source %v", item)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	app := newTestApp(t, &stubFeed{})
	resp, _ := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
