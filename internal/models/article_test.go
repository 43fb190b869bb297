package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDisplayArticleJSON(t *testing.T) {
	bias := BiasLeanRight
	pos := bias.Position()
	item := DisplayArticle{
		Article: Article{
			ID:          "a1",
			Title:       "Test Title",
			PublishedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Domain:      "example.com",
			SourceName:  "Example",
			ImageURL:    "https://example.com/image.jpg",
		},
		FaviconURL:   "https://example.com/favicon.ico",
		Bias:         &bias,
		BiasLabel:    bias.String(),
		BiasPosition: &pos,
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Failed to marshal DisplayArticle: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if result["id"] != "a1" {
		t.Errorf("Expected embedded article fields to be flattened, got %v", result["id"])
	}
	if result["bias"] != "Lean Right" {
		t.Errorf("Expected bias to encode as label, got %v", result["bias"])
	}
	if result["bias_position"] != float64(75) {
		t.Errorf("Expected bias_position 75, got %v", result["bias_position"])
	}
	if _, ok := result["url"]; ok {
		t.Errorf("Expected empty url to be omitted")
	}
}

func TestBiasRatingPositions(t *testing.T) {
	want := map[BiasRating]int{BiasLeft: 0, BiasLeanLeft: 25, BiasCenter: 50, BiasLeanRight: 75, BiasRight: 100}
	for r, pos := range want {
		if got := r.Position(); got != pos {
			t.Errorf("%s: expected position %d, got %d", r, pos, got)
		}
	}
}

func TestParseBiasRating(t *testing.T) {
	cases := map[string]BiasRating{
		"Left":         BiasLeft,
		"lean left":    BiasLeanLeft,
		"Left-Center":  BiasLeanLeft,
		" CENTER ":     BiasCenter,
		"Lean Right":   BiasLeanRight,
		"right_center": BiasLeanRight,
		"Right":        BiasRight,
	}
	for in, want := range cases {
		got, ok := ParseBiasRating(in)
		if !ok || got != want {
			t.Errorf("ParseBiasRating(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseBiasRating("satire"); ok {
		t.Errorf("expected unknown label to be rejected")
	}
}

func TestViewParamsEqual(t *testing.T) {
	a := ViewParams{Mode: ModeFaith, Offset: 1, Filters: FeedFilters{Sources: []string{"b.com", "a.com"}}}
	b := ViewParams{Mode: ModeFaith, Offset: 1, Filters: FeedFilters{Sources: []string{"a.com", "b.com", "a.com"}}}
	if !a.Equal(b) {
		t.Errorf("expected filter order and duplicates to be ignored")
	}
	b.Offset = 2
	if a.Equal(b) {
		t.Errorf("expected different offsets to differ")
	}
	c := ViewParams{Mode: ModeMainstream, Offset: 1, Filters: a.Filters}
	if a.Equal(c) {
		t.Errorf("expected different modes to differ")
	}
}
