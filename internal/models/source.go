package models

import (
	"fmt"
	"strings"
)

// NoRating is the label shown when no provider has rated a source
const NoRating = "No rating available"

// BiasRating is a position on the five-point political lean scale
type BiasRating int

const (
	BiasLeft BiasRating = iota
	BiasLeanLeft
	BiasCenter
	BiasLeanRight
	BiasRight
)

var biasLabels = [...]string{"Left", "Lean Left", "Center", "Lean Right", "Right"}

// String returns the display label of the rating
func (b BiasRating) String() string {
	if b < BiasLeft || b > BiasRight {
		return fmt.Sprintf("BiasRating(%d)", int(b))
	}
	return biasLabels[b]
}

// Position maps the rating onto a 0-100 slider
func (b BiasRating) Position() int {
	return int(b) * 25
}

// ParseBiasRating accepts the labels used by the rating providers
func ParseBiasRating(s string) (BiasRating, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	switch key {
	case "left", "far left":
		return BiasLeft, true
	case "lean left", "left center", "skews left":
		return BiasLeanLeft, true
	case "center", "centre", "least biased", "middle":
		return BiasCenter, true
	case "lean right", "right center", "skews right":
		return BiasLeanRight, true
	case "right", "far right":
		return BiasRight, true
	}
	return 0, false
}

// MarshalText encodes the rating as its label
func (b BiasRating) MarshalText() ([]byte, error) {
	if b < BiasLeft || b > BiasRight {
		return nil, fmt.Errorf("invalid bias rating %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a provider label
func (b *BiasRating) UnmarshalText(text []byte) error {
	r, ok := ParseBiasRating(string(text))
	if !ok {
		return fmt.Errorf("unknown bias rating %q", string(text))
	}
	*b = r
	return nil
}

// SourceRecord holds the static display metadata for one news domain.
// Each rating field belongs to a distinct provider; empty means unrated.
type SourceRecord struct {
	Domain     string `json:"domain" yaml:"domain" validate:"required,fqdn"`
	Name       string `json:"name,omitempty" yaml:"name"`
	FaviconURL string `json:"favicon_url,omitempty" yaml:"favicon" validate:"omitempty,url"`
	Faith      bool   `json:"faith" yaml:"faith"`

	AllSides    string `json:"allsides,omitempty" yaml:"allsides"`
	AdFontes    string `json:"ad_fontes,omitempty" yaml:"ad_fontes"`
	MediaBiasFC string `json:"mbfc,omitempty" yaml:"mbfc"`
}

// Ratings returns the provider fields in resolution priority order
func (r SourceRecord) Ratings() []string {
	return []string{r.AllSides, r.AdFontes, r.MediaBiasFC}
}
