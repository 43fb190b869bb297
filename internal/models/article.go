package models

import "time"

// UnknownSource is shown when a feed record carries no source name
const UnknownSource = "Unknown Source"

// Article represents one normalized feed entry, immutable once fetched
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	Domain      string    `json:"domain"`
	SourceName  string    `json:"source_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// DisplayArticle is an Article annotated with source metadata for rendering
type DisplayArticle struct {
	Article
	FaviconURL   string      `json:"favicon_url,omitempty"`
	Bias         *BiasRating `json:"bias,omitempty"`
	BiasLabel    string      `json:"bias_label"`
	BiasPosition *int        `json:"bias_position,omitempty"`
}
