package feed

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/bilgisen/faithcheck/internal/models"
	"github.com/bilgisen/faithcheck/internal/utils"
)

// rawArticle is the article record shared by both feed response shapes
type rawArticle struct {
	ArticleID string `json:"articleId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	PubDate   string `json:"pubDate"`
	Source    struct {
		Domain string `json:"domain"`
		Name   string `json:"name"`
	} `json:"source"`
	ImageURL string `json:"imageUrl"`
	URL      string `json:"url"`
}

var pubDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	models.DateLayout,
}

// Parser handles cleaning and normalizing feed records
type Parser struct {
	htmlTagRegex *regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
	}
}

// CleanHTML removes HTML tags and normalizes whitespace
func (p *Parser) CleanHTML(input string) string {
	cleaned := p.htmlTagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.TrimSpace(cleaned)
}

// Normalize converts a feed record into an Article, filling defaults for absent fields
func (p *Parser) Normalize(raw rawArticle) models.Article {
	a := models.Article{
		ID:          strings.TrimSpace(raw.ArticleID),
		Title:       p.CleanHTML(raw.Title),
		Content:     p.CleanHTML(raw.Content),
		PublishedAt: parsePubDate(raw.PubDate),
		Domain:      strings.ToLower(strings.TrimSpace(raw.Source.Domain)),
		SourceName:  strings.TrimSpace(raw.Source.Name),
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		URL:         strings.TrimSpace(raw.URL),
	}
	if a.SourceName == "" {
		a.SourceName = models.UnknownSource
	}
	if a.ID == "" {
		if a.URL != "" {
			a.ID = utils.Hash(a.URL)
		} else {
			a.ID = utils.Hash(a.Title, a.Domain, raw.PubDate)
		}
	}
	return a
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// dedupe keeps the first article per identifier and truncates to limit, preserving order
func dedupe(articles []models.Article, limit int) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]models.Article, 0, min(len(articles), limit))
	for _, a := range articles {
		if len(out) == limit {
			break
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
