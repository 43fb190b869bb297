// Package citation turns streamed answer text into typed rich-text spans.
// Upstream text is never emitted as markup; HTML output escapes every span.
package citation

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/bilgisen/faithcheck/internal/models"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	markerPattern = regexp.MustCompile(`\[(\d+)\]`)
	prefixPattern = regexp.MustCompile(`(?i)^perigon response:\s*`)
)

// Document is formatted answer text
type Document struct {
	Spans []models.Span `json:"spans"`
}

// Format applies, in order: bold runs to emphasis, [n] markers to links, and
// removal of a leading "Perigon Response:" label. A marker whose index has no
// citation with a safe http(s) URL stays literal text. For duplicate indices
// the last citation wins.
func Format(text string, citations []models.Citation) Document {
	links := make(map[int]string, len(citations))
	for _, c := range citations {
		if safeURL(c.URL) {
			links[c.SequenceIndex] = c.URL
		} else {
			delete(links, c.SequenceIndex)
		}
	}

	var spans []models.Span
	for _, run := range splitBold(text) {
		spans = append(spans, resolveMarkers(run, links)...)
	}
	spans = stripPrefix(spans)
	return Document{Spans: merge(spans)}
}

// splitBold is the first transform: non-greedy, non-nested **X** runs
func splitBold(text string) []models.Span {
	var out []models.Span
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, models.Span{Kind: models.SpanPlain, Text: text[last:m[0]]})
		}
		out = append(out, models.Span{Kind: models.SpanEmphasis, Text: text[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, models.Span{Kind: models.SpanPlain, Text: text[last:]})
	}
	return out
}

// resolveMarkers is the second transform, applied within one run
func resolveMarkers(run models.Span, links map[int]string) []models.Span {
	var out []models.Span
	text := run.Text
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		target, ok := links[n]
		if !ok {
			continue
		}
		if m[0] > last {
			out = append(out, models.Span{Kind: run.Kind, Text: text[last:m[0]]})
		}
		out = append(out, models.Span{
			Kind:     models.SpanLink,
			Text:     text[m[0]:m[1]],
			URL:      target,
			Emphasis: run.Kind == models.SpanEmphasis,
		})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, models.Span{Kind: run.Kind, Text: text[last:]})
	}
	return out
}

// stripPrefix is the third transform; it only touches a leading plain span
func stripPrefix(spans []models.Span) []models.Span {
	if len(spans) == 0 || spans[0].Kind != models.SpanPlain {
		return spans
	}
	rest := prefixPattern.ReplaceAllString(spans[0].Text, "")
	if rest == "" {
		return spans[1:]
	}
	spans[0].Text = rest
	return spans
}

// merge joins adjacent plain or emphasis spans
func merge(spans []models.Span) []models.Span {
	out := make([]models.Span, 0, len(spans))
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && s.Kind != models.SpanLink && out[n-1].Kind == s.Kind {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Text returns the document without any markup
func (d Document) Text() string {
	var sb strings.Builder
	for _, s := range d.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// HTML renders the document with every piece of upstream text escaped
func (d Document) HTML() string {
	var sb strings.Builder
	for _, s := range d.Spans {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case models.SpanEmphasis:
			sb.WriteString("<b>" + text + "</b>")
		case models.SpanLink:
			link := `<a href="` + html.EscapeString(s.URL) + `" target="_blank" rel="noopener noreferrer">` + text + `</a>`
			if s.Emphasis {
				link = "<b>" + link + "</b>"
			}
			sb.WriteString(link)
		default:
			sb.WriteString(text)
		}
	}
	return sb.String()
}
