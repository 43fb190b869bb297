package ai

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// cleanText removes control characters and normalizes whitespace
func cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// finalizeQuestion trims the model output and appends the length constraint.
// It returns "" when nothing usable is left.
func finalizeQuestion(raw string) string {
	q := cleanText(raw)
	q = strings.Trim(q, `"'`)
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return q + " " + LengthConstraint
}
