package models

import "time"

// Citation links a bracket marker [n] in answer text to a source URL
type Citation struct {
	SequenceIndex int    `json:"sequenceIndex"`
	URL           string `json:"url"`
}

// AnswerResult is the accumulated output of one answer stream
type AnswerResult struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// VerificationState tracks a verification request for one article
type VerificationState string

const (
	StateIdle      VerificationState = "idle"
	StateInFlight  VerificationState = "in_flight"
	StateCompleted VerificationState = "completed"
)

// OutcomeStatus tells a usable answer apart from an unavailable one
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Span is one typed run of rendered answer text
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
	URL  string   `json:"url,omitempty"`
	// Emphasis is set on links that appear inside a bold run
	Emphasis bool `json:"emphasis,omitempty"`
}

// SpanKind enumerates the span types
type SpanKind string

const (
	SpanPlain    SpanKind = "plain"
	SpanEmphasis SpanKind = "emphasis"
	SpanLink     SpanKind = "link"
)

// Verification is the stored result of a completed verification
type Verification struct {
	ArticleID   string        `json:"article_id"`
	Status      OutcomeStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Question    string        `json:"question,omitempty"`
	Answer      *AnswerResult `json:"answer,omitempty"`
	Spans       []Span        `json:"spans,omitempty"`
	HTML        string        `json:"html,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
}
