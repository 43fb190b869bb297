package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/answer"
	"github.com/bilgisen/faithcheck/internal/citation"
	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
)

// QuestionGenerator produces a search question for an article
type QuestionGenerator interface {
	Generate(ctx context.Context, title, body string) (string, error)
}

// AnswerStreamer streams an answer with citations for a question
type AnswerStreamer interface {
	Ask(ctx context.Context, question string, onProgress answer.ProgressFunc) (models.AnswerResult, error)
}

// Pipeline runs question generation, the answer stream and citation formatting
type Pipeline struct {
	questions QuestionGenerator
	answers   AnswerStreamer
	now       func() time.Time
	log       zerolog.Logger
}

func NewPipeline(questions QuestionGenerator, answers AnswerStreamer) *Pipeline {
	return &Pipeline{
		questions: questions,
		answers:   answers,
		now:       time.Now,
		log:       logger.Component("verify"),
	}
}

// Run verifies one article. It never returns an error: a failed stage yields
// an outcome with OutcomeFailed and a reason, and later stages are skipped.
func (p *Pipeline) Run(ctx context.Context, article models.Article, onProgress answer.ProgressFunc) models.Verification {
	start := p.now()
	v := models.Verification{ArticleID: article.ID}

	question, err := p.questions.Generate(ctx, article.Title, article.Content)
	if err != nil {
		return p.fail(v, fmt.Sprintf("could not generate a question: %v", err))
	}
	v.Question = question

	result, err := p.answers.Ask(ctx, question, onProgress)
	if err != nil {
		return p.fail(v, fmt.Sprintf("could not get an answer: %v", err))
	}

	doc := citation.Format(result.Text, result.Citations)
	v.Status = models.OutcomeSucceeded
	v.Answer = &result
	v.Spans = doc.Spans
	v.HTML = doc.HTML()
	v.CompletedAt = p.now()

	p.log.Info().
		Str("article_id", article.ID).
		Int("citations", len(result.Citations)).
		Dur("duration", v.CompletedAt.Sub(start)).
		Msg("Verification succeeded")
	return v
}

func (p *Pipeline) fail(v models.Verification, reason string) models.Verification {
	v.Status = models.OutcomeFailed
	v.Reason = reason
	v.CompletedAt = p.now()
	p.log.Warn().
		Str("article_id", v.ArticleID).
		Str("reason", reason).
		Msg("Verification failed")
	return v
}
