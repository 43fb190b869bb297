package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/logger"
)

// ErrQuestionGeneration marks any failure to obtain a usable question
var ErrQuestionGeneration = errors.New("question generation failed")

// QuestionGenerator derives a search question from an article via a chat completion endpoint
type QuestionGenerator struct {
	client      *resty.Client
	model       string
	temperature float64
	log         zerolog.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewQuestionGenerator creates a generator for an OpenAI-compatible API rooted at baseURL
func NewQuestionGenerator(baseURL, apiKey, model string, temperature float64, timeout time.Duration) *QuestionGenerator {
	return &QuestionGenerator{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAuthToken(apiKey),
		model:       model,
		temperature: temperature,
		log:         logger.Component("ai"),
	}
}

// Generate returns a question for the article with the length constraint appended.
// Every failure wraps ErrQuestionGeneration.
func (g *QuestionGenerator) Generate(ctx context.Context, title, body string) (string, error) {
	start := time.Now()

	text, err := g.callCompletionAPI(ctx, BuildQuestionPrompt(title, body))
	if err != nil {
		g.log.Error().Err(err).Str("title", title).Msg("Question generation failed")
		return "", fmt.Errorf("%w: %v", ErrQuestionGeneration, err)
	}

	question := finalizeQuestion(text)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", ErrQuestionGeneration)
	}

	g.log.Debug().
		Str("question", question).
		Dur("duration", time.Since(start)).
		Msg("Generated question")
	return question, nil
}

func (g *QuestionGenerator) callCompletionAPI(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
	}

	var resp chatResponse
	r, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if !r.IsSuccess() {
		return "", fmt.Errorf("unexpected status code %d", r.StatusCode())
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}
