package answer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/faithcheck/internal/logger"
	"github.com/bilgisen/faithcheck/internal/models"
)

// ErrStreamFailed marks an answer stream that could not be opened or was cut off
var ErrStreamFailed = errors.New("answer stream failed")

// Client asks questions of the streaming chat endpoint
type Client struct {
	client   *resty.Client
	url      string
	threadID func() string
	log      zerolog.Logger
}

type streamRequest struct {
	Content  string `json:"content"`
	Stream   bool   `json:"stream"`
	ThreadID string `json:"threadId"`
}

// NewClient creates a client for the chat endpoint at url. The stream has no
// client-side timeout; callers bound it through the context.
func NewClient(url, apiKey string) *Client {
	return &Client{
		client:   resty.New().SetAuthToken(apiKey),
		url:      url,
		threadID: uuid.NewString,
		log:      logger.Component("answer"),
	}
}

// Ask opens exactly one stream for the question and returns the accumulated
// answer once the server ends it. onProgress may be nil.
// Any transport failure, including context cancellation, wraps ErrStreamFailed.
func (c *Client) Ask(ctx context.Context, question string, onProgress ProgressFunc) (models.AnswerResult, error) {
	start := time.Now()
	threadID := c.threadID()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/x-ndjson").
		SetBody(streamRequest{Content: question, Stream: true, ThreadID: threadID}).
		SetDoNotParseResponse(true).
		Post(c.url)
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}

	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		snippet, _ := io.ReadAll(io.LimitReader(body, 1024))
		return models.AnswerResult{}, fmt.Errorf("%w: status %d: %s", ErrStreamFailed, resp.StatusCode(), string(snippet))
	}

	var acc Accumulator
	if err := Decode(body, &acc, onProgress); err != nil {
		c.log.Error().
			Err(err).
			Str("thread_id", threadID).
			Msg("Answer stream aborted")
		return models.AnswerResult{}, fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}

	result := acc.Result()
	c.log.Info().
		Str("thread_id", threadID).
		Int("chars", len(result.Text)).
		Int("citations", len(result.Citations)).
		Int("skipped_frames", acc.Skipped()).
		Dur("duration", time.Since(start)).
		Msg("Answer stream completed")
	return result, nil
}
