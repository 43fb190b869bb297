package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrFeedUnavailable marks a failed feed request (transport error or non-success status)
var ErrFeedUnavailable = errors.New("feed unavailable")

type Fetcher struct {
	client   *resty.Client
	deadline time.Duration
}

// NewFetcher creates a fetcher for the feed API rooted at baseURL. The
// deadline bounds one Fetch call, retries and backoff included.
func NewFetcher(baseURL string, deadline time.Duration, retries int) *Fetcher {
	return &Fetcher{
		deadline: deadline,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(deadline).
			SetRetryCount(retries).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
	}
}

// Fetch performs the single outbound read for a query and returns the raw body
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.deadline)
	defer cancel()

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParamsFromValues(q.Params).
		Get(q.Endpoint)

	if err != nil {
		// url.Error carries the full URL, api key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: request to %s failed: %v", ErrFeedUnavailable, q.Endpoint, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: unexpected status code %d from %s", ErrFeedUnavailable, resp.StatusCode(), q.Endpoint)
	}

	return resp.Body(), nil
}
