package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultURL is the Kiwix content listing.
	DefaultURL = "https://wiki.kiwix.org/wiki/Content"

	// DefaultUserAgent is sent with every page request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/117.0"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 60 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3

	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 30 * time.Second

	// maxPageSize caps how much of a response body is read.
	maxPageSize = 64 << 20
)

// Client fetches catalog pages over HTTP.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	retries      int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried and the backoff
// bounds between attempts.
func WithRetries(retries int, initial, maxDelay time.Duration) ClientOption {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
		if initial > 0 {
			c.initialDelay = initial
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a page client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent:    DefaultUserAgent,
		retries:      DefaultRetries,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the page at url. Network errors and 429/5xx gateway
// statuses are retried with exponential backoff; other non-200 statuses fail
// immediately.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	var page string

	op := func() error {
		body, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		page = body
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialDelay
	eb.MaxInterval = c.maxDelay
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.retries)), ctx)

	notify := func(err error, delay time.Duration) {
		c.logger.Debug("retrying page fetch",
			zap.String("url", url),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: url}
		if statusErr.Retryable() {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
