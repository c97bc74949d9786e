// Package restclient is the JSON-over-HTTP transport shared by the upstream price adapters.
package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"findash/pkg/market"
)

const (
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 2
	defaultRetryBackoffBase = 150 * time.Millisecond
	maxErrorBody            = 512
)

// StatusError reports a non-2xx upstream response. It unwraps to market.ErrUpstreamRejected.
type StatusError struct {
	Name       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d: %s", e.Name, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return market.ErrUpstreamRejected }

// Client issues GET requests against one upstream and decodes JSON bodies.
type Client struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default endpoint root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithBackoff sets the initial retry delay; it doubles after every attempt.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoffBase = d
		}
	}
}

// New constructs a client. name prefixes every error message.
func New(name, defaultBaseURL string, opts ...Option) *Client {
	c := &Client{
		name:        name,
		baseURL:     strings.TrimRight(defaultBaseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultRetryBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint root requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON performs GET {base}{path}?{query} and decodes the body into out.
// Transport failures and 5xx responses are retried with exponential backoff;
// other statuses fail immediately.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, header http.Header, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	backoff := c.backoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		body, err := c.do(ctx, target, header)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%s: decode response: %v: %w", c.name, err, market.ErrUpstreamRejected)
			}
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return c.contextError(ctx)
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, target string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %v: %w", c.name, err, market.ErrUpstreamRejected)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%s: %v: %w", c.name, err, market.ErrUpstreamTimeout)
		}
		return nil, &transportError{name: c.name, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{name: c.name, err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Name: c.name, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

func (c *Client) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", c.name, market.ErrUpstreamTimeout, ctx.Err())
	}
	return ctx.Err()
}

type transportError struct {
	name string
	err  error
}

func (e *transportError) Error() string { return fmt.Sprintf("%s: %v", e.name, e.err) }

func (e *transportError) Unwrap() []error { return []error{e.err, market.ErrUpstreamRejected} }

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, market.ErrUpstreamTimeout) && !errors.Is(err, context.DeadlineExceeded)
}
