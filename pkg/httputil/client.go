package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/pageprint/pkg/buildinfo"
	"github.com/matzehuels/pageprint/pkg/observability"
)

// Default client settings.
const (
	DefaultTimeout  = 20 * time.Second
	DefaultMaxBytes = 25 << 20
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// ErrTooLarge is returned when a body exceeds the client's cap.
type ErrTooLarge struct {
	URL   string
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("GET %s: body exceeds %d bytes", e.URL, e.Limit)
}

// Client issues GET requests with a size cap.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	MaxBytes  int64
}

// NewClient returns a client with the given per-request timeout
// (0 means [DefaultTimeout]).
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "pageprint/" + buildinfo.Version,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Get fetches rawURL and returns its body and Content-Type. Transient
// failures come back wrapped in [RetryableError].
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	host, path := split(rawURL)
	hooks := observability.HTTP()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, "", &RetryableError{Err: serr, After: retryAfter(resp.Header, time.Now())}
		}
		return nil, "", serr
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", &RetryableError{Err: err}
	}
	if int64(len(body)) > limit {
		return nil, "", &ErrTooLarge{URL: rawURL, Limit: limit}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func split(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
