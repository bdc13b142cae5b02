package ado

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
)

const (
	contentJSON      = "application/json"
	contentJSONPatch = "application/json-patch+json"
)

// Client talks to the Azure DevOps REST API for one organization/project.
type Client struct {
	cfg      Config
	http     *http.Client
	tokens   TokenSource
	observer Observer
	sleep    func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleep replaces the backoff sleep. Tests use it to avoid waiting.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient creates a Client. A nil observer discards call events.
func NewClient(cfg Config, tokens TokenSource, observer Observer, opts ...Option) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = APIVersion
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	c := &Client{
		cfg:      cfg,
		tokens:   tokens,
		observer: observer,
		http: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
			},
		},
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// projectURL builds {base}/{org}/{project}/_apis/{parts...}?api-version=...
func (c *Client) projectURL(params url.Values, parts ...string) string {
	return c.buildURL(true, params, parts...)
}

// orgURL builds {base}/{org}/_apis/{parts...}?api-version=...
func (c *Client) orgURL(params url.Values, parts ...string) string {
	return c.buildURL(false, params, parts...)
}

func (c *Client) buildURL(withProject bool, params url.Values, parts ...string) string {
	segs := []string{strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Organization)}
	if withProject {
		segs = append(segs, url.PathEscape(c.cfg.Project))
	}
	segs = append(segs, "_apis")
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", c.cfg.APIVersion)
	return strings.Join(segs, "/") + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, "", nil, out)
}

func (c *Client) post(ctx context.Context, rawURL, contentType string, body, out any) error {
	return c.do(ctx, http.MethodPost, rawURL, contentType, body, out)
}

func (c *Client) patch(ctx context.Context, rawURL, contentType string, body, out any) error {
	return c.do(ctx, http.MethodPatch, rawURL, contentType, body, out)
}

// do performs an authenticated request, retrying transient connection
// failures with linear backoff. HTTP error statuses are never retried.
func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		start := time.Now()
		status, err := c.doOnce(ctx, method, rawURL, contentType, token, data, out)
		c.observer.OnCall(CallEvent{
			Method:    method,
			Path:      pathOf(rawURL),
			Status:    status,
			Attempt:   attempt,
			LatencyMs: time.Since(start).Milliseconds(),
			Err:       err,
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTransient(err) || attempt == c.cfg.MaxRetries {
			break
		}
		c.sleep(c.cfg.RetryBackoff * time.Duration(attempt))
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, rawURL, contentType, token string, data []byte, out any) (int, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentJSON)
	if data != nil {
		if contentType == "" {
			contentType = contentJSON
		}
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{
			Method:     method,
			URL:        pathOf(rawURL),
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if out == nil || len(respBody) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

// isTransient reports connection-level failures worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
