// Package api provides the HTTP client shared by the analysis and checkout
// subsystems: base URL resolution, bearer auth, JSON round-trips, and the
// long-lived multipart request backing the verify stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poliverai/poliver/iox"
	"github.com/poliverai/poliver/log"
)

// DefaultTimeout is the per-request timeout for JSON calls. Streaming
// requests are exempt: they are bounded by context, not a fixed deadline.
const DefaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	// BaseURL is the service origin, e.g. https://api.poliverai.com (required).
	BaseURL string
	// Token is the bearer token added to each request when set.
	Token string
	// Timeout is the per-request timeout for JSON calls (default 30s).
	Timeout time.Duration
	// Logger defaults to a no-op logger.
	Logger *log.Logger
}

// Client performs HTTP calls against the analysis service.
type Client struct {
	baseURL string
	token   string
	logger  *log.Logger

	jsonClient   *http.Client
	streamClient *http.Client
}

// StatusError is returned for non-2xx HTTP responses. Carrying the code
// lets callers distinguish retriable (5xx) from non-retriable (4xx)
// failures.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// New creates a client from the given config.
// Returns an error if the base URL is empty or unparseable.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api client requires a base URL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api client: invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		logger:     logger,
		jsonClient: &http.Client{Timeout: cfg.Timeout},
		// No Timeout: the verify stream stays open for the whole analysis.
		// Cancellation comes from the request context.
		streamClient: &http.Client{},
	}, nil
}

// BaseURL returns the configured service origin.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(req, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into
// out. Extra headers (e.g. an idempotency key) may be nil.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any, extra http.Header) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	c.authorize(req)

	resp, err := c.jsonClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusErrorFrom(resp)
	}

	if out == nil {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StreamMultipart posts a multipart form with one file part plus the given
// fields and returns the raw response body for incremental reading. The
// caller owns closing the returned body.
func (c *Client) StreamMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader) (io.ReadCloser, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %q: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := statusErrorFrom(resp)
		iox.DiscardClose(resp.Body)
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// statusErrorFrom drains up to a small prefix of the error body for the
// message and closes nothing; callers own the body.
func statusErrorFrom(resp *http.Response) error {
	prefix, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_, _ = io.Copy(io.Discard, resp.Body)
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(prefix))}
}
