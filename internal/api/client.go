// Package api is the typed HTTP client for the Grow to Impress backend.
//
// The backend keeps the logged-in user in a server-side session cookie, so a
// Client owns a cookie jar; callers export and import the jar's cookies to
// share one session across processes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/dshills/impress/internal/redact"
)

// DefaultTimeout bounds a single request. Guide generation and video
// summaries run a model on the server, so this is generous.
const DefaultTimeout = 2 * time.Minute

// maxBodyBytes caps every response body read.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MiB

// RequestIDHeader carries a per-request UUID for server-side correlation.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("not logged in")
	// ErrNotFound matches any *Error with status 404.
	ErrNotFound = errors.New("not found")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // server "error" field, or a truncated body
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is match status sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// Options configures New.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// UserID is echoed in progress bodies; the server authoritatively uses
	// the session. Zero omits the field.
	UserID int64
	Logger *zap.Logger
	// HTTPClient overrides the transport; its Jar is replaced.
	HTTPClient *http.Client
}

// Client talks to one backend base URL.
type Client struct {
	base    *url.URL
	baseStr string
	http    *http.Client
	userID  int64
	logger  *zap.Logger
	newID   func() string
}

// New validates opts and builds a Client with an empty cookie jar.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", opts.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q: missing host", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		hc = &cp
	}
	hc.Jar = jar
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	} else if hc.Timeout == 0 {
		hc.Timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    u,
		baseStr: u.String(),
		http:    hc,
		userID:  opts.UserID,
		logger:  logger,
		newID:   func() string { return uuid.NewString() },
	}, nil
}

// BaseURL returns the normalized base URL; the store keys sessions by it.
func (c *Client) BaseURL() string { return c.baseStr }

// UserID returns the configured user id.
func (c *Client) UserID() int64 { return c.userID }

// Cookies returns the session cookies currently held for the base URL.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// SetCookies seeds the jar, typically from a persisted session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.base, cookies)
}

// do sends one request and returns the raw body of a 2xx response.
// Non-2xx responses become *Error.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseStr+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	reqID := c.newID()
	req.Header.Set(RequestIDHeader, reqID)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)
	if strings.HasPrefix(contentType, "application/json") {
		log.Debug("request", zap.String("body", redact.Bytes(body, 500)))
	} else {
		log.Debug("request", zap.String("content_type", contentType))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: HTTP request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response body: %w", method, path, err)
	}
	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("body", redact.Bytes(respBytes, 500)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(respBytes),
		}
	}
	return respBytes, nil
}

// getJSON sends a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	return decode(http.MethodGet, path, body, out)
}

// postJSON encodes in, sends a POST, and decodes the response into out
// (skipped when out is nil).
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, "application/json", reqBody)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(http.MethodPost, path, body, out)
}

func decode(method, path string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: parsing response JSON (body: %s): %w", method, path, truncate(string(body), 200), err)
	}
	return nil
}

// errorMessage prefers the JSON "error" field of a failure body.
func errorMessage(body []byte) string {
	var er struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return truncate(redact.Redact(msg), 200)
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
