// Package api implements the REST client for the BooksMood backend.
// The backend owns all schemas; this package maps its wire types onto the
// domain model and its status codes onto domain errors.
package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/id"
	"github.com/Cossomoj/booksmood/internal/ratelimit"
	"github.com/Cossomoj/booksmood/internal/validation"
)

const (
	defaultTimeout = 15 * time.Second

	// Outbound rate limit: generous enough for interactive browsing,
	// tight enough to keep a runaway loop from hammering the backend.
	defaultRPS   = 5.0
	defaultBurst = 10

	userAgent = "BooksMood/1.0"
)

// Reauthorizer refreshes an expired session. Implemented by session.Manager;
// set after construction because the session manager itself authenticates
// through this client.
type Reauthorizer interface {
	// Reauthorize runs one authentication cycle and returns a fresh token.
	Reauthorize(ctx context.Context) (string, error)
}

// Client is a rate-limited BooksMood API client.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
	validate *validation.Validator
	deviceID string

	mu     sync.RWMutex
	token  string
	reauth Reauthorizer
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit overrides the outbound rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = ratelimit.New(rps, burst) }
}

// WithDeviceID attaches a stable device identity to every request.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// New creates a new API client for the given base URL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  ratelimit.New(defaultRPS, defaultBurst),
		logger:   logger,
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently held bearer token ("" when anonymous).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetReauthorizer installs the hook invoked once after a 401 response.
func (c *Client) SetReauthorizer(r Reauthorizer) {
	c.mu.Lock()
	c.reauth = r
	c.mu.Unlock()
}

func (c *Client) reauthorizer() Reauthorizer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reauth
}

// doRequest executes a request against the backend with rate limiting.
// On a 401 it runs exactly one re-authentication cycle and retries the
// request once with the refreshed token; a second 401 is terminal.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	data, err := c.do(ctx, method, path, query, body)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, errors.ErrUnauthorized) || isAuthPath(path) {
		return nil, err
	}

	reauth := c.reauthorizer()
	if reauth == nil {
		return nil, err
	}

	c.logger.Debug("authorization expired, re-authenticating", "path", path)
	token, reauthErr := reauth.Reauthorize(ctx)
	if reauthErr != nil {
		return nil, errors.Wrap(reauthErr, errors.CodeUnauthorized, "re-authentication failed")
	}
	c.SetToken(token)

	return c.do(ctx, method, path, query, body)
}

// do executes a single HTTP request without retry logic.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	host := hostKey(c.baseURL)
	if err := c.limiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID, err := id.Generate("req")
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}
	// Auth endpoints issue tokens; everything else presents one.
	if token := c.Token(); token != "" && !isAuthPath(path) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "execute request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, errors.FromResponse(resp.StatusCode, strings.TrimSpace(string(respBody)))
}

// getJSON issues a GET and decodes the response into dest.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	data, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// postJSON issues a POST and decodes the response into dest (when non-nil).
func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	data, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// unmarshalLenient decodes best-effort; an empty or malformed ack body is
// not an error.
func unmarshalLenient(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}

func hostKey(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}
