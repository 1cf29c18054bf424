// Package apiclient is the typed HTTP client for the e-signature
// backend's /api/v1 surface. All durable state, validation and audit
// live behind that API; this package only marshals parameters and
// reports outcomes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const APIBasePath = "/api/v1"

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Error is the typed failure every non-2xx response maps to.
type Error struct {
	StatusCode int
	ErrorCode  string
	Message    string
	RequestID  string
	Details    map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("esign api error: status=%d code=%s message=%s", e.StatusCode, e.ErrorCode, e.Message)
}

// AuthStrategy attaches credentials to an outgoing request.
type AuthStrategy interface {
	Apply(req *http.Request) error
}

// SessionAuth is the bearer session token obtained from the auth
// bridge.
type SessionAuth struct{ Token string }

func (a SessionAuth) Apply(req *http.Request) error {
	if strings.TrimSpace(a.Token) == "" {
		return errors.New("session bearer token is required")
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// APIKeyAuth authenticates with an issued API key instead of a user
// session.
type APIKeyAuth struct{ Key string }

func (a APIKeyAuth) Apply(req *http.Request) error {
	if strings.TrimSpace(a.Key) == "" {
		return errors.New("api key is required")
	}
	req.Header.Set("X-Api-Key", a.Key)
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       AuthStrategy
	retry      RetryConfig
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithAuth swaps the credential strategy, e.g. after login upgrades an
// anonymous client to a session-bearing one.
func WithAuth(a AuthStrategy) Option {
	return func(c *Client) { c.auth = a }
}

func New(baseURL string, auth AuthStrategy, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + APIBasePath,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		auth:       auth,
		retry:      RetryConfig{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	if c.retry.BaseDelay <= 0 {
		c.retry.BaseDelay = 200 * time.Millisecond
	}
	if c.retry.MaxDelay <= 0 {
		c.retry.MaxDelay = 5 * time.Second
	}
	return c
}

// do issues one logical request, retrying transient failures, and
// returns the raw response body of a 2xx.
func (c *Client) do(ctx context.Context, method, path string, body any, retryable bool) ([]byte, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}
	contentType := ""
	if len(bodyBytes) > 0 {
		contentType = "application/json"
	}
	return c.doRaw(ctx, method, path, bodyBytes, contentType, retryable)
}

func (c *Client) doRaw(ctx context.Context, method, path string, bodyBytes []byte, contentType string, retryable bool) ([]byte, error) {
	attempts := 1
	if retryable {
		attempts = c.retry.MaxAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.auth != nil {
			if err := c.auth.Apply(req); err != nil {
				return nil, err
			}
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < attempts {
				sleepWithBackoff(c.retry, attempt, "")
				continue
			}
			return nil, err
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}
		if shouldRetryStatus(resp.StatusCode) && attempt < attempts {
			sleepWithBackoff(c.retry, attempt, resp.Header.Get("Retry-After"))
			continue
		}
		return nil, parseAPIError(resp.StatusCode, respBody)
	}
	return nil, errors.New("unreachable")
}

func decode[T any](body []byte) (*T, error) {
	var out T
	if len(body) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func shouldRetryStatus(status int) bool {
	return status == 429 || status == 502 || status == 503 || status == 504
}

func sleepWithBackoff(cfg RetryConfig, attempt int, retryAfter string) {
	if strings.TrimSpace(retryAfter) != "" {
		if sec, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil {
			d := time.Duration(sec) * time.Second
			if d > cfg.MaxDelay {
				d = cfg.MaxDelay
			}
			time.Sleep(d)
			return
		}
	}
	max := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	if max > float64(cfg.MaxDelay) {
		max = float64(cfg.MaxDelay)
	}
	time.Sleep(time.Duration(rand.Int63n(int64(max) + 1)))
}

func parseAPIError(status int, body []byte) error {
	out := &Error{StatusCode: status}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		out.Message = strings.TrimSpace(string(body))
		if out.Message == "" {
			out.Message = http.StatusText(status)
		}
		return out
	}
	out.RequestID, _ = obj["requestId"].(string)
	if inner, ok := obj["error"].(map[string]any); ok {
		obj = inner
	}
	out.ErrorCode, _ = obj["code"].(string)
	out.Message, _ = obj["message"].(string)
	if d, ok := obj["details"].(map[string]any); ok {
		out.Details = d
	}
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
