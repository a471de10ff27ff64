// Package showapi is the HTTP client for the external show API, which owns
// show persistence.
//
// Every call goes through one gateway that applies, in order, an outbound
// rate limit, a circuit breaker, and the request itself. Calls are never
// retried: a failed commit must not be replayed behind the user's back.
package showapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/showdesk/internal/config"
	"github.com/JonMunkholm/showdesk/internal/core"
)

// ErrCircuitOpen is returned without contacting the backend while the
// breaker is open.
var ErrCircuitOpen = errors.New("show api: circuit breaker open")

const maxResponseBytes = 32 << 20

// APIError is a non-2xx answer from the show API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("show api: status %d: %s", e.Status, e.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BreakerThreshold  int
	BreakerCooldown   time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements core.ShowAPI over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
}

var _ core.ShowAPI = (*Client)(nil)

// New creates a client. A zero RequestsPerSecond disables the rate limit.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("show api: invalid base url %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit, burst := rate.Limit(opts.RequestsPerSecond), opts.Burst
	if opts.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		token:   opts.Token,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker(opts.BreakerThreshold, opts.BreakerCooldown),
	}, nil
}

// NewFromConfig creates a client from the application config.
func NewFromConfig(cfg config.APIConfig) (*Client, error) {
	return New(Options{
		BaseURL:           cfg.BaseURL,
		Token:             cfg.Token,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: float64(cfg.RequestsPerSecond),
		Burst:             cfg.Burst,
		BreakerThreshold:  cfg.BreakerThreshold,
		BreakerCooldown:   cfg.BreakerCooldown,
	})
}

// do is the single gateway for every outbound call. label names the
// endpoint in logs. in is sent as JSON when non-nil; out receives the
// decoded 2xx body when non-nil.
func (c *Client) do(ctx context.Context, label, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("show api: rate limiter: %w", err)
	}

	state, ok := c.breaker.allow()
	if !ok {
		slog.Warn("show api call rejected", "label", label, "circuit", state.String())
		return ErrCircuitOpen
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("show api: encode %s: %w", label, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("show api: %s: %w", label, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.recordFailure(label, state)
		}
		slog.Debug("show api request failed", "label", label, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return fmt.Errorf("show api: %s: %w", label, err)
	}
	defer resp.Body.Close()

	slog.Debug("show api request",
		"label", label,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.recordFailure(label, state)
	} else if prev := c.breaker.success(); prev != breakerClosed {
		slog.Info("show api circuit closed", "label", label, "from", prev.String())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("show api: decode %s: %w", label, err)
	}
	return nil
}

func (c *Client) recordFailure(label string, before breakerState) {
	if now := c.breaker.failure(); now == breakerOpen && before != breakerOpen {
		slog.Warn("show api circuit opened", "label", label, "from", before.String())
	}
}

// readAPIError builds an APIError from a JSON {"error"} or {"message"}
// body, falling back to the raw text or the status text.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != "":
			msg = body.Error
		case body.Message != "":
			msg = body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func showPath(id string, suffix ...string) string {
	p := "/podcasts/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// CircuitState reports the breaker state: closed, open or half-open.
func (c *Client) CircuitState() string {
	return c.breaker.current().String()
}
