package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"leadersync/core"
)

// Operation names reported in TransportError.Op and to RequestObserver.
const (
	OpFetchPage = "fetch_page"
	OpSearch    = "search"
	OpSimulate  = "simulate"
	OpHealth    = "health"
)

// RequestObserver receives one callback per completed remote request.
type RequestObserver interface {
	ObserveRequest(op string, elapsed time.Duration, err error)
}

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the remote scoring service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	limiter    *rate.Limiter
	observer   RequestObserver
	logger     *zap.Logger
}

// NewClient constructs a client targeting baseURL (e.g., http://localhost:8080).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(http.Header),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to every request.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithObserver reports request outcomes, typically to metrics.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for transport failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPage returns up to limit ranked entries starting at offset.
func (c *Client) FetchPage(ctx context.Context, limit, offset int) (core.Page, error) {
	if limit <= 0 {
		return core.Page{}, core.ErrInvalidLimit
	}
	if offset < 0 {
		return core.Page{}, core.ErrInvalidOffset
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page core.Page
	if err := c.do(ctx, OpFetchPage, http.MethodGet, "/leaderboard", q, &page); err != nil {
		return core.Page{}, err
	}
	if len(page.Entries) > limit {
		return core.Page{}, c.malformed(OpFetchPage, fmt.Errorf("got %d entries for limit %d", len(page.Entries), limit))
	}
	if page.TotalCount < 0 {
		return core.Page{}, c.malformed(OpFetchPage, errors.New("negative total_count"))
	}
	if err := validateEntries(page.Entries); err != nil {
		return core.Page{}, c.malformed(OpFetchPage, err)
	}
	if page.Entries == nil {
		page.Entries = []core.Entry{}
	}
	page.Limit, page.Offset = limit, offset
	return page, nil
}

// Search returns the players matching query with their global rank. The
// query is sent as typed; a blank query resolves to an empty result without
// contacting the service.
func (c *Client) Search(ctx context.Context, query string) ([]core.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return []core.Entry{}, nil
	}

	q := url.Values{}
	q.Set("query", query)

	var body searchResponse
	if err := c.do(ctx, OpSearch, http.MethodGet, "/search", q, &body); err != nil {
		return nil, err
	}
	if err := validateEntries(body.Users); err != nil {
		return nil, c.malformed(OpSearch, err)
	}
	if body.Users == nil {
		return []core.Entry{}, nil
	}
	return body.Users, nil
}

// TriggerSimulation asks the service to mutate a batch of player scores.
func (c *Client) TriggerSimulation(ctx context.Context) (core.SimulationAck, error) {
	var ack core.SimulationAck
	if err := c.do(ctx, OpSimulate, http.MethodPost, "/simulate", nil, &ack); err != nil {
		return core.SimulationAck{}, err
	}
	return ack, nil
}

// Health probes /health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	if err := c.do(ctx, OpHealth, http.MethodGet, "/health", nil, &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, target any) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(op, time.Since(start), err)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		}
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return &core.TransportError{Op: op, Err: werr}
		}
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, rerr := http.NewRequestWithContext(ctx, method, u, nil)
	if rerr != nil {
		return &core.TransportError{Op: op, Err: rerr}
	}
	c.applyHeaders(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		return &core.TransportError{Op: op, Err: derr}
	}
	defer resp.Body.Close()

	return decodeJSON(op, resp, target)
}

func (c *Client) malformed(op string, err error) error {
	c.logger.Warn("malformed response", zap.String("op", op), zap.Error(err))
	return &core.TransportError{Op: op, Err: fmt.Errorf("malformed payload: %w", err)}
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func validateEntries(entries []core.Entry) error {
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}
	return nil
}
