package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"leadersync/core"
)

// DefaultEvents are forwarded when no filter is given. Snapshot events fire on
// every keystroke and page, so they are opt-in.
var DefaultEvents = []core.EventType{core.EventSimulationComplete, core.EventSimulationFailed}

// Config selects the endpoints and the event types posted to them.
type Config struct {
	Enabled   bool             `json:"enabled" mapstructure:"enabled"`
	Endpoints []string         `json:"endpoints" mapstructure:"endpoints"`
	Events    []core.EventType `json:"events" mapstructure:"events"`
	Timeout   time.Duration    `json:"timeout" mapstructure:"timeout"`
}

// Sink posts session events as JSON to configured HTTP endpoints.
// Delivery is best effort: failures are logged and never retried.
type Sink struct {
	client    *http.Client
	endpoints []string
	events    map[core.EventType]bool
	logger    *zap.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithClient overrides the HTTP client (defaults to 2s timeout).
func WithClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.client = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEvents restricts the forwarded event types.
func WithEvents(types ...core.EventType) Option {
	return func(s *Sink) {
		s.events = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.events[t] = true
		}
	}
}

// New creates a webhook sink.
func New(endpoints []string, opts ...Option) *Sink {
	s := &Sink{
		client: &http.Client{Timeout: 2 * time.Second},
		logger: zap.NewNop(),
	}
	WithEvents(DefaultEvents...)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.endpoints = append([]string{}, endpoints...)
	return s
}

// FromConfig builds a sink from cfg, falling back to DefaultEvents.
func FromConfig(cfg Config, logger *zap.Logger) *Sink {
	opts := []Option{WithLogger(logger)}
	if cfg.Timeout > 0 {
		opts = append(opts, WithClient(&http.Client{Timeout: cfg.Timeout}))
	}
	if len(cfg.Events) > 0 {
		opts = append(opts, WithEvents(cfg.Events...))
	}
	return New(cfg.Endpoints, opts...)
}

// Accepts reports whether events of typ are forwarded.
func (s *Sink) Accepts(typ core.EventType) bool { return s.events[typ] }

// OnEvent posts the event to every endpoint.
func (s *Sink) OnEvent(ctx context.Context, e core.Event) {
	if len(s.endpoints) == 0 || !s.events[e.Type] {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("webhook encode failed", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}
	for _, ep := range s.endpoints {
		if err := s.post(ctx, ep, body); err != nil {
			s.logger.Warn("webhook delivery failed",
				zap.String("endpoint", ep), zap.String("type", string(e.Type)), zap.Error(err))
		}
	}
}

func (s *Sink) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: status %d", endpoint, resp.StatusCode)
	}
	return nil
}
