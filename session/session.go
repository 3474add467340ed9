// Package session assembles the list and search controllers around one client
// and one event bus, the way a screen hosting both views would.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leadersync/analytics"
	"leadersync/core"
	"leadersync/engine"
	"leadersync/realtime"
)

// Option configures the Session builder.
type Option func(*config)

type config struct {
	mode      engine.DispatchMode
	pageLimit int
	debounce  time.Duration
	logger    *zap.Logger
	clock     engine.Clock
	hub       *realtime.Hub
	hooks     []analytics.Hook
	queued    map[string]analytics.Hook
	queueSize int
}

// WithPageLimit sets the list page size.
func WithPageLimit(n int) Option { return func(c *config) { c.pageLimit = n } }

// WithDebounce sets the search quiet period.
func WithDebounce(d time.Duration) Option { return func(c *config) { c.debounce = d } }

// WithLogger sets the logger shared by both controllers.
func WithLogger(l *zap.Logger) Option { return func(c *config) { c.logger = l } }

// WithClock replaces the timer source used for debouncing.
func WithClock(clk engine.Clock) Option { return func(c *config) { c.clock = clk } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all controller events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithHooks registers hooks that observe every event.
func WithHooks(hooks ...analytics.Hook) Option {
	return func(c *config) { c.hooks = append(c.hooks, hooks...) }
}

// WithQueuedHook registers a hook that does I/O. It runs on its own goroutine
// behind a bounded queue, so a slow endpoint never delays renderers; events
// arriving while the queue is full are dropped.
func WithQueuedHook(name string, h analytics.Hook) Option {
	return func(c *config) {
		if c.queued == nil {
			c.queued = map[string]analytics.Hook{}
		}
		c.queued[name] = h
	}
}

// WithQueueSize bounds the backlog of each queued hook.
func WithQueueSize(n int) Option { return func(c *config) { c.queueSize = n } }

// Session owns a list controller, a search controller and the bus they publish on.
type Session struct {
	List   *engine.ListController
	Search *engine.SearchController
	Bus    *engine.EventBus
	queued []*analytics.QueuedHook
	logger *zap.Logger
}

// New builds a Session. If not provided, defaults are used:
//   - dispatch: async
//   - page limit: engine.DefaultPageLimit
//   - debounce: engine.DefaultDebounce
//   - logger: no-op
func New(client engine.LeaderboardClient, opts ...Option) *Session {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	bus := engine.NewEventBus(cfg.mode)
	if cfg.hub != nil {
		bus.SubscribeAll(cfg.hub.Broadcast)
	}
	if len(cfg.hooks) > 0 {
		bridge := analytics.NewBridge(cfg.hooks...)
		bus.SubscribeAll(bridge.OnEvent)
	}
	var queued []*analytics.QueuedHook
	for name, h := range cfg.queued {
		q := analytics.NewQueuedHook(name, h, cfg.queueSize, cfg.logger.Named("hook"))
		bus.SubscribeAll(q.OnEvent)
		queued = append(queued, q)
	}
	return &Session{
		List:   engine.NewListController(client, bus, cfg.logger, cfg.pageLimit),
		Search: engine.NewSearchController(client, bus, cfg.logger, cfg.clock, cfg.debounce),
		Bus:    bus,
		queued: queued,
		logger: cfg.logger,
	}
}

// Subscribe registers fn for every event and returns its unsubscribe func.
func (s *Session) Subscribe(fn func(context.Context, core.Event)) func() {
	return s.Bus.SubscribeAll(fn)
}

// Close deactivates both controllers, delivers events still on the bus, then
// stops the queued hooks.
func (s *Session) Close() {
	s.List.Deactivate()
	s.Search.Deactivate()
	s.Bus.Close()
	for _, q := range s.queued {
		q.Close()
	}
	s.logger.Debug("session closed")
}
