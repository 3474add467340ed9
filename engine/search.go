package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"leadersync/core"
)

// DefaultDebounce is the quiet period after the last keystroke before a search is issued.
const DefaultDebounce = 500 * time.Millisecond

const msgSearchFailed = "Failed to search users. Please try again."

// SearchController debounces query input and applies only the response that
// belongs to the current query. Every query change bumps a sequence token;
// a response is applied only when its token still equals the latest one.
type SearchController struct {
	client   LeaderboardClient
	bus      *EventBus
	logger   *zap.Logger
	clock    Clock
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   core.SearchState
	token   uint64
	pending Timer
	closed  bool
}

// NewSearchController builds a controller in the Empty phase.
func NewSearchController(client LeaderboardClient, bus *EventBus, logger *zap.Logger, clock Clock, debounce time.Duration) *SearchController {
	if client == nil || bus == nil {
		panic("NewSearchController requires non-nil client and bus")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchController{
		client:   client,
		bus:      bus,
		logger:   logger.Named("search"),
		clock:    clock,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
		state:    core.SearchState{Phase: core.SearchEmpty},
	}
}

// State returns a snapshot of the current search state.
func (c *SearchController) State() core.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetQuery records new input. A blank query clears the results immediately;
// anything else restarts the debounce window. Setting the same text again is a no-op.
func (c *SearchController) SetQuery(q string) {
	c.mu.Lock()
	if c.closed || q == c.state.Query {
		c.mu.Unlock()
		return
	}
	c.token++
	c.stopPendingLocked()
	c.state.Query = q
	c.state.Err = ""

	if strings.TrimSpace(q) == "" {
		c.state.Results = nil
		c.state.Phase = core.SearchEmpty
	} else {
		token := c.token
		c.state.Phase = core.SearchDebouncing
		c.pending = c.clock.AfterFunc(c.debounce, func() { c.fire(token) })
	}
	c.state.Revision++
	snap := c.state.Clone()
	c.mu.Unlock()

	c.publish(snap)
}

// Flush issues the pending search immediately instead of waiting for the
// debounce window. It returns false when nothing was pending.
func (c *SearchController) Flush() bool {
	c.mu.Lock()
	if c.closed || c.state.Phase != core.SearchDebouncing || c.pending == nil {
		c.mu.Unlock()
		return false
	}
	if !c.pending.Stop() {
		// the timer already fired and its callback owns the search
		c.mu.Unlock()
		return false
	}
	c.pending = nil
	token := c.token
	c.mu.Unlock()

	go c.fire(token)
	return true
}

// Deactivate cancels the pending debounce timer and ignores any in-flight response.
func (c *SearchController) Deactivate() {
	c.mu.Lock()
	c.closed = true
	c.token++
	c.stopPendingLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *SearchController) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *SearchController) fire(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.token {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	query := c.state.Query
	c.state.Phase = core.SearchSearching
	c.state.Revision++
	snap := c.state.Clone()
	c.mu.Unlock()
	c.publish(snap)

	results, err := c.client.Search(c.ctx, query)

	c.mu.Lock()
	if c.closed || token != c.token {
		latest := c.token
		c.mu.Unlock()
		c.logger.Debug("stale search response discarded",
			zap.String("query", query), zap.Uint64("token", token), zap.Uint64("latest", latest))
		c.bus.Publish(c.ctx, core.NewSearchDiscarded(query, token, latest))
		return
	}
	if err != nil {
		c.state.Results = nil
		c.state.Phase = core.SearchFailed
		c.state.Err = msgSearchFailed
		c.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
	} else {
		if results == nil {
			results = []core.Entry{}
		}
		c.state.Results = results
		c.state.Phase = core.SearchDone
		c.state.Err = ""
	}
	c.state.Revision++
	snap = c.state.Clone()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *SearchController) publish(s core.SearchState) {
	c.bus.Publish(c.ctx, core.NewSearchChanged(s))
}
