package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"leadersync/core"
)

// DefaultPageLimit is the page size used by the browsing view.
const DefaultPageLimit = 50

// Messages surfaced in ListState.Err.
const (
	msgLoadFailed    = "Failed to load leaderboard. Please try again."
	msgRefreshFailed = "Failed to refresh leaderboard. Showing previous results."
)

// ListController owns the ranked list of the browsing view. At most one fetch
// is outstanding at a time; requests arriving meanwhile return core.ErrBusy.
type ListController struct {
	client LeaderboardClient
	bus    *EventBus
	logger *zap.Logger
	limit  int

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          core.ListState
	loaded         bool
	pendingRefresh bool
	closed         bool
}

// NewListController builds an idle controller. Call Load to activate the view.
func NewListController(client LeaderboardClient, bus *EventBus, logger *zap.Logger, limit int) *ListController {
	if client == nil || bus == nil {
		panic("NewListController requires non-nil client and bus")
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ListController{
		client: client,
		bus:    bus,
		logger: logger.Named("list"),
		limit:  limit,
		ctx:    ctx,
		cancel: cancel,
		state:  core.ListState{Phase: core.ListIdle},
	}
}

// Limit returns the page size.
func (c *ListController) Limit() int { return c.limit }

// State returns a snapshot of the current list state.
func (c *ListController) State() core.ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Load performs the initial fetch, or retries it after a failure.
// Once a load has succeeded it behaves like Refresh.
func (c *ListController) Load(ctx context.Context) error {
	return c.reset(ctx)
}

// Refresh replaces the list with a fresh first page. On failure the previous
// entries stay visible and the error is recorded in the state.
func (c *ListController) Refresh(ctx context.Context) error {
	return c.reset(ctx)
}

func (c *ListController) reset(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	phase := c.beginResetLocked()
	snap := c.state.Clone()
	c.mu.Unlock()

	c.publish(snap)
	return c.fetch(ctx, phase, 0)
}

// LoadMore appends the next page. It is a no-op returning core.ErrExhausted
// once every entry has been fetched. A failure leaves the list untouched so
// the caller may simply try again.
func (c *ListController) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guardLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.loaded || !c.state.HasMore() {
		c.mu.Unlock()
		c.logger.Debug("load more ignored, list exhausted")
		return core.ErrExhausted
	}
	offset := c.state.Offset
	c.state.Phase = core.ListLoadingMore
	c.state.Revision++
	snap := c.state.Clone()
	c.mu.Unlock()

	c.publish(snap)
	return c.fetch(ctx, core.ListLoadingMore, offset)
}

// Simulate triggers a server-side score mutation and, on success, always
// follows it with a full reset of the list. When a fetch is already in flight
// the reset is queued and runs as soon as that fetch settles. A failed
// simulation leaves the list untouched.
func (c *ListController) Simulate(ctx context.Context) (core.SimulationAck, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return core.SimulationAck{}, core.ErrDeactivated
	}
	if c.state.Simulating {
		c.mu.Unlock()
		return core.SimulationAck{}, core.ErrBusy
	}
	c.state.Simulating = true
	c.state.Revision++
	snap := c.state.Clone()
	c.mu.Unlock()
	c.publish(snap)

	ack, err := c.client.TriggerSimulation(ctx)

	c.mu.Lock()
	c.state.Simulating = false
	c.state.Revision++
	if err != nil || c.closed {
		snap = c.state.Clone()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return core.SimulationAck{}, core.ErrDeactivated
		}
		c.publish(snap)
		c.logger.Warn("simulation failed", zap.Error(err))
		c.bus.Publish(ctx, core.NewSimulationFailed(err))
		return core.SimulationAck{}, err
	}

	if c.state.Phase.Active() {
		c.pendingRefresh = true
		snap = c.state.Clone()
		c.mu.Unlock()
		c.publish(snap)
		c.bus.Publish(ctx, core.NewSimulationComplete(ack))
		c.logger.Debug("refresh after simulation deferred, fetch in flight")
		return ack, nil
	}
	phase := c.beginResetLocked()
	snap = c.state.Clone()
	c.mu.Unlock()

	c.publish(snap)
	c.bus.Publish(ctx, core.NewSimulationComplete(ack))
	if err := c.fetch(ctx, phase, 0); err != nil {
		c.logger.Debug("refresh after simulation failed", zap.Error(err))
	}
	return ack, nil
}

// Deactivate detaches the controller from its view. Results of fetches still
// in flight are dropped and further operations return core.ErrDeactivated.
func (c *ListController) Deactivate() {
	c.mu.Lock()
	c.closed = true
	c.pendingRefresh = false
	c.mu.Unlock()
	c.cancel()
}

func (c *ListController) guardLocked() error {
	if c.closed {
		return core.ErrDeactivated
	}
	if c.state.Phase.Active() {
		c.logger.Debug("fetch ignored, another fetch in flight", zap.String("phase", string(c.state.Phase)))
		return core.ErrBusy
	}
	return nil
}

// beginResetLocked enters the phase for a first-page fetch: InitialLoading until
// something has been shown, Refreshing afterwards.
func (c *ListController) beginResetLocked() core.ListPhase {
	phase := core.ListRefreshing
	if !c.loaded {
		phase = core.ListInitialLoading
	}
	c.state.Phase = phase
	c.state.Revision++
	return phase
}

func (c *ListController) fetch(ctx context.Context, phase core.ListPhase, offset int) error {
	page, err := c.client.FetchPage(ctx, c.limit, offset)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("fetch result dropped, controller deactivated")
		if err != nil {
			return err
		}
		return core.ErrDeactivated
	}

	if err != nil {
		switch phase {
		case core.ListInitialLoading:
			c.state.Phase = core.ListFailed
			c.state.Err = msgLoadFailed
		case core.ListRefreshing:
			c.state.Phase = core.ListIdle
			c.state.Err = msgRefreshFailed
		default:
			c.state.Phase = core.ListIdle
		}
		c.logger.Warn("fetch failed", zap.String("phase", string(phase)), zap.Int("offset", offset), zap.Error(err))
	} else {
		if phase == core.ListLoadingMore {
			c.state.Entries = append(c.state.Entries, page.Entries...)
			c.state.Offset = offset + c.limit
		} else {
			c.state.Entries = append([]core.Entry(nil), page.Entries...)
			c.state.Offset = c.limit
		}
		c.state.TotalCount = page.TotalCount
		c.state.Phase = core.ListIdle
		c.state.Err = ""
		c.loaded = true
	}
	c.state.Revision++
	snaps := []core.ListState{c.state.Clone()}

	chained := false
	var next core.ListPhase
	if c.pendingRefresh {
		c.pendingRefresh = false
		chained = true
		next = c.beginResetLocked()
		snaps = append(snaps, c.state.Clone())
	}
	c.mu.Unlock()

	for _, s := range snaps {
		c.publish(s)
	}
	if chained {
		go func() {
			if ferr := c.fetch(c.ctx, next, 0); ferr != nil && !errors.Is(ferr, core.ErrDeactivated) {
				c.logger.Debug("deferred refresh failed", zap.Error(ferr))
			}
		}()
	}
	return err
}

func (c *ListController) publish(s core.ListState) {
	c.bus.Publish(c.ctx, core.NewListChanged(s))
}
