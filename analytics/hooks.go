package analytics

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"leadersync/core"
)

// Hook receives controller events.
type Hook interface {
	OnEvent(ctx context.Context, e core.Event)
}

// HookFunc adapts a plain function to Hook.
type HookFunc func(ctx context.Context, e core.Event)

func (f HookFunc) OnEvent(ctx context.Context, e core.Event) { f(ctx, e) }

// BridgeHook bridges an event source to multiple hooks.
type BridgeHook struct{ hooks []Hook }

func NewBridge(hooks ...Hook) *BridgeHook { return &BridgeHook{hooks: hooks} }

func (b *BridgeHook) OnEvent(ctx context.Context, e core.Event) {
	for _, h := range b.hooks {
		h.OnEvent(ctx, e)
	}
}

// Stats is a point-in-time summary of a session.
type Stats struct {
	Events          map[core.EventType]int64 `json:"events"`
	Simulations     int64                    `json:"simulations"`
	SimulationFails int64                    `json:"simulation_failures"`
	Searches        int64                    `json:"searches"`
	StaleDiscards   int64                    `json:"stale_discards"`
	LoadFailures    int64                    `json:"load_failures"`
	EntriesLoaded   int                      `json:"entries_loaded"`
	TotalCount      int                      `json:"total_count"`
	LastEvent       time.Time                `json:"last_event"`
}

// SessionStats aggregates events into counters for the status line and for export.
type SessionStats struct {
	mu       sync.RWMutex
	stats    Stats
	lastList uint64
}

func NewSessionStats() *SessionStats {
	return &SessionStats{stats: Stats{Events: map[core.EventType]int64{}}}
}

func (s *SessionStats) OnEvent(_ context.Context, e core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Events[e.Type]++
	if e.Time.After(s.stats.LastEvent) {
		s.stats.LastEvent = e.Time
	}

	switch e.Type {
	case core.EventListChanged:
		if e.List == nil || e.List.Revision < s.lastList {
			return
		}
		s.lastList = e.List.Revision
		s.stats.EntriesLoaded = len(e.List.Entries)
		s.stats.TotalCount = e.List.TotalCount
		if e.List.Phase == core.ListFailed {
			s.stats.LoadFailures++
		}
	case core.EventSearchChanged:
		if e.Search != nil && e.Search.Phase == core.SearchSearching {
			s.stats.Searches++
		}
	case core.EventSearchDiscarded:
		s.stats.StaleDiscards++
	case core.EventSimulationComplete:
		s.stats.Simulations++
	case core.EventSimulationFailed:
		s.stats.SimulationFails++
	}
}

// Snapshot returns a copy of the current counters.
func (s *SessionStats) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.stats
	cp.Events = make(map[core.EventType]int64, len(s.stats.Events))
	for k, v := range s.stats.Events {
		cp.Events[k] = v
	}
	return cp
}

// WriteJSON exports the current counters as indented JSON.
func (s *SessionStats) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Snapshot())
}
