package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"leadersync/core"
)

// Hub fans controller events out to channel subscribers. It remembers the
// newest snapshot per event type so late subscribers start from current state,
// and it drops snapshots older than one already broadcast.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan core.Event
	next   int
	latest map[core.EventType]core.Event
}

func NewHub() *Hub {
	return &Hub{
		subs:   map[int]chan core.Event{},
		latest: map[core.EventType]core.Event{},
	}
}

// Subscribe returns a channel that first receives the latest snapshot of each
// state type, then every subsequent broadcast.
func (h *Hub) Subscribe(buffer int) (int, <-chan core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	if buffer < len(h.latest) {
		buffer = len(h.latest)
	}
	ch := make(chan core.Event, buffer)
	for _, typ := range []core.EventType{core.EventListChanged, core.EventSearchChanged} {
		if ev, ok := h.latest[typ]; ok {
			ch <- ev
		}
	}
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Latest returns the newest snapshot broadcast for typ.
func (h *Hub) Latest(typ core.EventType) (core.Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ev, ok := h.latest[typ]
	return ev, ok
}

// Broadcast delivers ev to every subscriber without blocking; slow
// subscribers miss events. Snapshots that regress the revision are ignored.
// Sends happen under the lock so Unsubscribe cannot close a channel mid-send.
func (h *Hub) Broadcast(_ context.Context, ev core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.List != nil || ev.Search != nil {
		if prev, ok := h.latest[ev.Type]; ok && ev.Revision() <= prev.Revision() {
			return
		}
		h.latest[ev.Type] = ev
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default: // drop if full
		}
	}
}

// MarshalJSON is a helper to convert events to JSON bytes for WebSocket/SSE.
func MarshalJSON(ev core.Event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
