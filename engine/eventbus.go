package engine

import (
	"context"
	"sync"

	"leadersync/core"
)

type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

type subscription struct {
	id int64
	fn func(context.Context, core.Event)
}

// EventBus provides thread-safe pub/sub with sync and async dispatch.
// Async dispatch uses a single worker so events reach handlers in publish order.
type EventBus struct {
	mode   DispatchMode
	mu     sync.RWMutex
	subs   map[core.EventType]map[int64]subscription
	all    map[int64]subscription
	nextID int64

	queue     chan queued
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type queued struct {
	ctx context.Context
	ev  core.Event
}

func NewEventBus(mode DispatchMode) *EventBus {
	eb := &EventBus{
		mode: mode,
		subs: make(map[core.EventType]map[int64]subscription),
		all:  make(map[int64]subscription),
		done: make(chan struct{}),
	}
	if mode == DispatchAsync {
		eb.queue = make(chan queued, 256)
		eb.wg.Add(1)
		go eb.worker()
	}
	return eb
}

func (e *EventBus) worker() {
	defer e.wg.Done()
	for {
		select {
		case q := <-e.queue:
			e.dispatch(q.ctx, q.ev)
		case <-e.done:
			// drain what was accepted before Close
			for {
				select {
				case q := <-e.queue:
					e.dispatch(q.ctx, q.ev)
				default:
					return
				}
			}
		}
	}
}

// Close stops the async worker after delivering queued events. Safe to call twice.
func (e *EventBus) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
}

// Subscribe registers a handler for an event type. Returns unsubscribe func.
func (e *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	if e.subs[typ] == nil {
		e.subs[typ] = make(map[int64]subscription)
	}
	e.subs[typ][id] = subscription{id: id, fn: handler}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if m := e.subs[typ]; m != nil {
			delete(m, id)
		}
	}
}

// SubscribeAll registers a handler for every event type.
func (e *EventBus) SubscribeAll(handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.all[id] = subscription{id: id, fn: handler}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.all, id)
	}
}

// Publish sends an event to subscribers. In async mode it blocks while the
// queue is full, and gives up when ctx ends or the bus is closed.
func (e *EventBus) Publish(ctx context.Context, ev core.Event) {
	if e.mode != DispatchAsync {
		e.dispatch(ctx, ev)
		return
	}
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
	case <-ctx.Done():
	case <-e.done:
	}
}

func (e *EventBus) dispatch(ctx context.Context, ev core.Event) {
	e.mu.RLock()
	typed := e.subs[ev.Type]
	// copy to avoid holding lock during callbacks
	handlers := make([]func(context.Context, core.Event), 0, len(typed)+len(e.all))
	for _, s := range typed {
		handlers = append(handlers, s.fn)
	}
	for _, s := range e.all {
		handlers = append(handlers, s.fn)
	}
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
