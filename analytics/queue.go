package analytics

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"leadersync/core"
)

// DefaultQueueSize bounds the backlog of a QueuedHook.
const DefaultQueueSize = 64

type queuedEvent struct {
	ctx context.Context
	ev  core.Event
}

// QueuedHook runs a slow hook on its own goroutine behind a bounded queue.
// OnEvent never blocks: when the queue is full the event is dropped.
type QueuedHook struct {
	hook   Hook
	name   string
	logger *zap.Logger

	queue     chan queuedEvent
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewQueuedHook starts the worker for h. size <= 0 uses DefaultQueueSize.
func NewQueuedHook(name string, h Hook, size int, logger *zap.Logger) *QueuedHook {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &QueuedHook{
		hook:   h,
		name:   name,
		logger: logger,
		queue:  make(chan queuedEvent, size),
		done:   make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *QueuedHook) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case item := <-q.queue:
			select {
			case <-q.done:
				return
			default:
			}
			q.hook.OnEvent(item.ctx, item.ev)
		}
	}
}

func (q *QueuedHook) OnEvent(ctx context.Context, e core.Event) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), ev: e}:
	default:
		n := q.dropped.Add(1)
		q.logger.Debug("hook queue full, event dropped",
			zap.String("hook", q.name), zap.String("type", string(e.Type)), zap.Int64("dropped", n))
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (q *QueuedHook) Dropped() int64 { return q.dropped.Load() }

// Close waits for the event in flight. Events still queued are discarded.
func (q *QueuedHook) Close() {
	q.closeOnce.Do(func() { close(q.done) })
	q.wg.Wait()
	if n := len(q.queue); n > 0 {
		q.logger.Debug("hook closed with pending events", zap.String("hook", q.name), zap.Int("pending", n))
	}
}
