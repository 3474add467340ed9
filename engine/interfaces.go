package engine

import (
	"context"
	"time"

	"leadersync/core"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_client.go leadersync/engine LeaderboardClient

// LeaderboardClient is the remote boundary the controllers depend on.
// Every failure it returns is expected to satisfy core.IsTransport.
type LeaderboardClient interface {
	FetchPage(ctx context.Context, limit, offset int) (core.Page, error)
	Search(ctx context.Context, query string) ([]core.Entry, error)
	TriggerSimulation(ctx context.Context) (core.SimulationAck, error)
}

// Timer is a cancelable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules debounce callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock implements Clock with the runtime timer.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
