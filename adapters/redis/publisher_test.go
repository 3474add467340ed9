package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"leadersync/core"
)

// newTestClient spins up a miniredis server and returns it with a client.
func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()

	p, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultChannel, p.Channel())
	require.NoError(t, p.Close())

	mr.Close()
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestPublisher_RoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	p := NewWithClient(client, "test:events")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := p.Subscribe(ctx)
	require.NoError(t, err)

	state := core.ListState{
		Entries:    []core.Entry{{Username: "anna_smith1", Rating: 4950, Rank: 1}},
		Offset:     50,
		TotalCount: 1245,
		Phase:      core.ListIdle,
		Revision:   7,
	}
	p.OnEvent(ctx, core.NewListChanged(state))

	select {
	case ev := <-events:
		require.NotNil(t, ev.List)
		assert.Equal(t, core.EventListChanged, ev.Type)
		assert.Equal(t, state, *ev.List)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPublisher_PublishFailsWhenServerGone(t *testing.T) {
	mr, client := newTestClient(t)
	p := NewWithClient(client, "")

	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, core.NewSimulationComplete(core.SimulationAck{Status: "success"})))

	mr.Close()
	assert.Error(t, p.Publish(ctx, core.NewSimulationFailed(assert.AnError)))
}

func TestPublisher_SubscribeStopsOnCancel(t *testing.T) {
	_, client := newTestClient(t)
	p := NewWithClient(client, "test:cancel")

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}
