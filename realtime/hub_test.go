package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"leadersync/core"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)

	ev := core.NewSimulationComplete(core.SimulationAck{Status: "success"})
	h.Broadcast(context.Background(), ev)

	received := <-ch
	if received.Type != core.EventSimulationComplete || received.Ack.Status != "success" {
		t.Fatalf("unexpected event: %+v", received)
	}

	h.Unsubscribe(id)
	_, ok := <-ch
	if ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

func TestHubUnsubscribeDuringBroadcast(t *testing.T) {
	h := NewHub()
	ev := core.NewSimulationComplete(core.SimulationAck{Status: "success"})
	stop := make(chan struct{})

	var churn sync.WaitGroup
	for i := 0; i < 4; i++ {
		churn.Add(1)
		go func() {
			defer churn.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ids := make([]int, 0, 32)
				for j := 0; j < 32; j++ {
					id, _ := h.Subscribe(1)
					ids = append(ids, id)
				}
				for _, id := range ids {
					h.Unsubscribe(id)
				}
			}
		}()
	}

	var senders sync.WaitGroup
	for i := 0; i < 4; i++ {
		senders.Add(1)
		go func() {
			defer senders.Done()
			for j := 0; j < 20000; j++ {
				h.Broadcast(context.Background(), ev)
			}
		}()
	}
	senders.Wait()
	close(stop)
	churn.Wait()
}

func TestHubDropsStaleSnapshots(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe(4)

	h.Broadcast(context.Background(), core.NewListChanged(core.ListState{Revision: 3, TotalCount: 30}))
	h.Broadcast(context.Background(), core.NewListChanged(core.ListState{Revision: 2, TotalCount: 20}))

	if got := (<-ch).List.Revision; got != 3 {
		t.Fatalf("want revision 3 got %d", got)
	}
	select {
	case ev := <-ch:
		t.Fatalf("stale snapshot delivered: %+v", ev.List)
	default:
	}
	latest, ok := h.Latest(core.EventListChanged)
	if !ok || latest.List.TotalCount != 30 {
		t.Fatalf("unexpected latest: %+v", latest)
	}
}

func TestHubReplaysLatestOnSubscribe(t *testing.T) {
	h := NewHub()
	h.Broadcast(context.Background(), core.NewListChanged(core.ListState{Revision: 5}))
	h.Broadcast(context.Background(), core.NewSearchChanged(core.SearchState{Query: "ann", Revision: 2}))

	_, ch := h.Subscribe(0)
	first, second := <-ch, <-ch
	if first.Type != core.EventListChanged || second.Type != core.EventSearchChanged {
		t.Fatalf("unexpected replay order: %s, %s", first.Type, second.Type)
	}
	if second.Search.Query != "ann" {
		t.Fatalf("unexpected query: %s", second.Search.Query)
	}
}

func TestMarshalJSON(t *testing.T) {
	ev := core.NewListChanged(core.ListState{
		Entries:    []core.Entry{{Username: "anna_smith1", Rating: 4000, Rank: 1}},
		TotalCount: 1,
		Phase:      core.ListIdle,
	})
	b := MarshalJSON(ev)
	var out core.Event
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.List == nil || out.List.Entries[0].Username != "anna_smith1" {
		t.Fatalf("unexpected list: %+v", out.List)
	}
}
