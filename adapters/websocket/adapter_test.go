package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"leadersync/core"
	"leadersync/realtime"
)

func readEvent(t *testing.T, conn *gorillaws.Conn) core.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var received core.Event
	if err := json.Unmarshal(msg, &received); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return received
}

func TestHandlerStreamsEvents(t *testing.T) {
	hub := realtime.NewHub()
	hub.Broadcast(context.Background(), core.NewListChanged(core.ListState{TotalCount: 1245, Revision: 1}))

	server := httptest.NewServer(Handler(hub, zaptest.NewLogger(t)))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):] // convert http->ws
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	replayed := readEvent(t, conn)
	if replayed.List == nil || replayed.List.TotalCount != 1245 {
		t.Fatalf("unexpected replay: %+v", replayed)
	}

	hub.Broadcast(context.Background(), core.NewSearchChanged(core.SearchState{Query: "anna", Phase: core.SearchDebouncing, Revision: 1}))

	received := readEvent(t, conn)
	if received.Search == nil || received.Search.Query != "anna" {
		t.Fatalf("unexpected event: %+v", received)
	}
}
