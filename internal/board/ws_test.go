package board

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wolfman30/clinicflow/internal/queue"
)

func TestHubBroadcastsQueueUpdates(t *testing.T) {
	store := queue.NewStore(&fakeBackend{}, nil, nil)
	hub := NewHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, store)

	ts := httptest.NewServer(hub)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the hub a moment to register the connection, then trigger a
	// snapshot change.
	time.Sleep(50 * time.Millisecond)
	if err := store.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event queueUpdatedEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != "queue_updated" {
		t.Fatalf("unexpected event type: %q", event.Type)
	}
}
