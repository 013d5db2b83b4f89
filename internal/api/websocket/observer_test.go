package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ramonehamilton/bridge-scorer/internal/events"
)

func TestWebSocketObserver_ShouldHandle(t *testing.T) {
	observer := NewWebSocketObserver(NewHub())

	for _, eventType := range []string{events.TypeSessionScored, events.TypeTotalsUpdated, events.TypeConfigReloaded} {
		if !observer.ShouldHandle(eventType) {
			t.Errorf("Expected ShouldHandle(%s) to return true", eventType)
		}
	}
	if observer.ShouldHandle(events.TypeSessionSkipped) {
		t.Error("Expected skipped sessions to be filtered")
	}
}

func TestWebSocketObserver_OnEvent_NilHub(t *testing.T) {
	observer := &WebSocketObserver{name: "TestObserver"}

	if err := observer.OnEvent(events.Event{Type: "test:event"}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestWebSocketObserver_ScopesSessionEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	conn := dial(t, server, "?session=4")
	waitForClients(t, hub, 1)

	observer := NewWebSocketObserver(hub)
	ctx := context.Background()
	_ = observer.OnEvent(events.NewTypedEvent(events.TypeSessionScored, events.SessionScoredEvent{Session: 3}, ctx))
	_ = observer.OnEvent(events.NewTypedEvent(events.TypeSessionScored, events.SessionScoredEvent{Session: 4, Pairs: 12}, ctx))

	ev := readEvent(t, conn)
	if ev.Session != 4 {
		t.Fatalf("Expected session 4, got %d", ev.Session)
	}
	data, ok := ev.Data.(map[string]interface{})
	if !ok {
		t.Fatal("Expected Data to be an object")
	}
	if pairs, _ := data["pairs"].(float64); int(pairs) != 12 {
		t.Errorf("Expected pairs=12, got %v", data["pairs"])
	}
}
