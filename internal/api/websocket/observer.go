package websocket

import (
	"log"

	"github.com/ramonehamilton/bridge-scorer/internal/events"
)

// WebSocketObserver forwards scoring events to WebSocket clients.
type WebSocketObserver struct {
	name string
	hub  *Hub
}

// NewWebSocketObserver creates a new observer that forwards events to WebSocket clients.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{
		name: "WebSocketObserver",
		hub:  hub,
	}
}

// OnEvent broadcasts the event, scoped to its session when it has one.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		log.Printf("[%s] Cannot emit event %s: hub is nil", o.name, event.Type)
		return nil
	}

	wsEvent := Event{
		Type:    event.Type,
		Session: sessionOf(event),
		Data:    event.Data,
	}
	if event.TypedData != nil {
		wsEvent.Data = event.TypedData
	}

	o.hub.BroadcastEvent(wsEvent)
	return nil
}

func sessionOf(event events.Event) int {
	switch data := event.TypedData.(type) {
	case events.SessionScoredEvent:
		return data.Session
	case events.SessionSkippedEvent:
		return data.Session
	case events.BoardsUpdatedEvent:
		return data.Session
	case events.RecomputeFailedEvent:
		return data.Session
	}
	return 0
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return o.name
}

// ShouldHandle forwards everything except skipped sessions, which carry no
// new information for clients.
func (o *WebSocketObserver) ShouldHandle(eventType string) bool {
	return eventType != events.TypeSessionSkipped
}

var _ events.Observer = (*WebSocketObserver)(nil)
