package events

import (
	"log"
	"sync"
)

// LoggingObserver logs all events for debugging purposes.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	if o.verbose {
		log.Printf("[%s] Event: %s, Data: %v", o.name, event.Type, event.Data)
	} else {
		log.Printf("[%s] Event: %s", o.name, event.Type)
	}
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}

// RecordingObserver keeps every event it receives. The CLI uses it to
// summarize a run; tests use it to assert on dispatched events.
type RecordingObserver struct {
	mu     sync.Mutex
	types  map[string]bool
	events []Event
}

// NewRecordingObserver records events of the given types, or all events when
// none are given.
func NewRecordingObserver(types ...string) *RecordingObserver {
	o := &RecordingObserver{}
	if len(types) > 0 {
		o.types = make(map[string]bool, len(types))
		for _, t := range types {
			o.types[t] = true
		}
	}
	return o
}

// OnEvent stores the event.
func (o *RecordingObserver) OnEvent(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

// GetName returns the observer's name.
func (o *RecordingObserver) GetName() string {
	return "RecordingObserver"
}

// ShouldHandle filters on the types given at construction.
func (o *RecordingObserver) ShouldHandle(eventType string) bool {
	return o.types == nil || o.types[eventType]
}

// Events returns a copy of the recorded events.
func (o *RecordingObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// Count returns how many events of the given type were recorded.
func (o *RecordingObserver) Count(eventType string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
