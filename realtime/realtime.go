// Package realtime keeps open screens in sync with the backend without
// polling from every screen: subscribers register callbacks for row-level
// change events on a (table, filter) scope, and a shared registry multiplexes
// one upstream feed per scope across all of them.
package realtime

import (
	"context"
	"encoding/json"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// Event is one row-level change.
type Event struct {
	Table     string
	Filter    string
	Type      EventType
	Record    json.RawMessage
	OldRecord json.RawMessage
}

// Handlers are the caller's callbacks. Per-type handlers fire for their
// event type; OnChange fires for every event that passes the mask.
type Handlers struct {
	OnInsert func(Event)
	OnUpdate func(Event)
	OnDelete func(Event)
	OnChange func(Event)
}

// StatusFunc reports feed connectivity for a scope.
type StatusFunc func(connected bool)

// Feed is the upstream change-event source. Open returns a channel that
// closes when ctx is cancelled; implementations call status as their
// connection state changes.
type Feed interface {
	Open(ctx context.Context, table, filter string, status StatusFunc) (<-chan Event, error)
}
