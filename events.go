package localstore

import "time"

// EventType names a lifecycle event on the wire format "local-storage:<name>".
type EventType string

const (
	EventRetrieving   EventType = "local-storage:retrieving"
	EventHit          EventType = "local-storage:hit"
	EventMissed       EventType = "local-storage:missed"
	EventWriting      EventType = "local-storage:writing"
	EventWritten      EventType = "local-storage:written"
	EventWriteFailed  EventType = "local-storage:write-failed"
	EventForgot       EventType = "local-storage:forgot"
	EventForgotFailed EventType = "local-storage:forgot-failed"
	EventFlushing     EventType = "local-storage:flushing"
	EventFlushed      EventType = "local-storage:flushed"
)

// EventTypes lists all lifecycle event types in emission-relevant order.
// Handy for subscribing a single listener to the full feed.
func EventTypes() []EventType {
	return []EventType{
		EventRetrieving, EventHit, EventMissed,
		EventWriting, EventWritten, EventWriteFailed,
		EventForgot, EventForgotFailed,
		EventFlushing, EventFlushed,
	}
}

// Event is one immutable lifecycle notification. Which fields are populated
// depends on the type: retrieving/missed/forgot carry only the key,
// writing/written/write-failed carry the resolved payload and computed expiry,
// hit carries the payload, and flushing/flushed carry nothing beyond the type.
type Event[V any] struct {
	Type     EventType
	Key      string
	Value    V
	HasValue bool
	Expiry   *time.Time // nil when the entry never expires
}

// Listener receives a published event. Delivery is synchronous: the listener
// runs to completion before the emitting operation proceeds.
type Listener[V any] func(Event[V])
