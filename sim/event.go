package sim

// An Event is a scheduled action that fires at a point in simulated time.
// Events are plain data. The Payload carries user-defined information to
// the handler.
type Event struct {
	// ID identifies the event in traces and error reports.
	ID string

	// Time is the tick when the event fires.
	Time Ticks

	// Priority orders same-tick events. Lower values fire first.
	Priority int

	// Handler is the component that processes the event.
	Handler Handler

	// Payload is the data delivered to the handler. Typically a pointer
	// to a struct defined by the user.
	Payload any
}

// A Handler processes events.
//
// A returned error is treated as a fault in the model logic. The scheduler
// aborts the run with a SchedulingFault; it never retries or swallows the
// error.
type Handler interface {
	Handle(e Event) error
}

// Named is implemented by components that carry a name. The scheduler uses
// it when identifying the source of a fault.
type Named interface {
	Name() string
}

// futureEvent is the scheduler-internal record of a pending event. The
// sequence number is assigned at scheduling time and breaks ties among
// events with equal time and priority, so that firing order is always
// the scheduling call order.
type futureEvent struct {
	Event

	seq       uint64
	cancelled bool
	fired     bool
}

// An EventHandle allows the holder to cancel a scheduled event before it
// fires. Cancelling a fired or already-cancelled event is a no-op.
type EventHandle struct {
	evt *futureEvent
}

// IsScheduled reports whether the event is still pending.
func (h *EventHandle) IsScheduled() bool {
	return h != nil && h.evt != nil && !h.evt.fired && !h.evt.cancelled
}
