package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints the information of fired events
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write into the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*Event)
	if !ok {
		return
	}

	if named, ok := evt.Handler.(Named); ok {
		h.Printf("%d, pri %d, %s -> %s",
			evt.Time, evt.Priority, reflect.TypeOf(evt.Payload), named.Name())
		return
	}

	h.Printf("%d, pri %d, %s",
		evt.Time, evt.Priority, reflect.TypeOf(evt.Payload))
}
