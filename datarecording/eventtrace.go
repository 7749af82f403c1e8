package datarecording

import (
	"reflect"

	"github.com/entflow/entflow/sim"
)

// EventTraceEntry is one row of the fired-event trace.
type EventTraceEntry struct {
	EventID  string
	Tick     int64
	Priority int
	Handler  string
}

// An EventTracer is a scheduler hook that records every fired event.
type EventTracer struct {
	recorder  DataRecorder
	tableName string
}

// NewEventTracer creates an EventTracer writing into the given recorder.
func NewEventTracer(recorder DataRecorder) *EventTracer {
	t := &EventTracer{
		recorder:  recorder,
		tableName: "event_trace",
	}

	recorder.CreateTable(t.tableName, EventTraceEntry{})

	return t
}

// Func records the event when it is about to fire.
func (t *EventTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*sim.Event)
	if !ok {
		return
	}

	handlerName := reflect.TypeOf(evt.Handler).String()
	if named, ok := evt.Handler.(sim.Named); ok {
		handlerName = named.Name()
	}

	t.recorder.InsertData(t.tableName, EventTraceEntry{
		EventID:  evt.ID,
		Tick:     int64(evt.Time),
		Priority: evt.Priority,
		Handler:  handlerName,
	})
}
