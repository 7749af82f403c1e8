package sim

import (
	"fmt"
	"reflect"
	"sync"
)

// HookPosBeforeEvent is a hook position that triggers before firing an event.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after firing an event.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// A SchedulingFault reports that a handler returned an error while its
// event fired. The run aborts; model state cannot be trusted after a
// logic fault.
type SchedulingFault struct {
	Time    Ticks
	EventID string
	Source  string
	Err     error
}

func (f *SchedulingFault) Error() string {
	return fmt.Sprintf("scheduling fault at tick %d in %s (event %s): %v",
		f.Time, f.Source, f.EventID, f.Err)
}

func (f *SchedulingFault) Unwrap() error {
	return f.Err
}

// A Scheduler drives the discrete event simulation. It maintains the
// future-event list, advances the clock, and fires events one after
// another in (time, priority, scheduling order).
//
// All model state is owned by the goroutine that calls RunUntilIdle or
// RunUntil. Other goroutines may only Pause, Continue, Cancel, or read
// the current time.
type Scheduler struct {
	HookableBase

	clock *Clock

	timeLock sync.RWMutex
	queue    *eventQueue
	nextSeq  uint64

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewScheduler creates a Scheduler that advances the given clock.
func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{
		clock: clock,
		queue: newEventQueue(),
	}
}

// CurrentTick returns the time of the most recently fired event.
func (s *Scheduler) CurrentTick() Ticks {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.clock.CurrentTick()
}

// Clock returns the clock the scheduler advances.
func (s *Scheduler) Clock() *Clock {
	return s.clock
}

// ScheduleAfter registers an event to fire after the given delay. A zero
// delay queues the event behind all same-instant events already scheduled
// with priority not greater than its own; it never executes inline.
//
// The returned handle can cancel the event before it fires.
func (s *Scheduler) ScheduleAfter(
	delay Ticks,
	priority int,
	handler Handler,
	payload any,
) *EventHandle {
	if delay < 0 {
		panic(fmt.Sprintf("cannot schedule an event in the past, delay %d",
			delay))
	}

	s.timeLock.Lock()
	defer s.timeLock.Unlock()

	evt := &futureEvent{
		Event: Event{
			ID:       GetIDGenerator().Generate(),
			Time:     s.clock.CurrentTick() + delay,
			Priority: priority,
			Handler:  handler,
			Payload:  payload,
		},
		seq: s.nextSeq,
	}
	s.nextSeq++

	s.queue.Push(evt)

	return &EventHandle{evt: evt}
}

// Cancel removes a not-yet-fired event. Cancelling an event that already
// fired, or cancelling twice, is a no-op.
func (s *Scheduler) Cancel(h *EventHandle) {
	if h == nil || h.evt == nil {
		return
	}

	s.timeLock.Lock()
	defer s.timeLock.Unlock()

	if !h.evt.fired {
		h.evt.cancelled = true
	}
	h.evt = nil
}

// RunUntilIdle fires events until the future-event list is empty.
func (s *Scheduler) RunUntilIdle() error {
	return s.run(0, false)
}

// RunUntil fires events up to and including the given tick, then advances
// the clock to the horizon.
func (s *Scheduler) RunUntil(horizon Ticks) error {
	return s.run(horizon, true)
}

func (s *Scheduler) run(horizon Ticks, bounded bool) error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	for {
		s.pauseLock.Lock()

		evt := s.takeNextEvent(horizon, bounded)
		if evt == nil {
			s.pauseLock.Unlock()
			return nil
		}

		hookCtx := HookCtx{
			Domain: s,
			Pos:    HookPosBeforeEvent,
			Item:   &evt.Event,
		}
		s.InvokeHook(hookCtx)

		err := evt.Handler.Handle(evt.Event)
		if err != nil {
			s.pauseLock.Unlock()
			return &SchedulingFault{
				Time:    evt.Time,
				EventID: evt.ID,
				Source:  describeHandler(evt.Handler),
				Err:     err,
			}
		}

		hookCtx.Pos = HookPosAfterEvent
		s.InvokeHook(hookCtx)

		s.pauseLock.Unlock()
	}
}

// takeNextEvent pops the next live event, marks it fired, and advances the
// clock, all in one critical section. A concurrent Cancel therefore either
// lands before the pop, which discards the event, or observes it as fired,
// which makes the cancel a no-op. Returns nil when the run is over,
// with the clock advanced to the horizon on a bounded run.
func (s *Scheduler) takeNextEvent(horizon Ticks, bounded bool) *futureEvent {
	s.timeLock.Lock()
	defer s.timeLock.Unlock()

	for {
		evt := s.queue.Peek()
		if evt == nil {
			break
		}

		if evt.cancelled {
			s.queue.Pop()
			continue
		}

		if bounded && evt.Time > horizon {
			break
		}

		s.queue.Pop()
		evt.fired = true
		s.clock.advanceTo(evt.Time)

		return evt
	}

	if bounded && horizon > s.clock.CurrentTick() {
		s.clock.advanceTo(horizon)
	}

	return nil
}

// Pause prevents the scheduler from firing more events until Continue is
// called. The pause takes effect at the next event boundary.
func (s *Scheduler) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue resumes event firing after a Pause.
func (s *Scheduler) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// PendingEvents returns the number of events in the future-event list,
// including events cancelled but not yet discarded.
func (s *Scheduler) PendingEvents() int {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()

	return s.queue.Len()
}

func describeHandler(h Handler) string {
	if named, ok := h.(Named); ok {
		return named.Name()
	}

	return reflect.TypeOf(h).String()
}
