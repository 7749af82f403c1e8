package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

// orderRecorder collects the payloads of the events it handles.
type orderRecorder struct {
	fired []any
	ticks []Ticks
	sched *Scheduler
}

func (r *orderRecorder) Handle(e Event) error {
	r.fired = append(r.fired, e.Payload)
	r.ticks = append(r.ticks, e.Time)
	return nil
}

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		clock    *Clock
		sched    *Scheduler
		recorder *orderRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		clock = NewClock(1.0)
		sched = NewScheduler(clock)
		recorder = &orderRecorder{sched: sched}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should fire events in time order", func() {
		sched.ScheduleAfter(4, 0, recorder, "d")
		sched.ScheduleAfter(2, 0, recorder, "b")
		sched.ScheduleAfter(1, 0, recorder, "a")
		sched.ScheduleAfter(3, 0, recorder, "c")

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"a", "b", "c", "d"}))
		Expect(sched.CurrentTick()).To(Equal(Ticks(4)))
	})

	It("should break same-tick ties by priority, then call order", func() {
		sched.ScheduleAfter(5, 2, recorder, "low1")
		sched.ScheduleAfter(5, 1, recorder, "high1")
		sched.ScheduleAfter(5, 2, recorder, "low2")
		sched.ScheduleAfter(5, 1, recorder, "high2")

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal(
			[]any{"high1", "high2", "low1", "low2"}))
	})

	It("should schedule mock handlers in order", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)

		first := handler2.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				sched.ScheduleAfter(3, 0, handler1, nil)
				return nil
			})
		handler1.EXPECT().
			Handle(gomock.Any()).
			Return(nil).
			After(first)

		sched.ScheduleAfter(2, 0, handler2, nil)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(sched.CurrentTick()).To(Equal(Ticks(5)))
	})

	It("should not run zero-delay events inline", func() {
		var duringHandler []any

		reentrant := handlerFunc(func(e Event) error {
			sched.ScheduleAfter(0, 0, recorder, "nested")
			duringHandler = append(duringHandler, recorder.fired...)
			return nil
		})

		sched.ScheduleAfter(1, 0, reentrant, nil)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(duringHandler).To(BeEmpty())
		Expect(recorder.fired).To(Equal([]any{"nested"}))
		Expect(recorder.ticks).To(Equal([]Ticks{1}))
	})

	It("should queue a zero-delay event behind same-instant events", func() {
		kicker := handlerFunc(func(e Event) error {
			sched.ScheduleAfter(0, 0, recorder, "late")
			return nil
		})

		sched.ScheduleAfter(1, 0, kicker, nil)
		sched.ScheduleAfter(1, 0, recorder, "early")

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"early", "late"}))
	})

	It("should panic when scheduling with a negative delay", func() {
		Expect(func() {
			sched.ScheduleAfter(-1, 0, recorder, nil)
		}).To(Panic())
	})

	It("should never fire a cancelled event", func() {
		sched.ScheduleAfter(1, 0, recorder, "keep")
		handle := sched.ScheduleAfter(2, 0, recorder, "drop")
		sched.ScheduleAfter(3, 0, recorder, "keep2")

		Expect(handle.IsScheduled()).To(BeTrue())
		sched.Cancel(handle)
		Expect(handle.IsScheduled()).To(BeFalse())

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"keep", "keep2"}))
	})

	It("should treat cancel after firing as a no-op", func() {
		handle := sched.ScheduleAfter(1, 0, recorder, "a")

		Expect(sched.RunUntilIdle()).To(Succeed())

		sched.Cancel(handle)
		sched.Cancel(handle)
		Expect(recorder.fired).To(Equal([]any{"a"}))
	})

	It("should suppress an event cancelled by a same-instant handler", func() {
		var handle *EventHandle
		canceller := handlerFunc(func(e Event) error {
			sched.Cancel(handle)
			return nil
		})

		sched.ScheduleAfter(1, 0, canceller, nil)
		handle = sched.ScheduleAfter(1, 1, recorder, "victim")
		sched.ScheduleAfter(1, 2, recorder, "survivor")

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"survivor"}))
	})

	It("should mark the event fired before its handler runs", func() {
		var handle *EventHandle
		selfCanceller := handlerFunc(func(e Event) error {
			Expect(handle.IsScheduled()).To(BeFalse())
			sched.Cancel(handle)
			return nil
		})

		handle = sched.ScheduleAfter(1, 0, selfCanceller, nil)
		sched.ScheduleAfter(2, 0, recorder, "after")

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"after"}))
	})

	It("should stop at the horizon and advance the clock to it", func() {
		sched.ScheduleAfter(5, 0, recorder, "in")
		sched.ScheduleAfter(20, 0, recorder, "out")

		Expect(sched.RunUntil(10)).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"in"}))
		Expect(sched.CurrentTick()).To(Equal(Ticks(10)))
		Expect(sched.PendingEvents()).To(Equal(1))

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal([]any{"in", "out"}))
	})

	It("should advance the clock to the horizon when idle", func() {
		Expect(sched.RunUntil(42)).To(Succeed())
		Expect(sched.CurrentTick()).To(Equal(Ticks(42)))
	})

	It("should abort the run on a handler error", func() {
		faultErr := errors.New("broken model")
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any()).Return(faultErr)

		sched.ScheduleAfter(1, 0, handler, nil)
		sched.ScheduleAfter(2, 0, recorder, "never")

		err := sched.RunUntilIdle()

		var fault *SchedulingFault
		Expect(errors.As(err, &fault)).To(BeTrue())
		Expect(fault.Time).To(Equal(Ticks(1)))
		Expect(errors.Is(err, faultErr)).To(BeTrue())
		Expect(recorder.fired).To(BeEmpty())
	})

	It("should fire identical scheduling sequences identically", func() {
		other := NewScheduler(NewClock(1.0))
		otherRecorder := &orderRecorder{}

		schedule := func(s *Scheduler, r Handler) {
			s.ScheduleAfter(7, 1, r, "a")
			s.ScheduleAfter(7, 1, r, "b")
			s.ScheduleAfter(7, 0, r, "c")
			s.ScheduleAfter(3, 9, r, "d")
			s.ScheduleAfter(7, 1, r, "e")
		}

		schedule(sched, recorder)
		schedule(other, otherRecorder)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(other.RunUntilIdle()).To(Succeed())
		Expect(recorder.fired).To(Equal(otherRecorder.fired))
	})
})

// handlerFunc adapts a function to the Handler interface.
type handlerFunc func(e Event) error

func (f handlerFunc) Handle(e Event) error {
	return f(e)
}
