package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Process", func() {
	var (
		clock *Clock
		sched *Scheduler
	)

	BeforeEach(func() {
		clock = NewClock(1.0)
		sched = NewScheduler(clock)
	})

	It("should run the body once and terminate", func() {
		ran := 0
		p := sched.SpawnProcess("OneShot", 0, func(p *Process) error {
			ran++
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(ran).To(Equal(1))
		Expect(p.State()).To(Equal(ProcessTerminated))
	})

	It("should resume after waiting ticks", func() {
		var resumedAt []Ticks
		steps := 0

		p := sched.SpawnProcess("Waiter", 0, func(p *Process) error {
			resumedAt = append(resumedAt, sched.CurrentTick())
			steps++
			if steps < 3 {
				p.WaitTicks(10)
			}
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(resumedAt).To(Equal([]Ticks{0, 10, 20}))
		Expect(p.State()).To(Equal(ProcessTerminated))
	})

	It("should switch the body with WaitTicksThen", func() {
		var trace []string

		sched.SpawnProcess("TwoPhase", 0, func(p *Process) error {
			trace = append(trace, "first")
			p.WaitTicksThen(5, func(p *Process) error {
				trace = append(trace, "second")
				return nil
			})
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(trace).To(Equal([]string{"first", "second"}))
		Expect(sched.CurrentTick()).To(Equal(Ticks(5)))
	})

	It("should suspend on a condition until woken", func() {
		var consumed []Ticks
		var consumer *Process

		consumer = sched.SpawnProcess("Consumer", 0,
			func(p *Process) error {
				if len(consumed) == 0 {
					p.WaitUntil()
					return nil
				}
				return nil
			})

		producer := func(p *Process) error {
			consumed = append(consumed, sched.CurrentTick())
			sched.Wake(consumer)
			return nil
		}

		spawnAt := func(t Ticks) {
			kicker := handlerFunc(func(e Event) error {
				sched.SpawnProcess("Producer", 0, producer)
				return nil
			})
			sched.ScheduleAfter(t, 0, kicker, nil)
		}
		spawnAt(15)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(consumer.State()).To(Equal(ProcessTerminated))
		Expect(consumed).To(Equal([]Ticks{15}))
	})

	It("should keep a condition-waiting process suspended", func() {
		p := sched.SpawnProcess("Blocked", 0, func(p *Process) error {
			p.WaitUntil()
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(p.State()).To(Equal(ProcessWaitingCondition))
	})

	It("should ignore waking a terminated process", func() {
		p := sched.SpawnProcess("Done", 0, func(p *Process) error {
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(p.State()).To(Equal(ProcessTerminated))

		sched.Wake(p)
		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(p.State()).To(Equal(ProcessTerminated))
	})

	It("should resume only once on a double wake", func() {
		resumed := 0
		p := sched.SpawnProcess("Once", 0, func(p *Process) error {
			if resumed == 0 {
				resumed++
				p.WaitUntil()
				return nil
			}
			resumed++
			return nil
		})

		waker := handlerFunc(func(e Event) error {
			sched.Wake(p)
			sched.Wake(p)
			return nil
		})
		sched.ScheduleAfter(5, 0, waker, nil)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(resumed).To(Equal(2))
	})

	It("should wake processes in priority order", func() {
		var order []string

		block := func(name string) *Process {
			first := true
			return sched.SpawnProcess(name, 5, func(p *Process) error {
				if first {
					first = false
					p.WaitUntil()
					return nil
				}
				order = append(order, p.Name())
				return nil
			})
		}

		// Spawn order intentionally differs from wake order.
		pLow := block("Low")
		pHigh := block("High")

		waker := handlerFunc(func(e Event) error {
			sched.Wake(pLow)
			sched.Wake(pHigh)
			return nil
		})
		sched.ScheduleAfter(3, 0, waker, nil)

		Expect(sched.RunUntilIdle()).To(Succeed())
		Expect(order).To(Equal([]string{"Low", "High"}))
	})

	It("should identify the process in a fault", func() {
		bodyErr := errors.New("bad state")
		sched.SpawnProcess("Faulty", 0, func(p *Process) error {
			return bodyErr
		})

		err := sched.RunUntilIdle()

		var fault *SchedulingFault
		Expect(errors.As(err, &fault)).To(BeTrue())
		Expect(fault.Source).To(Equal("Faulty"))
		Expect(errors.Is(err, bodyErr)).To(BeTrue())
	})

	It("should panic when suspending twice in one step", func() {
		sched.SpawnProcess("Greedy", 0, func(p *Process) error {
			p.WaitTicks(1)
			Expect(func() { p.WaitTicks(2) }).To(Panic())
			return nil
		})

		Expect(sched.RunUntilIdle()).To(Succeed())
	})
})

var _ = Describe("Clock", func() {
	It("should convert ticks to seconds", func() {
		clock := NewClock(0.5)
		Expect(clock.SecondsAt(10)).To(Equal(5.0))
		Expect(clock.SecondsPerTick()).To(Equal(0.5))
	})

	It("should reject a non-positive scale", func() {
		Expect(func() { NewClock(0) }).To(Panic())
	})
})
