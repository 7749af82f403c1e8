package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueue", func() {
	var queue *eventQueue

	BeforeEach(func() {
		queue = newEventQueue()
	})

	It("should pop in time order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			evt := &futureEvent{
				Event: Event{Time: Ticks(rand.Int63n(1000))},
				seq:   uint64(i),
			}
			queue.Push(evt)
		}

		now := Ticks(-1)
		for i := 0; i < numEvents; i++ {
			evt := queue.Pop()
			Expect(evt.Time >= now).To(BeTrue())
			now = evt.Time
		}
	})

	It("should break same-time ties by priority, then sequence", func() {
		queue.Push(&futureEvent{
			Event: Event{Time: 10, Priority: 5},
			seq:   0,
		})
		queue.Push(&futureEvent{
			Event: Event{Time: 10, Priority: 1},
			seq:   1,
		})
		queue.Push(&futureEvent{
			Event: Event{Time: 10, Priority: 1},
			seq:   2,
		})

		first := queue.Pop()
		second := queue.Pop()
		third := queue.Pop()

		Expect(first.Priority).To(Equal(1))
		Expect(first.seq).To(Equal(uint64(1)))
		Expect(second.Priority).To(Equal(1))
		Expect(second.seq).To(Equal(uint64(2)))
		Expect(third.Priority).To(Equal(5))
	})

	It("should return nil when empty", func() {
		Expect(queue.Pop()).To(BeNil())
		Expect(queue.Peek()).To(BeNil())
		Expect(queue.Len()).To(Equal(0))
	})
})
