package sim

import "container/heap"

// eventQueue is the future-event list, ordered by (time, priority,
// sequence number).
type eventQueue struct {
	events eventHeap
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.events = make([]*futureEvent, 0)
	heap.Init(&q.events)
	return q
}

func (q *eventQueue) Push(evt *futureEvent) {
	heap.Push(&q.events, evt)
}

func (q *eventQueue) Pop() *futureEvent {
	if q.events.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.events).(*futureEvent)
}

func (q *eventQueue) Len() int {
	return q.events.Len()
}

func (q *eventQueue) Peek() *futureEvent {
	if q.events.Len() == 0 {
		return nil
	}
	return q.events[0]
}

type eventHeap []*futureEvent

func (h eventHeap) Len() int { return len(h) }

// Less orders events by time, then priority, then scheduling order.
// The sequence tie-break is what makes the firing order deterministic;
// heap iteration order never decides.
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}

	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	evt := x.(*futureEvent)
	*h = append(*h, evt)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]
	return evt
}
