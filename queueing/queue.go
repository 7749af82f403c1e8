package queueing

import (
	"fmt"

	"github.com/entflow/entflow/sim"
)

// A Queue is a positional first-in-first-out line of entities. Unlike a
// Container, entities are addressed by position, and the waiting time of
// the head entry is directly observable.
type Queue struct {
	name  string
	sched *sim.Scheduler
	stats *LengthStats

	items   []any
	addedAt []sim.Ticks

	numberAdded     int64
	numberProcessed int64
}

// NewQueue creates an empty Queue attached to the scheduler's clock.
func NewQueue(name string, sched *sim.Scheduler) *Queue {
	return &Queue{
		name:  name,
		sched: sched,
		stats: NewLengthStats(sched.Clock()),
	}
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// AddLast appends an entity to the end of the queue.
func (q *Queue) AddLast(ent any) {
	now := q.sched.CurrentTick()

	oldLen := len(q.items)
	q.stats.Update(oldLen, oldLen+1, now)

	q.items = append(q.items, ent)
	q.addedAt = append(q.addedAt, now)
	q.numberAdded++
}

// Remove removes and returns the entity at position i.
func (q *Queue) Remove(i int) (any, error) {
	if i < 0 || i >= len(q.items) {
		return nil, fmt.Errorf("index %d beyond the end of the queue: %w",
			i, ErrIndexOutOfRange)
	}

	now := q.sched.CurrentTick()
	oldLen := len(q.items)
	q.stats.Update(oldLen, oldLen-1, now)

	ent := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	q.addedAt = append(q.addedAt[:i], q.addedAt[i+1:]...)
	q.numberProcessed++

	return ent, nil
}

// RemoveFirst removes and returns the entity at the head of the queue.
func (q *Queue) RemoveFirst() (any, error) {
	return q.Remove(0)
}

// Count returns the number of entities in the queue.
func (q *Queue) Count() int {
	return len(q.items)
}

// QueueTime returns the number of ticks the head entity has waited.
func (q *Queue) QueueTime() (sim.Ticks, error) {
	if len(q.items) == 0 {
		return 0, ErrEmpty
	}

	return q.sched.CurrentTick() - q.addedAt[0], nil
}

// NumberAdded returns the number of entities added since the last
// statistics reset.
func (q *Queue) NumberAdded() int64 {
	return q.numberAdded
}

// NumberProcessed returns the number of entities removed since the last
// statistics reset.
func (q *Queue) NumberProcessed() int64 {
	return q.numberProcessed
}

// Stats returns the length statistics of the queue.
func (q *Queue) Stats() *LengthStats {
	return q.stats
}

// AverageQueueTime returns the average wait, in seconds, over all entities
// added since the last statistics reset.
func (q *Queue) AverageQueueTime() float64 {
	return q.stats.AverageWaitSeconds(
		q.sched.CurrentTick(), len(q.items), q.numberAdded)
}

// ClearStatistics resets the queue statistics to a fresh epoch at the
// current tick. The entities in the queue are unaffected.
func (q *Queue) ClearStatistics() {
	q.numberAdded = 0
	q.numberProcessed = 0
	q.stats.Clear(q.sched.CurrentTick(), len(q.items))
}
