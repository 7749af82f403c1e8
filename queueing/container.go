package queueing

import (
	"github.com/entflow/entflow/sim"
)

// HookPosContainerAdd marks when an entity is added to a container.
var HookPosContainerAdd = &sim.HookPos{Name: "Container Add"}

// HookPosContainerRemove marks when an entity is removed from a container.
var HookPosContainerRemove = &sim.HookPos{Name: "Container Remove"}

// A Container holds entities for a process station. Removal order follows
// the (priority, order key) discipline of the underlying Storage; FIFO or
// LIFO among equal priorities is selected per insertion.
//
// The container keeps lifetime and per-epoch counters and feeds every
// mutation into its LengthStats.
type Container struct {
	sim.HookableBase

	name    string
	sched   *sim.Scheduler
	storage *Storage
	stats   *LengthStats

	lastEntity any
	waiters    []*sim.Process

	initialNumberAdded   int64
	initialNumberRemoved int64
	numberAdded          int64
	numberRemoved        int64
}

// NewContainer creates a Container attached to the scheduler's clock.
func NewContainer(name string, sched *sim.Scheduler) *Container {
	return &Container{
		name:    name,
		sched:   sched,
		storage: NewStorage(),
		stats:   NewLengthStats(sched.Clock()),
	}
}

// Name returns the name of the container.
func (c *Container) Name() string {
	return c.name
}

// Add stores an entity. The order key is derived from the lifetime add
// counter: positive for FIFO, negated for LIFO, so keys are unique and a
// single comparison covers both disciplines.
func (c *Container) Add(ent any, entType string, pri int, fifo bool) {
	now := c.sched.CurrentTick()

	oldLen := c.storage.Size()
	c.stats.Update(oldLen, oldLen+1, now)

	c.lastEntity = ent
	c.numberAdded++

	n := c.TotalAdded()
	if !fifo {
		n = -n
	}

	entry := &Entry{
		Entity:   ent,
		Type:     entType,
		Priority: pri,
		OrderKey: n,
		AddedAt:  now,
	}
	c.storage.Add(entry)

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosContainerAdd,
			Item:   ent,
		})
	}

	c.wakeWaiters()
}

// Remove releases the next entity, restricted to the given type when
// entType is not empty. Returns ErrEmpty when no matching entity is
// stored.
func (c *Container) Remove(entType string) (any, error) {
	var entry *Entry
	var err error

	if entType == "" {
		entry, err = c.storage.First()
	} else {
		entry, err = c.storage.FirstOfType(entType)
	}
	if err != nil {
		return nil, err
	}

	oldLen := c.storage.Size()

	err = c.storage.Remove(entry)
	if err != nil {
		return nil, err
	}

	c.stats.Update(oldLen, oldLen-1, c.sched.CurrentTick())
	c.numberRemoved++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosContainerRemove,
			Item:   entry.Entity,
		})
	}

	return entry.Entity, nil
}

// Count returns the number of stored entities, restricted to a type when
// entType is not empty.
func (c *Container) Count(entType string) int {
	if entType == "" {
		return c.storage.Size()
	}

	return c.storage.SizeOfType(entType)
}

// IsEmpty reports whether no entity is stored, restricted to a type when
// entType is not empty.
func (c *Container) IsEmpty(entType string) bool {
	if entType == "" {
		return c.storage.IsEmpty()
	}

	return c.storage.IsEmptyOfType(entType)
}

// NotifyOnAdd registers a condition-waiting process to be woken the next
// time an entity is added.
func (c *Container) NotifyOnAdd(p *sim.Process) {
	c.waiters = append(c.waiters, p)
}

func (c *Container) wakeWaiters() {
	waiters := c.waiters
	c.waiters = nil

	for _, p := range waiters {
		c.sched.Wake(p)
	}
}

// TotalAdded returns the number of entities added since the container was
// created, across statistics epochs.
func (c *Container) TotalAdded() int64 {
	return c.initialNumberAdded + c.numberAdded
}

// TotalProcessed returns the number of entities removed since the
// container was created, across statistics epochs.
func (c *Container) TotalProcessed() int64 {
	return c.initialNumberRemoved + c.numberRemoved
}

// AddedThisEpoch returns the number of entities added since the last
// statistics reset.
func (c *Container) AddedThisEpoch() int64 {
	return c.numberAdded
}

// ProcessedThisEpoch returns the number of entities removed since the
// last statistics reset.
func (c *Container) ProcessedThisEpoch() int64 {
	return c.numberRemoved
}

// LastEntity returns the most recently added entity.
func (c *Container) LastEntity() any {
	return c.lastEntity
}

// Stats returns the length statistics of the container.
func (c *Container) Stats() *LengthStats {
	return c.stats
}

// Storage exposes the underlying ordered storage for reporting.
func (c *Container) Storage() *Storage {
	return c.storage
}

// ClearStatistics starts a fresh statistics epoch at the current tick.
// The epoch baselines fold the per-epoch counters into the lifetime
// totals, so totals since creation remain derivable.
func (c *Container) ClearStatistics() {
	c.initialNumberAdded += c.numberAdded
	c.initialNumberRemoved += c.numberRemoved
	c.numberAdded = 0
	c.numberRemoved = 0

	c.stats.Clear(c.sched.CurrentTick(), c.storage.Size())
}

// Clear empties the container and resets all counters and statistics, as
// on model reset.
func (c *Container) Clear() {
	c.storage.Clear()
	c.lastEntity = nil
	c.waiters = nil
	c.initialNumberAdded = 0
	c.initialNumberRemoved = 0
	c.numberAdded = 0
	c.numberRemoved = 0

	c.stats.Clear(c.sched.CurrentTick(), 0)
}
