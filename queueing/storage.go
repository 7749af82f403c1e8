package queueing

import (
	"fmt"
	"log"
	"sort"

	"github.com/entflow/entflow/sim"
)

// An Entry is the record of one entity held in a Storage.
//
// Entries are totally ordered by (Priority, OrderKey) ascending. OrderKey
// is a signed sequence number: a FIFO insertion uses a positive,
// increasing value and a LIFO insertion uses a negative, decreasing one,
// so a single comparison serves both disciplines. OrderKey values are
// never reused within a storage.
type Entry struct {
	// Entity is a non-owning reference to the stored entity.
	Entity any

	// Type groups entries for type-restricted retrieval.
	Type string

	// Priority orders removal. Lower values are removed first.
	Priority int

	// OrderKey breaks ties among equal-priority entries.
	OrderKey int64

	// AddedAt is the tick at which the entry was stored.
	AddedAt sim.Ticks
}

// A Storage holds entries in (Priority, OrderKey) order. It is
// order-agnostic about FIFO vs LIFO; the discipline is fully encoded in
// the OrderKey values assigned at insertion time.
//
// A Storage is owned by the scheduler goroutine; it is not independently
// thread safe.
type Storage struct {
	entries    []*Entry
	typeCounts map[string]int
	version    uint64
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{
		typeCounts: make(map[string]int),
	}
}

func entryLess(a, b *Entry) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}

	return a.OrderKey < b.OrderKey
}

// Add inserts an entry, keeping the (Priority, OrderKey) order.
func (s *Storage) Add(e *Entry) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return entryLess(e, s.entries[i])
	})

	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e

	s.typeCounts[e.Type]++
	s.version++
}

// First returns, without removing, the lowest-ordered entry.
func (s *Storage) First() (*Entry, error) {
	if len(s.entries) == 0 {
		return nil, ErrEmpty
	}

	return s.entries[0], nil
}

// FirstOfType returns, without removing, the lowest-ordered entry of the
// given type.
func (s *Storage) FirstOfType(t string) (*Entry, error) {
	if s.typeCounts[t] == 0 {
		return nil, fmt.Errorf("no entry of type %q: %w", t, ErrEmpty)
	}

	for _, e := range s.entries {
		if e.Type == t {
			return e, nil
		}
	}

	log.Panicf("type count for %q is out of sync", t)
	return nil, nil
}

// Remove removes a previously returned entry.
func (s *Storage) Remove(e *Entry) error {
	i := sort.Search(len(s.entries), func(i int) bool {
		return !entryLess(s.entries[i], e)
	})

	if i >= len(s.entries) || s.entries[i] != e {
		return fmt.Errorf("entry for entity %v: %w", e.Entity, ErrNotFound)
	}

	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.typeCounts[e.Type]--
	s.version++

	return nil
}

// Size returns the number of entries.
func (s *Storage) Size() int {
	return len(s.entries)
}

// SizeOfType returns the number of entries of the given type.
func (s *Storage) SizeOfType(t string) int {
	return s.typeCounts[t]
}

// IsEmpty reports whether the storage holds no entry.
func (s *Storage) IsEmpty() bool {
	return len(s.entries) == 0
}

// IsEmptyOfType reports whether the storage holds no entry of the given
// type.
func (s *Storage) IsEmptyOfType(t string) bool {
	return s.typeCounts[t] == 0
}

// Clear removes all entries.
func (s *Storage) Clear() {
	s.entries = nil
	s.typeCounts = make(map[string]int)
	s.version++
}

// Entities returns the stored entities in storage order.
func (s *Storage) Entities() []any {
	ret := make([]any, 0, len(s.entries))
	for _, e := range s.entries {
		ret = append(ret, e.Entity)
	}

	return ret
}

// EntitiesOfType returns the stored entities of the given type in storage
// order.
func (s *Storage) EntitiesOfType(t string) []any {
	ret := make([]any, 0, s.typeCounts[t])
	for _, e := range s.entries {
		if e.Type == t {
			ret = append(ret, e.Entity)
		}
	}

	return ret
}

// Priorities returns the priorities of the stored entries in storage
// order.
func (s *Storage) Priorities() []int {
	ret := make([]int, 0, len(s.entries))
	for _, e := range s.entries {
		ret = append(ret, e.Priority)
	}

	return ret
}

// Types returns the types of the stored entries in storage order.
func (s *Storage) Types() []string {
	ret := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		ret = append(ret, e.Type)
	}

	return ret
}

// StorageTimes returns, for each entry in storage order, the number of
// ticks the entry has been stored.
func (s *Storage) StorageTimes(now sim.Ticks) []sim.Ticks {
	ret := make([]sim.Ticks, 0, len(s.entries))
	for _, e := range s.entries {
		ret = append(ret, now-e.AddedAt)
	}

	return ret
}

// Iterator returns a lazy iterator over the entries in storage order.
func (s *Storage) Iterator() *Iterator {
	return &Iterator{
		storage: s,
		version: s.version,
	}
}

// An Iterator enumerates entries in storage order. Structurally mutating
// the storage invalidates the iterator; further use panics.
type Iterator struct {
	storage *Storage
	version uint64
	next    int
}

// HasNext reports whether more entries remain.
func (it *Iterator) HasNext() bool {
	it.mustBeValid()
	return it.next < len(it.storage.entries)
}

// Next returns the next entry.
func (it *Iterator) Next() *Entry {
	it.mustBeValid()

	e := it.storage.entries[it.next]
	it.next++
	return e
}

// Restart rewinds the iterator to the beginning of the current storage
// content.
func (it *Iterator) Restart() {
	it.version = it.storage.version
	it.next = 0
}

func (it *Iterator) mustBeValid() {
	if it.version != it.storage.version {
		log.Panic("storage mutated during enumeration")
	}
}
