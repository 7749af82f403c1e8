// Package queueing provides the ordered entity storage, the entity
// containers that queue-like stations build on, and the time-weighted
// queue-length statistics engine.
package queueing

import "errors"

// ErrEmpty is returned when an entry is requested from a storage that has
// no matching entry. Callers are expected to check IsEmpty first; the
// kernel never retries.
var ErrEmpty = errors.New("storage is empty")

// ErrNotFound is returned when removing an entry that is no longer
// present.
var ErrNotFound = errors.New("entry not found")

// ErrIndexOutOfRange is returned on positional removal beyond the bounds
// of a queue.
var ErrIndexOutOfRange = errors.New("index out of range")
