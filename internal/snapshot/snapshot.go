package snapshot

import (
	"errors"
	"io"
	"sync/atomic"
	"time"
)

var (
	ErrNoGeneration = errors.New("snapshot: nothing published")
	ErrClosed       = errors.New("snapshot: manager closed")
)

// Snapshot pins one generation for the duration of a read. Callers must
// call Release when done.
type Snapshot[T io.Closer] struct {
	// ID is a unique identifier for this snapshot.
	ID uint64

	// Generation is the generation this snapshot observes.
	Generation uint64

	AcquiredAt time.Time

	ref      *Ref[T]
	manager  *Manager[T]
	released atomic.Bool
}

// Value returns the pinned value. It stays open until Release.
func (s *Snapshot[T]) Value() T {
	return s.ref.value
}

// Release unpins the generation. It is safe to call more than once.
func (s *Snapshot[T]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.ref.Unpin()
	if s.manager != nil {
		s.manager.releaseSnapshot(s)
	}
}

// Released reports whether Release has been called.
func (s *Snapshot[T]) Released() bool {
	return s.released.Load()
}

// HeldDuration returns how long this snapshot has been held.
func (s *Snapshot[T]) HeldDuration() time.Duration {
	return time.Since(s.AcquiredAt)
}
