// Package snapshot hands out reference-counted views of a value that is
// replaced from time to time, such as an open index. A replaced value is
// closed only after its last reader has finished.
package snapshot

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Manager tracks the current generation and the snapshots taken of it.
//
// Concurrency model:
//   - generationMu (RWMutex): read-locked to acquire, write-locked to publish.
//   - snapshotsMu (Mutex): protects activeSnapshots.
//   - Lock ordering: generationMu → snapshotsMu → Ref.mu.
type Manager[T io.Closer] struct {
	generationMu sync.RWMutex
	generation   uint64
	current      *Ref[T]
	closed       bool

	snapshotsMu     sync.Mutex
	activeSnapshots map[uint64]*Snapshot[T]

	nextSnapshotID atomic.Uint64

	logger *slog.Logger

	// LeakThreshold is the duration after which a held snapshot is considered
	// a potential leak. Zero disables leak detection.
	LeakThreshold time.Duration
}

// NewManager creates an empty Manager.
func NewManager[T io.Closer](logger *slog.Logger) *Manager[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager[T]{
		activeSnapshots: make(map[uint64]*Snapshot[T]),
		logger:          logger,
		LeakThreshold:   5 * time.Minute,
	}
}

// Acquire pins the current generation. The caller must call Release.
func (m *Manager[T]) Acquire() (*Snapshot[T], error) {
	m.generationMu.RLock()
	if m.closed {
		m.generationMu.RUnlock()
		return nil, ErrClosed
	}
	ref := m.current
	if ref == nil {
		m.generationMu.RUnlock()
		return nil, ErrNoGeneration
	}
	ref.Pin()
	m.generationMu.RUnlock()

	snap := &Snapshot[T]{
		ID:         m.nextSnapshotID.Add(1),
		Generation: ref.generation,
		AcquiredAt: time.Now(),
		ref:        ref,
		manager:    m,
	}

	m.snapshotsMu.Lock()
	m.activeSnapshots[snap.ID] = snap
	m.snapshotsMu.Unlock()

	return snap, nil
}

// Publish makes v the current generation and retires the previous one,
// which is closed once no snapshot holds it. It returns the new
// generation number. Publishing to a closed manager closes v.
func (m *Manager[T]) Publish(v T) (uint64, error) {
	m.generationMu.Lock()
	if m.closed {
		m.generationMu.Unlock()
		if err := v.Close(); err != nil {
			return 0, err
		}
		return 0, ErrClosed
	}
	m.generation++
	gen := m.generation
	old := m.current
	m.current = newRef(gen, v, m.logClose)
	m.generationMu.Unlock()

	if old != nil {
		old.retire()
	}
	m.logger.Info("generation published", "generation", gen, "retired_readers", refCount(old))
	return gen, nil
}

func refCount[T io.Closer](r *Ref[T]) int64 {
	if r == nil {
		return 0
	}
	return r.RefCount()
}

func (m *Manager[T]) logClose(generation uint64, err error) {
	if err != nil {
		m.logger.Warn("closing retired generation", "generation", generation, "error", err)
		return
	}
	m.logger.Debug("retired generation closed", "generation", generation)
}

// Close retires the current generation and rejects further use.
func (m *Manager[T]) Close() error {
	m.generationMu.Lock()
	if m.closed {
		m.generationMu.Unlock()
		return nil
	}
	m.closed = true
	cur := m.current
	m.current = nil
	m.generationMu.Unlock()

	if cur == nil {
		return nil
	}
	cur.retire()
	return cur.CloseErr()
}

// CurrentGeneration returns the latest published generation, 0 if none.
func (m *Manager[T]) CurrentGeneration() uint64 {
	m.generationMu.RLock()
	defer m.generationMu.RUnlock()
	return m.generation
}

// ActiveSnapshotCount returns the number of currently held snapshots.
func (m *Manager[T]) ActiveSnapshotCount() int {
	m.snapshotsMu.Lock()
	defer m.snapshotsMu.Unlock()
	return len(m.activeSnapshots)
}

// CurrentRefCount returns the reader count of the current generation, or
// -1 when nothing is published.
func (m *Manager[T]) CurrentRefCount() int64 {
	m.generationMu.RLock()
	defer m.generationMu.RUnlock()
	if m.current == nil {
		return -1
	}
	return m.current.RefCount()
}

// DetectLeaks returns snapshots that have been held longer than LeakThreshold.
func (m *Manager[T]) DetectLeaks() []*Snapshot[T] {
	if m.LeakThreshold <= 0 {
		return nil
	}

	m.snapshotsMu.Lock()
	defer m.snapshotsMu.Unlock()

	var leaks []*Snapshot[T]
	for _, snap := range m.activeSnapshots {
		if snap.HeldDuration() > m.LeakThreshold {
			leaks = append(leaks, snap)
		}
	}
	return leaks
}

func (m *Manager[T]) releaseSnapshot(snap *Snapshot[T]) {
	m.snapshotsMu.Lock()
	delete(m.activeSnapshots, snap.ID)
	m.snapshotsMu.Unlock()

	m.logger.Debug("snapshot released",
		"snapshot_id", snap.ID,
		"generation", snap.Generation,
		"held_duration", snap.HeldDuration(),
	)
}
