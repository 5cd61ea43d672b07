package snapshot

import (
	"io"
	"sync"
	"sync/atomic"
)

// Ref tracks the readers of one published generation. The value is
// closed once the generation has been retired and the last reader has
// unpinned it.
type Ref[T io.Closer] struct {
	generation uint64
	value      T
	refCount   atomic.Int64

	mu       sync.Mutex // protects retired, closed and closeErr
	retired  bool
	closed   bool
	closeErr error
	onClose  func(generation uint64, err error)
}

func newRef[T io.Closer](generation uint64, value T, onClose func(uint64, error)) *Ref[T] {
	return &Ref[T]{generation: generation, value: value, onClose: onClose}
}

// Generation returns the generation number the value was published as.
func (r *Ref[T]) Generation() uint64 { return r.generation }

// Pin increments the reference count.
func (r *Ref[T]) Pin() {
	r.refCount.Add(1)
}

// Unpin decrements the reference count and closes a retired value when
// the count reaches zero.
func (r *Ref[T]) Unpin() {
	n := r.refCount.Add(-1)
	if n < 0 {
		panic("snapshot: ref count went negative")
	}
	if n == 0 {
		r.maybeClose()
	}
}

// RefCount returns the current reference count.
func (r *Ref[T]) RefCount() int64 {
	return r.refCount.Load()
}

// retire marks the generation as superseded.
func (r *Ref[T]) retire() {
	r.mu.Lock()
	r.retired = true
	r.mu.Unlock()
	r.maybeClose()
}

// Closed reports whether the value has been closed.
func (r *Ref[T]) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// CloseErr returns the error from closing the value, if any.
func (r *Ref[T]) CloseErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeErr
}

func (r *Ref[T]) maybeClose() {
	r.mu.Lock()
	if r.closed || !r.retired || r.refCount.Load() != 0 {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.closeErr = r.value.Close()
	err := r.closeErr
	r.mu.Unlock()

	if r.onClose != nil {
		r.onClose(r.generation, err)
	}
}
