package indexing

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"GoStem/internal/index"
)

// DefaultBufferMemoryLimit bounds the approximate size of a WriteBuffer.
const DefaultBufferMemoryLimit = 512 * 1024 * 1024

var (
	ErrBufferFull   = errors.New("write buffer memory limit reached")
	ErrDuplicateDoc = errors.New("duplicate document ID in buffer")
)

// WriteBuffer accumulates an in-memory inverted index: term → doc ids,
// plus the forward records of every added document. It is safe for
// concurrent use by indexing workers.
type WriteBuffer struct {
	mu       sync.Mutex
	postings map[string][]uint32
	docs     []index.DocRecord
	seen     map[uint32]struct{}

	memoryUsed  atomic.Int64
	MemoryLimit int64
}

// NewWriteBuffer creates a new empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		postings:    make(map[string][]uint32),
		seen:        make(map[uint32]struct{}),
		MemoryLimit: DefaultBufferMemoryLimit,
	}
}

// AddDocument records doc and one posting for each distinct term.
// Terms must already be truncated to index.MaxTermLen.
func (b *WriteBuffer) AddDocument(doc index.DocRecord, terms []string) error {
	if b.IsFull() {
		return ErrBufferFull
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.seen[doc.ID]; dup {
		return ErrDuplicateDoc
	}
	b.seen[doc.ID] = struct{}{}
	b.docs = append(b.docs, doc)

	var added int64
	for _, t := range terms {
		pl, ok := b.postings[t]
		if !ok {
			added += int64(len(t)) + 48
		}
		b.postings[t] = append(pl, doc.ID)
		added += 4
	}
	b.memoryUsed.Add(added + index.DocRecordSize)
	return nil
}

// MemoryUsed returns the approximate memory used by the buffer.
func (b *WriteBuffer) MemoryUsed() int64 {
	return b.memoryUsed.Load()
}

// IsFull returns true if the buffer has reached its memory limit.
func (b *WriteBuffer) IsFull() bool {
	return b.MemoryLimit > 0 && b.memoryUsed.Load() >= b.MemoryLimit
}

// DocCount returns the number of documents added.
func (b *WriteBuffer) DocCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.docs)
}

// TermCount returns the number of distinct terms.
func (b *WriteBuffer) TermCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.postings)
}

// Terms returns the postings sorted by term bytes, each with ascending
// doc ids. Workers add documents in any order, so ids are sorted here.
func (b *WriteBuffer) Terms() []index.TermPostings {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]index.TermPostings, 0, len(b.postings))
	for term, ids := range b.postings {
		ids = slices.Clone(ids)
		slices.Sort(ids)
		out = append(out, index.TermPostings{Term: term, DocIDs: slices.Compact(ids)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// Docs returns a copy of the forward records in insertion order.
func (b *WriteBuffer) Docs() []index.DocRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.docs)
}

// Reset clears the buffer for reuse.
func (b *WriteBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.postings = make(map[string][]uint32)
	b.seen = make(map[uint32]struct{})
	b.docs = nil
	b.memoryUsed.Store(0)
}
