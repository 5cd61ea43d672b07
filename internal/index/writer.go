package index

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"GoStem/internal/storage"
)

var (
	ErrUnsortedTerms = errors.New("terms not in ascending byte order")
	ErrUnsortedIDs   = errors.New("posting ids not strictly ascending")
	ErrDuplicateDoc  = errors.New("duplicate document id")
	ErrNulTerm       = errors.New("term contains a NUL byte")
)

// TermPostings is one dictionary term with its sorted, unique doc ids.
type TermPostings struct {
	Term   string
	DocIDs []uint32
}

// Writer writes a complete index into a directory. Data files are built
// in tmp/ and renamed into place; the manifest is written last.
type Writer struct {
	dir    *IndexDir
	logger *slog.Logger
}

// NewWriter returns a Writer for the index at root.
func NewWriter(root string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: NewIndexDir(root), logger: logger}
}

// Write stores terms (ascending by term bytes, each at most MaxTermLen
// bytes) and docs (any order) and returns the committed manifest.
func (w *Writer) Write(ctx context.Context, analyzer string, terms []TermPostings, docs []DocRecord) (*Manifest, error) {
	start := time.Now()
	if err := w.dir.EnsureDirectories(); err != nil {
		return nil, err
	}
	m := &Manifest{
		FormatVersion: FormatVersion,
		BuildID:       uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Analyzer:      analyzer,
		TotalDocs:     uint64(len(docs)),
		TotalTerms:    uint64(len(terms)),
		Files:         make(map[string]FileMeta, 3),
	}

	postings, err := storage.CreateAtomic(w.dir.TmpDir(), w.dir.PostingsPath())
	if err != nil {
		return nil, err
	}
	defer postings.Abort()
	dict, err := storage.CreateAtomic(w.dir.TmpDir(), w.dir.DictionaryPath())
	if err != nil {
		return nil, err
	}
	defer dict.Abort()
	forward, err := storage.CreateAtomic(w.dir.TmpDir(), w.dir.ForwardPath())
	if err != nil {
		return nil, err
	}
	defer forward.Abort()

	n, err := writeTerms(ctx, dict, postings, terms)
	if err != nil {
		return nil, err
	}
	m.TotalPostings = n
	if err := writeDocs(forward, docs); err != nil {
		return nil, err
	}

	// Until the new manifest lands the directory has none, so a crash in
	// between is detected instead of pairing old metadata with new files.
	if err := os.Remove(w.dir.ManifestPath()); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove old manifest: %w", err)
	}
	for name, f := range map[string]*storage.AtomicFile{
		PostingsFile:   postings,
		DictionaryFile: dict,
		ForwardFile:    forward,
	} {
		m.Files[name] = FileMeta{Size: f.Size(), Checksum: f.Checksum()}
		if err := f.Commit(); err != nil {
			return nil, fmt.Errorf("commit %s: %w", name, err)
		}
	}

	data, err := MarshalManifest(m)
	if err != nil {
		return nil, err
	}
	if err := storage.WriteFileAtomic(w.dir.TmpDir(), w.dir.ManifestPath(), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	w.logger.Info("index written",
		"dir", w.dir.Root,
		"build_id", m.BuildID,
		"docs", m.TotalDocs,
		"terms", m.TotalTerms,
		"postings", m.TotalPostings,
		"bytes", m.TotalSize(),
		"elapsed", time.Since(start),
	)
	return m, nil
}

func writeTerms(ctx context.Context, dict, postings *storage.AtomicFile, terms []TermPostings) (uint64, error) {
	rec := make([]byte, DictRecordSize)
	var id [PostingSize]byte
	var total uint64
	var prev []byte
	for i, tp := range terms {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		key := []byte(tp.Term)
		if len(key) == 0 || len(key) > MaxTermLen {
			return 0, fmt.Errorf("term %q: length %d out of range", tp.Term, len(key))
		}
		if bytes.IndexByte(key, 0) >= 0 {
			return 0, fmt.Errorf("%w: %q", ErrNulTerm, tp.Term)
		}
		if i > 0 && bytes.Compare(prev, key) >= 0 {
			return 0, fmt.Errorf("%w: %q after %q", ErrUnsortedTerms, tp.Term, prev)
		}
		prev = key

		encodeDictEntry(rec, DictEntry{
			Term:    tp.Term,
			DocFreq: uint32(len(tp.DocIDs)),
			Offset:  uint64(postings.Size()),
		})
		if _, err := dict.Write(rec); err != nil {
			return 0, fmt.Errorf("write dictionary: %w", err)
		}
		for j, d := range tp.DocIDs {
			if j > 0 && tp.DocIDs[j-1] >= d {
				return 0, fmt.Errorf("%w: term %q", ErrUnsortedIDs, tp.Term)
			}
			binary.LittleEndian.PutUint32(id[:], d)
			if _, err := postings.Write(id[:]); err != nil {
				return 0, fmt.Errorf("write postings: %w", err)
			}
		}
		total += uint64(len(tp.DocIDs))
	}
	return total, nil
}

func writeDocs(forward *storage.AtomicFile, docs []DocRecord) error {
	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(a, b DocRecord) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	rec := make([]byte, DocRecordSize)
	for i, d := range sorted {
		if i > 0 && sorted[i-1].ID == d.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateDoc, d.ID)
		}
		encodeDoc(rec, d)
		if _, err := forward.Write(rec); err != nil {
			return fmt.Errorf("write forward index: %w", err)
		}
	}
	return nil
}
