package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"

	"GoStem/internal/storage"
)

var (
	ErrCorrupt    = errors.New("index file corrupt")
	ErrDocMissing = errors.New("document not found")
)

// Stats summarises an open index.
type Stats struct {
	Analyzer  string `json:"analyzer"`
	BuildID   string `json:"build_id"`
	Docs      int    `json:"docs"`
	Terms     int    `json:"terms"`
	Postings  uint64 `json:"postings"`
	SizeBytes int64  `json:"size_bytes"`
}

// Reader serves lookups from the data files of one committed index. Files
// are accessed with ReadAt only, so a Reader is safe for concurrent use.
type Reader struct {
	dir      *IndexDir
	manifest *Manifest

	dict     *os.File
	postings *os.File
	forward  *os.File

	numTerms int
	numDocs  int
	postSize int64
}

// Open opens the index at root. The manifest checksum is always verified;
// with verify set the data file checksums are checked too.
func Open(root string, verify bool) (*Reader, error) {
	dir := NewIndexDir(root)
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range DataFileNames() {
		meta, ok := m.Files[name]
		if !ok {
			return nil, fmt.Errorf("%w: manifest does not list %s", ErrCorrupt, name)
		}
		info, err := os.Stat(dir.Path(name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		if info.Size() != meta.Size {
			return nil, fmt.Errorf("%w: %s is %d bytes, manifest says %d", ErrCorrupt, name, info.Size(), meta.Size)
		}
		if verify {
			if err := storage.VerifyFileChecksum(dir.Path(name), meta.Checksum); err != nil {
				return nil, err
			}
		}
	}

	dictSize, fwdSize := m.Files[DictionaryFile].Size, m.Files[ForwardFile].Size
	if dictSize%DictRecordSize != 0 || fwdSize%DocRecordSize != 0 || m.Files[PostingsFile].Size%PostingSize != 0 {
		return nil, fmt.Errorf("%w: file size is not a whole number of records", ErrCorrupt)
	}

	r := &Reader{
		dir:      dir,
		manifest: m,
		numTerms: int(dictSize / DictRecordSize),
		numDocs:  int(fwdSize / DocRecordSize),
		postSize: m.Files[PostingsFile].Size,
	}
	files := []struct {
		dst  **os.File
		path string
	}{
		{&r.dict, dir.DictionaryPath()},
		{&r.postings, dir.PostingsPath()},
		{&r.forward, dir.ForwardPath()},
	}
	for _, f := range files {
		fh, err := os.Open(f.path)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open %s: %w", f.path, err)
		}
		*f.dst = fh
	}
	return r, nil
}

// Close releases the open files.
func (r *Reader) Close() error {
	var first error
	for _, f := range []*os.File{r.dict, r.postings, r.forward} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Manifest returns the manifest the reader was opened with.
func (r *Reader) Manifest() *Manifest { return r.manifest }

// NumTerms returns the number of dictionary records.
func (r *Reader) NumTerms() int { return r.numTerms }

// NumDocs returns the number of forward records.
func (r *Reader) NumDocs() int { return r.numDocs }

// Stats returns counts and sizes for the index.
func (r *Reader) Stats() Stats {
	return Stats{
		Analyzer:  r.manifest.Analyzer,
		BuildID:   r.manifest.BuildID,
		Docs:      r.numDocs,
		Terms:     r.numTerms,
		Postings:  r.manifest.TotalPostings,
		SizeBytes: r.manifest.TotalSize(),
	}
}

// Entry returns the i-th dictionary record.
func (r *Reader) Entry(i int) (DictEntry, error) {
	var buf [DictRecordSize]byte
	if err := r.readDictRecord(i, buf[:]); err != nil {
		return DictEntry{}, err
	}
	return decodeDictEntry(buf[:]), nil
}

func (r *Reader) readDictRecord(i int, buf []byte) error {
	if _, err := r.dict.ReadAt(buf, int64(i)*DictRecordSize); err != nil {
		return fmt.Errorf("read dictionary record %d: %w", i, err)
	}
	return nil
}

// search returns the index of the first record whose term is >= key.
func (r *Reader) search(key []byte) (int, error) {
	var buf [DictRecordSize]byte
	var readErr error
	i := sort.Search(r.numTerms, func(i int) bool {
		if readErr != nil {
			return true
		}
		if err := r.readDictRecord(i, buf[:]); err != nil {
			readErr = err
			return true
		}
		return bytes.Compare(termKey(buf[:]), key) >= 0
	})
	return i, readErr
}

// Lookup finds term in the dictionary. Terms longer than MaxTermLen are
// truncated the same way the writer truncates them.
func (r *Reader) Lookup(term string) (DictEntry, bool, error) {
	key := TruncateTerm(term)
	if key == "" {
		return DictEntry{}, false, nil
	}
	i, err := r.search([]byte(key))
	if err != nil || i >= r.numTerms {
		return DictEntry{}, false, err
	}
	e, err := r.Entry(i)
	if err != nil {
		return DictEntry{}, false, err
	}
	return e, e.Term == key, nil
}

// PrefixTerms returns up to limit dictionary records whose term starts
// with prefix, in term order. limit <= 0 means no limit. The boolean
// reports whether more matching terms were left out.
func (r *Reader) PrefixTerms(prefix string, limit int) ([]DictEntry, bool, error) {
	key := []byte(TruncateTerm(prefix))
	i, err := r.search(key)
	if err != nil {
		return nil, false, err
	}
	var out []DictEntry
	for ; i < r.numTerms; i++ {
		e, err := r.Entry(i)
		if err != nil {
			return nil, false, err
		}
		if !bytes.HasPrefix([]byte(e.Term), key) {
			break
		}
		if limit > 0 && len(out) == limit {
			return out, true, nil
		}
		out = append(out, e)
	}
	return out, false, nil
}

// Postings reads the doc ids of a dictionary record.
func (r *Reader) Postings(e DictEntry) ([]uint32, error) {
	size := int64(e.DocFreq) * PostingSize
	if int64(e.Offset)+size > r.postSize {
		return nil, fmt.Errorf("%w: postings of %q out of range", ErrCorrupt, e.Term)
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	if _, err := r.postings.ReadAt(buf, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("read postings of %q: %w", e.Term, err)
	}
	ids := make([]uint32, e.DocFreq)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(buf[i*PostingSize:])
	}
	return ids, nil
}

func (r *Reader) readDoc(i int) (DocRecord, error) {
	var buf [DocRecordSize]byte
	if _, err := r.forward.ReadAt(buf[:], int64(i)*DocRecordSize); err != nil {
		return DocRecord{}, fmt.Errorf("read forward record %d: %w", i, err)
	}
	return decodeDoc(buf[:]), nil
}

// Doc returns the forward record for id.
func (r *Reader) Doc(id uint32) (DocRecord, error) {
	var readErr error
	i := sort.Search(r.numDocs, func(i int) bool {
		if readErr != nil {
			return true
		}
		var buf [4]byte
		if _, err := r.forward.ReadAt(buf[:], int64(i)*DocRecordSize); err != nil {
			readErr = fmt.Errorf("read forward record %d: %w", i, err)
			return true
		}
		return binary.LittleEndian.Uint32(buf[:]) >= id
	})
	if readErr != nil {
		return DocRecord{}, readErr
	}
	if i >= r.numDocs {
		return DocRecord{}, fmt.Errorf("%w: %d", ErrDocMissing, id)
	}
	d, err := r.readDoc(i)
	if err != nil {
		return DocRecord{}, err
	}
	if d.ID != id {
		return DocRecord{}, fmt.Errorf("%w: %d", ErrDocMissing, id)
	}
	return d, nil
}

// AllDocIDs returns every document id in ascending order.
func (r *Reader) AllDocIDs() ([]uint32, error) {
	buf := make([]byte, int64(r.numDocs)*DocRecordSize)
	if len(buf) == 0 {
		return nil, nil
	}
	if _, err := r.forward.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read forward index: %w", err)
	}
	ids := make([]uint32, r.numDocs)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(buf[i*DocRecordSize:])
	}
	return ids, nil
}
