// Package corpus reads a crawled document collection laid out as
//
//	<dir>/meta/metadata.jsonl   one JSON object per document
//	<dir>/text/<id>.txt         extracted plain text
package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxLineSize bounds a single metadata line.
const maxLineSize = 1 << 20

var (
	ErrNoMetadata = errors.New("corpus metadata not found")
	ErrNoText     = errors.New("document text not found")
)

// Document is one metadata record. ID is the numeric document id.
type Document struct {
	ID        uint32 `json:"-"`
	RawID     any    `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	RawSize   int64  `json:"raw_size,omitempty"`
	TextSize  int64  `json:"text_size,omitempty"`
	WordCount int64  `json:"word_count,omitempty"`
}

// DisplayTitle returns Title, or a generated one when the record has none.
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return fmt.Sprintf("Article %d", d.ID)
}

// Corpus is an opened corpus directory.
type Corpus struct {
	Root   string
	logger *slog.Logger
}

// Open checks that dir has the expected layout.
func Open(dir string, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Corpus{Root: dir, logger: logger}
	if _, err := os.Stat(c.MetadataPath()); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoMetadata, c.MetadataPath())
		}
		return nil, fmt.Errorf("stat metadata: %w", err)
	}
	return c, nil
}

// MetadataPath returns the path of metadata.jsonl.
func (c *Corpus) MetadataPath() string {
	return filepath.Join(c.Root, "meta", "metadata.jsonl")
}

// TextPath returns the path of a document's text file.
func (c *Corpus) TextPath(id uint32) string {
	return filepath.Join(c.Root, "text", strconv.FormatUint(uint64(id), 10)+".txt")
}

// Documents reads every usable metadata record. Malformed lines and
// records whose id is not a non-negative integer are skipped. A later
// record with an id seen before replaces the earlier one.
func (c *Corpus) Documents(ctx context.Context) ([]Document, error) {
	f, err := os.Open(c.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	return c.readDocuments(ctx, f)
}

func (c *Corpus) readDocuments(ctx context.Context, r io.Reader) ([]Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var docs []Document
	seen := make(map[uint32]int)
	line := 0
	for sc.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var d Document
		if err := json.Unmarshal([]byte(text), &d); err != nil {
			c.logger.Debug("skipping malformed metadata line", "line", line, "error", err)
			continue
		}
		id, ok := parseID(d.RawID)
		if !ok {
			c.logger.Debug("skipping record with non-numeric id", "line", line, "id", d.RawID)
			continue
		}
		d.ID = id
		if i, dup := seen[id]; dup {
			docs[i] = d
			continue
		}
		seen[id] = len(docs)
		docs = append(docs, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return docs, nil
}

// Text opens the text of a document.
func (c *Corpus) Text(id uint32) (io.ReadCloser, error) {
	f, err := os.Open(c.TextPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %d", ErrNoText, id)
		}
		return nil, fmt.Errorf("open text %d: %w", id, err)
	}
	return f, nil
}

// parseID accepts JSON numbers and digit-only strings that fit in uint32.
func parseID(v any) (uint32, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		if x < 0 || x != float64(uint32(x)) {
			return 0, false
		}
		return uint32(x), true
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
