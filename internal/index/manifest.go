package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"GoStem/internal/storage"
)

// FormatVersion is the on-disk layout version written to every manifest.
const FormatVersion = 1

var (
	ErrManifestCorrupt = errors.New("manifest checksum verification failed")
	ErrFormatVersion   = errors.New("unsupported index format version")
)

// Manifest describes a committed index: how it was built and the size and
// checksum of each data file.
type Manifest struct {
	FormatVersion uint32              `json:"format_version"`
	BuildID       string              `json:"build_id"`
	Timestamp     time.Time           `json:"timestamp"`
	Analyzer      string              `json:"analyzer"`
	TotalDocs     uint64              `json:"total_docs"`
	TotalTerms    uint64              `json:"total_terms"`
	TotalPostings uint64              `json:"total_postings"`
	Files         map[string]FileMeta `json:"files"`
	Checksum      storage.Checksum    `json:"checksum"`
}

// FileMeta describes a single data file.
type FileMeta struct {
	Size     int64            `json:"size"`
	Checksum storage.Checksum `json:"checksum"`
}

// TotalSize returns the summed size of all data files.
func (m *Manifest) TotalSize() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.Size
	}
	return n
}

// MarshalManifest serializes a manifest to JSON and computes its checksum.
// The checksum is computed over the JSON with the checksum field set to empty.
func MarshalManifest(m *Manifest) ([]byte, error) {
	checksum, err := computeManifestChecksum(m)
	if err != nil {
		return nil, fmt.Errorf("compute manifest checksum: %w", err)
	}
	m.Checksum = checksum

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// UnmarshalManifest deserializes a manifest from JSON and verifies its
// checksum and format version.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	saved := m.Checksum
	computed, err := computeManifestChecksum(&m)
	if err != nil {
		return nil, fmt.Errorf("compute manifest checksum for verification: %w", err)
	}
	if computed != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrManifestCorrupt, saved, computed)
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrFormatVersion, m.FormatVersion)
	}
	return &m, nil
}

// ReadManifest loads and verifies the manifest of the index at dir.
func ReadManifest(dir *IndexDir) (*Manifest, error) {
	data, err := os.ReadFile(dir.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return UnmarshalManifest(data)
}

// computeManifestChecksum serializes m with an empty checksum field and
// hashes the result. encoding/json sorts map keys, so output is stable.
func computeManifestChecksum(m *Manifest) (storage.Checksum, error) {
	saved := m.Checksum
	m.Checksum = ""
	defer func() { m.Checksum = saved }()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}
	return storage.ComputeChecksum(data), nil
}
