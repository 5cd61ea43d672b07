package index

import (
	"fmt"
	"path/filepath"

	"GoStem/internal/storage"
)

// File names inside an index directory.
const (
	DictionaryFile = "dictionary.bin"
	PostingsFile   = "postings.bin"
	ForwardFile    = "forward.bin"
	ManifestFile   = "manifest.json"
)

// IndexDir represents the on-disk directory layout for a single index.
// All path methods are pure functions with no I/O side effects.
type IndexDir struct {
	Root string
}

// NewIndexDir creates an IndexDir for the given root path.
func NewIndexDir(root string) *IndexDir {
	return &IndexDir{Root: root}
}

func (d *IndexDir) DictionaryPath() string { return filepath.Join(d.Root, DictionaryFile) }
func (d *IndexDir) PostingsPath() string   { return filepath.Join(d.Root, PostingsFile) }
func (d *IndexDir) ForwardPath() string    { return filepath.Join(d.Root, ForwardFile) }
func (d *IndexDir) ManifestPath() string   { return filepath.Join(d.Root, ManifestFile) }

// TmpDir returns the path to the tmp/ directory files are built in.
func (d *IndexDir) TmpDir() string {
	return filepath.Join(d.Root, "tmp")
}

// Path returns the full path of one of the data files.
func (d *IndexDir) Path(name string) string {
	return filepath.Join(d.Root, name)
}

// EnsureDirectories creates the root and tmp/ directories.
func (d *IndexDir) EnsureDirectories() error {
	for _, dir := range []string{d.Root, d.TmpDir()} {
		if err := storage.EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// DataFileNames returns the data files listed in every manifest.
func DataFileNames() []string {
	return []string{DictionaryFile, PostingsFile, ForwardFile}
}
