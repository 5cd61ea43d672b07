// Package recovery inspects an index directory before it is opened and
// cleans up after builds that were interrupted.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"GoStem/internal/index"
	"GoStem/internal/storage"
)

// ErrNoIndex is returned when the index directory does not exist.
var ErrNoIndex = errors.New("index directory does not exist")

// Result is the outcome of Recover.
type Result struct {
	// Manifest is the verified manifest, nil when it is missing or corrupt.
	Manifest *index.Manifest

	// Problem describes why the index cannot be opened. Empty when healthy.
	Problem string

	// CorruptFiles lists data files whose size or checksum is wrong.
	CorruptFiles []string

	// TmpFilesRemoved lists paths removed from tmp/.
	TmpFilesRemoved []string

	// Orphans lists stray files not referenced by the manifest. They are
	// removed only with Options.Repair.
	Orphans []string

	// OrphansRemoved is true when Orphans were deleted.
	OrphansRemoved bool
}

// Healthy reports whether the index can be opened.
func (r *Result) Healthy() bool { return r.Problem == "" }

// Recover checks the index at dir:
//
//  1. the directory exists
//  2. tmp/ is cleaned (Repair only)
//  3. the manifest is present, self-consistent and of a known version
//  4. every data file has the recorded size, and checksum when asked
//  5. stray files are reported, and removed with Repair
//
// A broken index is reported through Result.Problem rather than an error,
// so callers can print the full report. Errors are for I/O failures.
func Recover(dir *index.IndexDir, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Step 1: the directory must exist.
	info, err := os.Stat(dir.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoIndex, dir.Root)
		}
		return nil, fmt.Errorf("recovery: stat %s: %w", dir.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("recovery: %s is not a directory", dir.Root)
	}

	result := &Result{}

	// Step 2: clean tmp/.
	if opts.Repair {
		removed, err := storage.RemoveDirContents(dir.TmpDir())
		if err != nil {
			logger.Warn("recovery: non-fatal error cleaning tmp", "error", err)
		}
		result.TmpFilesRemoved = removed
	}

	// Step 3: manifest.
	manifest, err := index.ReadManifest(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Problem = "manifest missing (build interrupted or never run)"
	case err != nil:
		result.Problem = err.Error()
	default:
		result.Manifest = manifest
	}

	// Step 4: data files.
	if manifest != nil {
		result.CorruptFiles = verifyFiles(dir, manifest, opts.VerifyChecksums, logger)
		if len(result.CorruptFiles) > 0 {
			result.Problem = fmt.Sprintf("corrupt data files: %s", strings.Join(result.CorruptFiles, ", "))
		}
	}

	// Step 5: orphans.
	orphans, err := findOrphans(dir)
	if err != nil {
		logger.Warn("recovery: non-fatal error listing index directory", "error", err)
	}
	result.Orphans = orphans
	if opts.Repair && len(orphans) > 0 {
		for _, name := range orphans {
			if err := os.Remove(dir.Path(name)); err != nil {
				logger.Warn("recovery: failed to remove orphan", "file", name, "error", err)
			}
		}
		result.OrphansRemoved = true
	}

	if result.Healthy() {
		logger.Debug("recovery complete",
			"dir", dir.Root,
			"build_id", manifest.BuildID,
			"tmp_removed", len(result.TmpFilesRemoved),
			"orphans", len(result.Orphans),
		)
	} else {
		logger.Warn("index needs rebuilding", "dir", dir.Root, "problem", result.Problem)
	}
	return result, nil
}

func verifyFiles(dir *index.IndexDir, m *index.Manifest, checksums bool, logger *slog.Logger) []string {
	var corrupt []string
	for _, name := range index.DataFileNames() {
		meta, ok := m.Files[name]
		if !ok {
			logger.Error("recovery: file missing from manifest", "file", name)
			corrupt = append(corrupt, name)
			continue
		}
		path := dir.Path(name)
		info, err := os.Stat(path)
		if err != nil {
			logger.Error("recovery: data file unreadable", "file", name, "error", err)
			corrupt = append(corrupt, name)
			continue
		}
		if info.Size() != meta.Size {
			logger.Error("recovery: size mismatch", "file", name, "want", meta.Size, "got", info.Size())
			corrupt = append(corrupt, name)
			continue
		}
		if checksums {
			if err := storage.VerifyFileChecksum(path, meta.Checksum); err != nil {
				logger.Error("recovery: checksum mismatch", "file", name, "error", err)
				corrupt = append(corrupt, name)
			}
		}
	}
	return corrupt
}

// findOrphans returns *.bin and *.tmp files in the root that are not data
// files of the current layout.
func findOrphans(dir *index.IndexDir) ([]string, error) {
	entries, err := os.ReadDir(dir.Root)
	if err != nil {
		return nil, err
	}
	known := index.DataFileNames()
	var orphans []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if (ext == ".bin" || ext == ".tmp") && !slices.Contains(known, name) {
			orphans = append(orphans, name)
		}
	}
	return orphans, nil
}
