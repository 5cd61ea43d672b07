package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644

	writeBufSize = 64 * 1024
)

var ErrFileClosed = errors.New("atomic file already committed or aborted")

// AtomicFile is written in a temporary directory and only appears at its
// final path after Commit. Size and Checksum cover every byte written.
type AtomicFile struct {
	final string
	tmp   *os.File
	buf   *bufio.Writer
	hw    *hashingWriter
	done  bool
}

// CreateAtomic starts a new file that will be renamed to finalPath.
// tmpDir must be on the same filesystem as finalPath.
func CreateAtomic(tmpDir, finalPath string) (*AtomicFile, error) {
	if err := EnsureDir(tmpDir); err != nil {
		return nil, fmt.Errorf("atomic create: %w", err)
	}
	f, err := os.CreateTemp(tmpDir, filepath.Base(finalPath)+".*")
	if err != nil {
		return nil, fmt.Errorf("atomic create temp in %s: %w", tmpDir, err)
	}
	af := &AtomicFile{final: finalPath, tmp: f}
	af.buf = bufio.NewWriterSize(f, writeBufSize)
	af.hw = newHashingWriter(af.buf)
	return af, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.done {
		return 0, ErrFileClosed
	}
	return a.hw.Write(p)
}

// Size returns the number of bytes written so far.
func (a *AtomicFile) Size() int64 { return a.hw.n }

// Checksum returns the SHA-256 of the bytes written so far.
func (a *AtomicFile) Checksum() Checksum { return a.hw.Checksum() }

// Commit flushes, fsyncs, renames the file into place and fsyncs the
// parent directory.
func (a *AtomicFile) Commit() error {
	if a.done {
		return ErrFileClosed
	}
	a.done = true
	tmpPath := a.tmp.Name()

	err := a.buf.Flush()
	if err == nil {
		err = a.tmp.Sync()
	}
	if cerr := a.tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("atomic commit %s: %w", a.final, err)
	}
	if err := os.Rename(tmpPath, a.final); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("atomic rename %s → %s: %w", tmpPath, a.final, err)
	}
	if err := FsyncDir(filepath.Dir(a.final)); err != nil {
		return fmt.Errorf("atomic commit fsync parent dir: %w", err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	a.done = true
	a.tmp.Close()
	os.Remove(a.tmp.Name())
}

// WriteFileAtomic writes data through an AtomicFile in one call.
func WriteFileAtomic(tmpDir, finalPath string, data []byte) error {
	af, err := CreateAtomic(tmpDir, finalPath)
	if err != nil {
		return err
	}
	if _, err := af.Write(data); err != nil {
		af.Abort()
		return fmt.Errorf("atomic write %s: %w", finalPath, err)
	}
	return af.Commit()
}

// FsyncDir opens the directory at path and calls fsync on it so that
// renamed entries are durable.
func FsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fsync dir open %s: %w", path, err)
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return fmt.Errorf("fsync dir sync %s: %w", path, err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("fsync dir close %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirPerm)
}

// RemoveDirContents removes all entries inside dir but keeps dir itself.
// It returns the removed paths for logging.
func RemoveDirContents(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var removed []string
	var firstErr error
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", p, err)
			}
			continue
		}
		removed = append(removed, p)
	}
	return removed, firstErr
}
