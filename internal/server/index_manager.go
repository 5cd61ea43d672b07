package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"GoStem/internal/index"
	"GoStem/internal/recovery"
	"GoStem/internal/search"
	"GoStem/internal/snapshot"
)

var ErrIndexNotLoaded = errors.New("index not loaded")

// IndexManager owns the Searcher for one index directory and swaps it
// when the index is rebuilt. Requests run inside Use against a pinned
// generation; a replaced Searcher is closed after its last request.
type IndexManager struct {
	root      string
	opts      search.Options
	logger    *slog.Logger
	snapshots *snapshot.Manager[*search.Searcher]

	mu       sync.Mutex // protects loadedAt and lastErr
	loadedAt time.Time
	lastErr  error
}

// NewIndexManager creates a manager for root. Nothing is opened until Load.
func NewIndexManager(root string, opts search.Options, logger *slog.Logger) *IndexManager {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger
	return &IndexManager{
		root:      root,
		opts:      opts,
		logger:    logger,
		snapshots: snapshot.NewManager[*search.Searcher](logger),
	}
}

// Load recovers and opens the index, replacing any open one. On failure
// the previous searcher stays in service.
func (m *IndexManager) Load() error {
	start := time.Now()
	s, err := m.open()
	if err == nil {
		_, err = m.snapshots.Publish(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastErr = err
		m.logger.Error("failed to load index", "dir", m.root, "error", err)
		return fmt.Errorf("load index: %w", err)
	}
	m.loadedAt, m.lastErr = time.Now(), nil

	st := s.Stats()
	m.logger.Info("index loaded",
		"dir", m.root,
		"generation", m.snapshots.CurrentGeneration(),
		"build_id", st.BuildID,
		"analyzer", st.Analyzer,
		"docs", st.Docs,
		"terms", st.Terms,
		"elapsed", time.Since(start),
	)
	return nil
}

func (m *IndexManager) open() (*search.Searcher, error) {
	opts := recovery.DefaultOptions()
	opts.VerifyChecksums = m.opts.Verify
	opts.Logger = m.logger
	res, err := recovery.Recover(index.NewIndexDir(m.root), opts)
	if err != nil {
		return nil, err
	}
	if !res.Healthy() {
		return nil, fmt.Errorf("%w: %s", index.ErrCorrupt, res.Problem)
	}
	return search.Open(m.root, m.opts)
}

// Use runs fn with the current searcher pinned.
func (m *IndexManager) Use(fn func(*search.Searcher) error) error {
	snap, err := m.snapshots.Acquire()
	if err != nil {
		m.mu.Lock()
		lastErr := m.lastErr
		m.mu.Unlock()
		if lastErr != nil {
			return fmt.Errorf("%w: %w", ErrIndexNotLoaded, lastErr)
		}
		return ErrIndexNotLoaded
	}
	defer snap.Release()
	return fn(snap.Value())
}

// Info describes the loaded index.
type Info struct {
	Dir        string      `json:"dir"`
	Loaded     bool        `json:"loaded"`
	Generation uint64      `json:"generation"`
	LoadedAt   time.Time   `json:"loaded_at,omitempty"`
	Stats      index.Stats `json:"stats"`
	Error      string      `json:"error,omitempty"`
}

// Info returns the state of the managed index.
func (m *IndexManager) Info() Info {
	info := Info{Dir: m.root}
	if snap, err := m.snapshots.Acquire(); err == nil {
		info.Loaded = true
		info.Generation = snap.Generation
		info.Stats = snap.Value().Stats()
		snap.Release()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info.LoadedAt = m.loadedAt
	if m.lastErr != nil {
		info.Error = m.lastErr.Error()
	}
	return info
}

// Close retires the current searcher. It is closed once in-flight
// requests finish.
func (m *IndexManager) Close() error {
	return m.snapshots.Close()
}
