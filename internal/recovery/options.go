package recovery

import "log/slog"

// Options configures Recover.
type Options struct {
	// VerifyChecksums hashes every data file against the manifest.
	// Without it only file sizes are checked.
	VerifyChecksums bool

	// Repair removes leftovers of interrupted builds: the contents of tmp/
	// and stray *.bin and *.tmp files the manifest does not list. It must
	// not run while a build is writing to the same directory.
	Repair bool

	// Logger for recovery events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns a read-only size check.
func DefaultOptions() Options {
	return Options{}
}
