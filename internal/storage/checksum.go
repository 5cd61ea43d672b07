package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ChecksumPrefix is the prefix for SHA-256 checksums.
const ChecksumPrefix = "sha256:"

// Checksum is a hex-encoded SHA-256 hash with the "sha256:" prefix.
type Checksum string

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidChecksum  = errors.New("invalid checksum format")
)

// ComputeChecksum computes SHA-256 over a byte slice.
func ComputeChecksum(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return FormatChecksum(sum[:])
}

// ComputeFileChecksum streams a file through SHA-256.
func ComputeFileChecksum(path string) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	return FormatChecksum(h.Sum(nil)), nil
}

// VerifyFileChecksum verifies that a file's SHA-256 matches expected.
func VerifyFileChecksum(path string, expected Checksum) error {
	actual, err := ComputeFileChecksum(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("%w: file %s expected %s got %s", ErrChecksumMismatch, path, expected, actual)
	}
	return nil
}

// FormatChecksum formats raw hash bytes into a Checksum.
func FormatChecksum(sum []byte) Checksum {
	return Checksum(ChecksumPrefix + hex.EncodeToString(sum))
}

// ParseChecksum strips the prefix and returns the raw hex string.
func ParseChecksum(c Checksum) (string, error) {
	s := string(c)
	if !strings.HasPrefix(s, ChecksumPrefix) {
		return "", fmt.Errorf("%w: missing prefix %q", ErrInvalidChecksum, ChecksumPrefix)
	}
	hexStr := s[len(ChecksumPrefix):]
	if len(hexStr) != 64 {
		return "", fmt.Errorf("%w: expected 64 hex chars, got %d", ErrInvalidChecksum, len(hexStr))
	}
	if _, err := hex.DecodeString(hexStr); err != nil {
		return "", fmt.Errorf("%w: invalid hex: %v", ErrInvalidChecksum, err)
	}
	return hexStr, nil
}

// hashingWriter counts and hashes everything written through it.
type hashingWriter struct {
	w io.Writer
	h hash.Hash
	n int64
}

func newHashingWriter(w io.Writer) *hashingWriter {
	return &hashingWriter{w: w, h: sha256.New()}
}

func (hw *hashingWriter) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	hw.h.Write(p[:n])
	hw.n += int64(n)
	return n, err
}

func (hw *hashingWriter) Checksum() Checksum { return FormatChecksum(hw.h.Sum(nil)) }
