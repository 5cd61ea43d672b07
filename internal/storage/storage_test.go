package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicFile_Commit(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "tmp")
	final := filepath.Join(dir, "postings.bin")

	af, err := CreateAtomic(tmp, final)
	require.NoError(t, err)
	_, err = af.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = af.Write([]byte("world"))
	require.NoError(t, err)

	assert.NoFileExists(t, final)
	assert.Equal(t, int64(11), af.Size())
	assert.Equal(t, ComputeChecksum([]byte("hello world")), af.Checksum())

	require.NoError(t, af.Commit())
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, af.Commit(), ErrFileClosed)
	_, err = af.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrFileClosed)
}

func TestAtomicFile_Abort(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "tmp")
	final := filepath.Join(dir, "out.bin")

	af, err := CreateAtomic(tmp, final)
	require.NoError(t, err)
	_, err = af.Write([]byte("partial"))
	require.NoError(t, err)
	af.Abort()
	af.Abort()

	assert.NoFileExists(t, final)
	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(final, []byte("old"), FilePerm))

	require.NoError(t, WriteFileAtomic(filepath.Join(dir, "tmp"), final, []byte("new")))
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestVerifyFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("verify me"), FilePerm))

	assert.NoError(t, VerifyFileChecksum(path, ComputeChecksum([]byte("verify me"))))
	assert.ErrorIs(t, VerifyFileChecksum(path, ComputeChecksum([]byte("other"))), ErrChecksumMismatch)

	_, err := ComputeFileChecksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestParseChecksum(t *testing.T) {
	hexStr, err := ParseChecksum(ComputeChecksum([]byte("x")))
	require.NoError(t, err)
	assert.Len(t, hexStr, 64)

	for _, bad := range []Checksum{
		"abcdef",
		ChecksumPrefix + "tooshort",
		Checksum(ChecksumPrefix + string(make([]byte, 64))),
	} {
		_, err := ParseChecksum(bad)
		assert.ErrorIs(t, err, ErrInvalidChecksum, "%q", bad)
	}
}

func TestRemoveDirContents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, FilePerm))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), DirPerm))

	removed, err := RemoveDirContents(dir)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.DirExists(t, dir)

	removed, err = RemoveDirContents(filepath.Join(dir, "missing"))
	assert.NoError(t, err)
	assert.Nil(t, removed)
}
