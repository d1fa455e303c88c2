package rbymap_test

import (
	"bytes"
	"errors"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/rbymap"
	"github.com/bodgit/rbymap/tilemap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func discard() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func writeFile(t *testing.T, file string, b []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, ioutil.WriteFile(file, b, 0644))
	return file
}

func TestAssemble(t *testing.T) {
	result, err := rbymap.Assemble([]byte{1, 0}, sequence(32), 2, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, []byte{0x10, 0x11, 0x12, 0x13, 0x00, 0x01, 0x02, 0x03}, result.Grid.Row(0))
	assert.Equal(t, []byte{0x1c, 0x1d, 0x1e, 0x1f, 0x0c, 0x0d, 0x0e, 0x0f}, result.Grid.Row(3))
}

func TestAssembleTruncatedBlockset(t *testing.T) {
	// 31 bytes is one block plus 15 ignored bytes, so index 1 is out of range
	result, err := rbymap.Assemble([]byte{0, 1}, sequence(31), 2, 1)
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, tilemap.BlockOutOfRange, result.Diagnostics[0].Kind)
	assert.Equal(t, 1, result.Diagnostics[0].Actual)
}

func TestAssembleInvalidDimensions(t *testing.T) {
	_, err := rbymap.Assemble(nil, nil, 0, 0)
	assert.True(t, errors.Is(err, tilemap.ErrInvalidDimensions), "%v", err)
}

func TestAssembleFiles(t *testing.T) {
	dir := t.TempDir()
	bst := writeFile(t, filepath.Join(dir, "test.bst"), sequence(32))
	blkFile := writeFile(t, filepath.Join(dir, "test.blk"), []byte{1, 5, 0})

	buf := new(bytes.Buffer)
	m := rbymap.New(nil, log.New(buf, "", 0))

	grid, err := m.AssembleFiles(blkFile, bst, 2, 2)
	require.NoError(t, err)

	want := []byte{0x10, 0x11, 0x12, 0x13, 0x00, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(want, grid.Row(0)); diff != "" {
		t.Errorf("row 0 mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x03, 0x00, 0x00, 0x00, 0x00}, grid.Row(4))

	assert.Contains(t, buf.String(), "block map contains 3 bytes but expected 4")
	assert.Contains(t, buf.String(), "block index 5 at (1, 0) is out of range")
}

func TestAssembleFilesStrict(t *testing.T) {
	dir := t.TempDir()
	bst := writeFile(t, filepath.Join(dir, "test.bst"), sequence(32))
	blkFile := writeFile(t, filepath.Join(dir, "test.blk"), []byte{1})

	m := rbymap.New(nil, discard())
	_, err := m.AssembleFiles(blkFile, bst, 2, 2, tilemap.Strict())
	assert.True(t, errors.Is(err, tilemap.ErrMissingEntry), "%v", err)
}

func TestAssembleFilesMissing(t *testing.T) {
	dir := t.TempDir()
	bst := writeFile(t, filepath.Join(dir, "test.bst"), sequence(16))

	m := rbymap.New(nil, discard())
	_, err := m.AssembleFiles(filepath.Join(dir, "missing.blk"), bst, 1, 1)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "%v", err)

	_, err = m.AssembleFiles(bst, filepath.Join(dir, "missing.bst"), 1, 1)
	require.Error(t, err)
}

func TestAssembleMapWithoutCatalogue(t *testing.T) {
	m := rbymap.New(nil, discard())
	_, err := m.AssembleMap("PalletTown", "a.blk", "b.bst")
	assert.True(t, errors.Is(err, rbymap.ErrUnknownMap), "%v", err)
}

func TestReadFile(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "data"), []byte("abc"))
	b, err := rbymap.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
}
