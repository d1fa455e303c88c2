package tilemap_test

import (
	"errors"
	"math"
	"testing"

	"github.com/bodgit/rbymap/blk"
	"github.com/bodgit/rbymap/blockset"
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

func TestAssembleSingleBlock(t *testing.T) {
	s := blockset.BlockSet{
		{
			{1, 2, 3, 4},
			{5, 6, 7, 8},
			{9, 10, 11, 12},
			{13, 14, 15, 16},
		},
	}

	result, err := tilemap.Assemble(blk.BlockMap{0}, s, tilemap.Dimensions{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)

	if diff := cmp.Diff(s[0].Rows(), result.Grid.Rows()); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleTwoBlocks(t *testing.T) {
	s := blockset.Decode(sequence(32))
	m := blk.Decode([]byte{1, 0})

	result, err := tilemap.Assemble(m, s, tilemap.Dimensions{Width: 2, Height: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)

	want := [][]byte{
		{0x10, 0x11, 0x12, 0x13, 0x00, 0x01, 0x02, 0x03},
		{0x14, 0x15, 0x16, 0x17, 0x04, 0x05, 0x06, 0x07},
		{0x18, 0x19, 0x1a, 0x1b, 0x08, 0x09, 0x0a, 0x0b},
		{0x1c, 0x1d, 0x1e, 0x1f, 0x0c, 0x0d, 0x0e, 0x0f},
	}
	if diff := cmp.Diff(want, result.Grid.Rows()); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 8, result.Grid.Width)
	assert.Equal(t, 4, result.Grid.Height)
	assert.Equal(t, byte(0x1b), result.Grid.At(3, 2))
}

func TestAssembleGridSize(t *testing.T) {
	s := blockset.Decode(sequence(16))
	d := tilemap.Dimensions{Width: 10, Height: 9}
	m := make(blk.BlockMap, d.Blocks())

	result, err := tilemap.Assemble(m, s, d)
	require.NoError(t, err)
	assert.Equal(t, 40, result.Grid.Width)
	assert.Equal(t, 36, result.Grid.Height)
	assert.Len(t, result.Grid.Tiles, 40*36)
	assert.Equal(t, byte(0x0f), result.Grid.At(39, 35))
}

func TestAssembleOutOfRange(t *testing.T) {
	s := blockset.Decode(sequence(32))
	m := blk.BlockMap{0, 7, 1, 2}

	result, err := tilemap.Assemble(m, s, tilemap.Dimensions{Width: 2, Height: 2})
	require.NoError(t, err)

	want := []tilemap.Diagnostic{
		{Kind: tilemap.BlockOutOfRange, X: 1, Y: 0, Index: 7, Actual: 2},
		{Kind: tilemap.BlockOutOfRange, X: 1, Y: 1, Index: 2, Actual: 2},
	}
	if diff := cmp.Diff(want, result.Diagnostics); diff != "" {
		t.Errorf("Diagnostics mismatch (-want +got):\n%s", diff)
	}

	for _, cell := range []struct{ bx, by int }{{1, 0}, {1, 1}} {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				assert.Zero(t, result.Grid.At(cell.bx*4+x, cell.by*4+y))
			}
		}
	}
	assert.Equal(t, byte(0x10), result.Grid.At(0, 4))
}

func TestAssembleEmptyBlockSet(t *testing.T) {
	result, err := tilemap.Assemble(blk.BlockMap{0, 0, 0}, nil, tilemap.Dimensions{Width: 3, Height: 1})
	require.NoError(t, err)
	assert.Len(t, result.Diagnostics, 3)
	assert.Equal(t, make([]byte, 12*4), result.Grid.Tiles)
}

func TestAssembleShortBlockMap(t *testing.T) {
	s := blockset.Decode(sequence(32))
	m := blk.BlockMap{1, 1, 1}

	result, err := tilemap.Assemble(m, s, tilemap.Dimensions{Width: 2, Height: 2})
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, tilemap.Diagnostic{Kind: tilemap.LengthMismatch, Expected: 4, Actual: 3}, result.Diagnostics[0])

	// The last cell has no entry and stays zero
	want := [][]byte{
		{0x10, 0x11, 0x12, 0x13, 0x00, 0x00, 0x00, 0x00},
		{0x14, 0x15, 0x16, 0x17, 0x00, 0x00, 0x00, 0x00},
		{0x18, 0x19, 0x1a, 0x1b, 0x00, 0x00, 0x00, 0x00},
		{0x1c, 0x1d, 0x1e, 0x1f, 0x00, 0x00, 0x00, 0x00},
	}
	if diff := cmp.Diff(want, result.Grid.Rows()[4:]); diff != "" {
		t.Errorf("bottom rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleShortBlockMapStrict(t *testing.T) {
	s := blockset.Decode(sequence(32))

	_, err := tilemap.Assemble(blk.BlockMap{1}, s, tilemap.Dimensions{Width: 2, Height: 1}, tilemap.Strict())
	require.Error(t, err)
	assert.True(t, errors.Is(err, tilemap.ErrMissingEntry), "%v", err)
}

func TestAssembleLongBlockMap(t *testing.T) {
	s := blockset.Decode(sequence(32))

	for _, opts := range [][]tilemap.Option{nil, {tilemap.Strict()}} {
		result, err := tilemap.Assemble(blk.BlockMap{0, 1, 1}, s, tilemap.Dimensions{Width: 2, Height: 1}, opts...)
		require.NoError(t, err)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, tilemap.LengthMismatch, result.Diagnostics[0].Kind)
		assert.Equal(t, []byte{0, 1, 2, 3, 0x10, 0x11, 0x12, 0x13}, result.Grid.Row(0))
	}
}

func TestAssembleInvalidDimensions(t *testing.T) {
	tables := []tilemap.Dimensions{
		{Width: 0, Height: 1},
		{Width: 1, Height: 0},
		{Width: -1, Height: 5},
		{Width: tilemap.MaxDimension + 1, Height: 1},
		{Width: 1, Height: tilemap.MaxDimension + 1},
		{Width: math.MaxInt32, Height: math.MaxInt32},
	}

	for _, d := range tables {
		t.Run(d.String(), func(t *testing.T) {
			_, err := tilemap.Assemble(blk.BlockMap{0}, nil, d)
			assert.True(t, errors.Is(err, tilemap.ErrInvalidDimensions), "%v", err)
		})
	}
}

func TestAssembleMaxDimensions(t *testing.T) {
	s := blockset.Decode(sequence(16))
	d := tilemap.Dimensions{Width: tilemap.MaxDimension, Height: tilemap.MaxDimension}

	result, err := tilemap.Assemble(make(blk.BlockMap, d.Blocks()), s, d)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	assert.Len(t, result.Grid.Tiles, tilemap.MaxDimension*4*tilemap.MaxDimension*4)
	assert.Equal(t, byte(0x0f), result.Grid.At(result.Grid.Width-1, result.Grid.Height-1))
}

func TestAssembleIdempotent(t *testing.T) {
	s := blockset.Decode(sequence(64))
	m := blk.BlockMap{3, 2, 9, 1, 0, 3}
	d := tilemap.Dimensions{Width: 3, Height: 2}

	first, err := tilemap.Assemble(m, s, d)
	require.NoError(t, err)
	second, err := tilemap.Assemble(m, s, d)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Assemble() mismatch (-first +second):\n%s", diff)
	}
}

func TestDiagnosticString(t *testing.T) {
	assert.Equal(t, "block map contains 3 bytes but expected 4", tilemap.Diagnostic{Kind: tilemap.LengthMismatch, Expected: 4, Actual: 3}.String())
	assert.Equal(t, "block index 7 at (1, 0) is out of range; blockset has 2 blocks", tilemap.Diagnostic{Kind: tilemap.BlockOutOfRange, X: 1, Index: 7, Actual: 2}.String())
}
