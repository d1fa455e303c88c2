/*
Package tilemap assembles a map's block indices and its blockset into a single
grid of tile ids.

A map that is w blocks wide and h blocks high becomes a grid of 4*h rows by
4*w columns. Problems with the input data, such as a block index that is not
in the blockset, do not stop the assembly; they are returned as diagnostics
alongside the grid and the affected cells are left as zero.
*/
package tilemap

import (
	"errors"
	"fmt"

	"github.com/bodgit/rbymap/blk"
	"github.com/bodgit/rbymap/blockset"
)

var (
	// ErrInvalidDimensions is returned if the width or height is not between
	// 1 and MaxDimension
	ErrInvalidDimensions = errors.New("tilemap: invalid dimensions")
	// ErrMissingEntry is returned in strict mode when the block map is too
	// short for the dimensions
	ErrMissingEntry = errors.New("tilemap: block map entry missing")
)

// MaxDimension is the largest width or height, in blocks. Map headers store
// each as a single byte.
const MaxDimension = 0xff

// Dimensions is the size of a map measured in blocks.
type Dimensions struct {
	Width  int
	Height int
}

// Blocks returns the number of block map entries a map of this size needs.
func (d Dimensions) Blocks() int {
	return d.Width * d.Height
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func (d Dimensions) validate() error {
	if d.Width <= 0 || d.Height <= 0 || d.Width > MaxDimension || d.Height > MaxDimension {
		return fmt.Errorf("%w: %v", ErrInvalidDimensions, d)
	}
	return nil
}

// TileGrid is an assembled map. Tiles holds Height rows of Width tile ids.
type TileGrid struct {
	Width  int
	Height int
	Tiles  []byte
}

func newTileGrid(d Dimensions) *TileGrid {
	w, h := d.Width*blockset.Width, d.Height*blockset.Height
	return &TileGrid{
		Width:  w,
		Height: h,
		Tiles:  make([]byte, w*h),
	}
}

// At returns the tile id at column x, row y.
func (g *TileGrid) At(x, y int) byte {
	return g.Tiles[y*g.Width+x]
}

// Row returns row y. The returned slice shares storage with the grid.
func (g *TileGrid) Row(y int) []byte {
	return g.Tiles[y*g.Width : (y+1)*g.Width]
}

// Rows returns a copy of the grid as a slice of rows.
func (g *TileGrid) Rows() [][]byte {
	rows := make([][]byte, g.Height)
	for y := range rows {
		rows[y] = append([]byte(nil), g.Row(y)...)
	}
	return rows
}

func (g *TileGrid) put(bx, by int, b *blockset.Block) {
	for r := 0; r < blockset.Height; r++ {
		copy(g.Row(by*blockset.Height + r)[bx*blockset.Width:], b[r][:])
	}
}

// Kind classifies a Diagnostic.
type Kind int

const (
	// LengthMismatch means the block map does not have exactly one entry
	// per block
	LengthMismatch Kind = iota + 1
	// BlockOutOfRange means a block map entry refers to a block that is
	// not in the blockset
	BlockOutOfRange
)

// Diagnostic describes a recoverable problem found during assembly.
type Diagnostic struct {
	Kind Kind

	// Position of the block cell, set for BlockOutOfRange
	X, Y int
	// Offending block index, set for BlockOutOfRange
	Index int

	// Expected and actual counts; for LengthMismatch these are block map
	// entries, for BlockOutOfRange Actual is the blockset length
	Expected, Actual int
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case LengthMismatch:
		return fmt.Sprintf("block map contains %d bytes but expected %d", d.Actual, d.Expected)
	case BlockOutOfRange:
		return fmt.Sprintf("block index %d at (%d, %d) is out of range; blockset has %d blocks", d.Index, d.X, d.Y, d.Actual)
	default:
		return fmt.Sprintf("unknown diagnostic %d", d.Kind)
	}
}

// Result is the outcome of an assembly: the grid plus any diagnostics, in the
// order they were found.
type Result struct {
	Grid        *TileGrid
	Diagnostics []Diagnostic
}

type assembler struct {
	strict bool
}

// Option configures Assemble.
type Option func(*assembler)

// Strict makes Assemble fail with ErrMissingEntry if the block map is shorter
// than the dimensions require, instead of leaving the uncovered cells as zero.
func Strict() Option {
	return func(a *assembler) {
		a.strict = true
	}
}

// Assemble copies the block referenced by each entry of m into a new grid.
// Entries are read row by row, d.Width entries per row. Cells past the end of
// m and cells whose block index is not in s are left as zero.
func Assemble(m blk.BlockMap, s blockset.BlockSet, d Dimensions, opts ...Option) (*Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	a := new(assembler)
	for _, opt := range opts {
		opt(a)
	}

	result := &Result{
		Grid: newTileGrid(d),
	}

	if len(m) != d.Blocks() {
		if a.strict && len(m) < d.Blocks() {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrMissingEntry, len(m), d.Blocks())
		}
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:     LengthMismatch,
			Expected: d.Blocks(),
			Actual:   len(m),
		})
	}

	n := d.Blocks()
	if len(m) < n {
		n = len(m)
	}

	for i := 0; i < n; i++ {
		bx, by := i%d.Width, i/d.Width
		index := int(m[i])
		if index >= len(s) {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Kind:   BlockOutOfRange,
				X:      bx,
				Y:      by,
				Index:  index,
				Actual: len(s),
			})
			continue
		}
		result.Grid.put(bx, by, &s[index])
	}

	return result, nil
}
