/*
Package blockset implements a decoder for Game Boy map blocksets.

A blockset is a headerless sequence of 16 byte blocks. Each block is a 4 by 4
grid of tile ids stored row by row, so the tile at row r and column c of
block i is found at byte offset 16*i + 4*r + c. Any trailing bytes that do
not make up a complete block are ignored.
*/
package blockset

const (
	// Width is the number of tiles in each row of a block
	Width = 4
	// Height is the number of rows in a block
	Height = Width
	// BlockSize is the size in bytes of one encoded block
	BlockSize = Width * Height
)

// Block is a 4 by 4 grid of tile ids indexed as [row][column].
type Block [Height][Width]byte

// Rows returns the block as a slice of rows.
func (b Block) Rows() [][]byte {
	rows := make([][]byte, Height)
	for r := range rows {
		row := b[r]
		rows[r] = row[:]
	}
	return rows
}

// BlockSet is an ordered set of blocks, addressed by block index.
type BlockSet []Block

// Grids returns every block as a slice of rows, in block index order.
func (s BlockSet) Grids() [][][]byte {
	grids := make([][][]byte, len(s))
	for i, b := range s {
		grids[i] = b.Rows()
	}
	return grids
}

// dropIncompleteTrailingChunk trims b to a whole number of blocks.
func dropIncompleteTrailingChunk(b []byte) []byte {
	return b[:len(b)-len(b)%BlockSize]
}

// Decode partitions b into blocks. It never fails; a final chunk shorter than
// BlockSize is dropped.
func Decode(b []byte) BlockSet {
	b = dropIncompleteTrailingChunk(b)

	s := make(BlockSet, len(b)/BlockSize)
	for i := range s {
		chunk := b[i*BlockSize : (i+1)*BlockSize]
		for r := 0; r < Height; r++ {
			for c := 0; c < Width; c++ {
				s[i][r][c] = chunk[r*Width+c]
			}
		}
	}

	return s
}
