/*
Package blk implements a decoder for Game Boy map block files.

A block file has no header. Each byte is the index of a block in the map's
blockset, and the bytes are laid out row by row using a width and height
that are not stored in the file.
*/
package blk

// BlockMap is the ordered sequence of block indices making up a map.
type BlockMap []byte

// Decode returns every byte of b as a block index. Any input, including an
// empty one, is valid.
func Decode(b []byte) BlockMap {
	m := make(BlockMap, len(b))
	copy(m, b)
	return m
}
