/*
Package rbymap is a library for reconstructing the tile maps of Pokémon
Red/Blue from the block files and blocksets of the game's disassembly.
*/
package rbymap

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/rbymap/blk"
	"github.com/bodgit/rbymap/blockset"
	"github.com/bodgit/rbymap/tilemap"
)

var (
	// ErrUnknownMap is returned when a map is not in the catalogue
	ErrUnknownMap = errors.New("rbymap: unknown map")
	// ErrNoDimensions is returned when a catalogued map has no map_const
	ErrNoDimensions = errors.New("rbymap: map has no dimensions")
)

type RBYMap struct {
	db     *MapDB
	logger *log.Logger
}

// New returns an RBYMap that reports assembly diagnostics to logger. db may
// be nil if no map needs to be looked up by name.
func New(db *MapDB, logger *log.Logger) *RBYMap {
	return &RBYMap{
		db:     db,
		logger: logger,
	}
}

// ReadFile returns the entire contents of file. The file is closed before
// returning.
func ReadFile(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ioutil.ReadAll(f)
}

// Assemble decodes the raw block file and blockset and assembles a map that
// is width by height blocks.
func Assemble(blkData, bstData []byte, width, height int, opts ...tilemap.Option) (*tilemap.Result, error) {
	s := blockset.Decode(bstData)
	m := blk.Decode(blkData)
	return tilemap.Assemble(m, s, tilemap.Dimensions{Width: width, Height: height}, opts...)
}

func (m *RBYMap) report(name string, diagnostics []tilemap.Diagnostic) {
	for _, d := range diagnostics {
		m.logger.Printf("Warning: %s: %s\n", name, d)
	}
}

func (m *RBYMap) assembleFiles(blkFile, bstFile string, d tilemap.Dimensions, opts ...tilemap.Option) (*tilemap.Result, error) {
	bstData, err := ReadFile(bstFile)
	if err != nil {
		return nil, err
	}

	blkData, err := ReadFile(blkFile)
	if err != nil {
		return nil, err
	}

	result, err := Assemble(blkData, bstData, d.Width, d.Height, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", blkFile, err)
	}
	m.report(blkFile, result.Diagnostics)

	return result, nil
}

// AssembleFiles reads the block file and blockset and assembles a map that is
// width by height blocks. Any diagnostics are logged.
func (m *RBYMap) AssembleFiles(blkFile, bstFile string, width, height int, opts ...tilemap.Option) (*tilemap.TileGrid, error) {
	result, err := m.assembleFiles(blkFile, bstFile, tilemap.Dimensions{Width: width, Height: height}, opts...)
	if err != nil {
		return nil, err
	}
	return result.Grid, nil
}

// AssembleMap is like AssembleFiles but takes the dimensions of the named
// map from the catalogue.
func (m *RBYMap) AssembleMap(name, blkFile, bstFile string, opts ...tilemap.Option) (*tilemap.TileGrid, error) {
	d, err := m.dimensions(name)
	if err != nil {
		return nil, err
	}
	return m.AssembleFiles(blkFile, bstFile, d.Width, d.Height, opts...)
}

func (m *RBYMap) lookup(name string) (*Map, error) {
	if m.db == nil {
		return nil, fmt.Errorf("%w %q: no catalogue", ErrUnknownMap, name)
	}
	mp, err := m.db.FindMap(name)
	if err != nil {
		return nil, err
	}
	if mp == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownMap, name)
	}
	return mp, nil
}

func (m *RBYMap) dimensions(name string) (tilemap.Dimensions, error) {
	mp, err := m.lookup(name)
	if err != nil {
		return tilemap.Dimensions{}, err
	}
	if mp.Width == 0 || mp.Height == 0 {
		return tilemap.Dimensions{}, fmt.Errorf("%w: %q", ErrNoDimensions, name)
	}
	return tilemap.Dimensions{Width: mp.Width, Height: mp.Height}, nil
}
