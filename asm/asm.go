/*
Package asm extracts map metadata from the assembly sources of a Pokémon
Red/Blue disassembly.

Block files and blocksets carry no dimensions or cross references, so the
width and height of each map come from the map_const macros in
constants/map_constants.asm, the tileset of each map from the map_header
macro in data/maps/headers/*.asm, and the blockset used by each tileset from
the INCBIN directives in gfx/tilesets.asm.
*/
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax is returned when a recognised macro cannot be parsed
var ErrSyntax = errors.New("asm: syntax error")

var (
	mapConstRe   = regexp.MustCompile(`^map_const\s+(\w+)\s*,\s*(\S+)\s*,\s*(\S+)$`)
	mapHeaderRe  = regexp.MustCompile(`^map_header\s+(\w+)\s*,\s*(\w+)\s*,\s*(\w+)`)
	connectionRe = regexp.MustCompile(`^connection\s+(\w+)\s*,\s*(\w+)\s*,\s*(\w+)\s*,\s*(-?\d+)`)
	gfxLabelRe   = regexp.MustCompile(`^(\w+)_GFX::`)
	blockLabelRe = regexp.MustCompile(`^\w+_Block::`)
	blocksetRe   = regexp.MustCompile(`INCBIN\s+"gfx/blocksets/(\w+)\.bst"`)
	suffixRe     = regexp.MustCompile(`_[1-9]$`)
)

// MapConstant is the size of a map as declared by map_const.
type MapConstant struct {
	Name   string
	Width  int
	Height int
}

// Connection joins the edge of a map to a neighbouring map.
type Connection struct {
	Direction string
	Name      string
	Constant  string
	Offset    int
}

// MapHeader is the subset of a map_header block needed to locate the map's
// blockset and neighbours.
type MapHeader struct {
	Name        string
	Constant    string
	Tileset     string
	Connections []Connection
}

func syntaxError(line int, format string, a ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, a...))
}

// scan calls fn with each line of r, stripped of comments and surrounding
// whitespace, along with its line number.
func scan(r io.Reader, fn func(int, string) error) error {
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := s.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		if err := fn(n, strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return s.Err()
}

// ParseMapConstants returns every map_const declaration in r in file order.
func ParseMapConstants(r io.Reader) ([]MapConstant, error) {
	var constants []MapConstant
	err := scan(r, func(n int, line string) error {
		// Skips the macro definition itself, "map_const: MACRO"
		if f := strings.Fields(line); len(f) == 0 || f[0] != "map_const" {
			return nil
		}
		m := mapConstRe.FindStringSubmatch(line)
		if m == nil {
			return syntaxError(n, "malformed map_const %q", line)
		}
		width, err := strconv.Atoi(m[2])
		if err != nil {
			return syntaxError(n, "bad width %q", m[2])
		}
		height, err := strconv.Atoi(m[3])
		if err != nil {
			return syntaxError(n, "bad height %q", m[3])
		}
		constants = append(constants, MapConstant{
			Name:   m[1],
			Width:  width,
			Height: height,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return constants, nil
}

// ParseTilesets returns the blockset name used by each tileset in r, keyed by
// the upper-cased tileset name.
func ParseTilesets(r io.Reader) (map[string]string, error) {
	mappings := make(map[string]string)
	var pending []string

	bind := func(blockset string) {
		for _, name := range pending {
			mappings[name] = blockset
		}
		pending = pending[:0]
	}

	err := scan(r, func(_ int, line string) error {
		if m := gfxLabelRe.FindStringSubmatch(line); m != nil {
			pending = append(pending, strings.ToUpper(m[1]))
			if b := blocksetRe.FindStringSubmatch(line); b != nil {
				bind(b[1])
			}
			return nil
		}
		if b := blocksetRe.FindStringSubmatch(line); b != nil {
			if len(pending) > 0 {
				bind(b[1])
			}
			return nil
		}
		if line != "" && !blockLabelRe.MatchString(line) {
			pending = pending[:0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// ParseMapHeader parses the map_header macro and any connection macros in r.
func ParseMapHeader(r io.Reader) (*MapHeader, error) {
	var header *MapHeader
	var connections []Connection

	err := scan(r, func(n int, line string) error {
		if m := mapHeaderRe.FindStringSubmatch(line); m != nil {
			header = &MapHeader{
				Name:     m[1],
				Constant: m[2],
				Tileset:  strings.ToUpper(m[3]),
			}
			return nil
		}
		if m := connectionRe.FindStringSubmatch(line); m != nil {
			offset, err := strconv.Atoi(m[4])
			if err != nil {
				return syntaxError(n, "bad connection offset %q", m[4])
			}
			connections = append(connections, Connection{
				Direction: strings.ToLower(m[1]),
				Name:      m[2],
				Constant:  m[3],
				Offset:    offset,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: no map_header found", ErrSyntax)
	}
	header.Connections = connections
	return header, nil
}

// Blockset returns the name of the blockset file, without extension, used by
// tileset. Tilesets missing from mappings fall back to their own lower-cased
// name, less any numeric suffix.
func Blockset(tileset string, mappings map[string]string) string {
	name, ok := mappings[strings.ToUpper(tileset)]
	if !ok {
		name = strings.ToLower(tileset)
	}
	return suffixRe.ReplaceAllString(name, "")
}
