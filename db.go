package rbymap

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/bodgit/rbymap/asm"
	_ "github.com/mattn/go-sqlite3"
)

// Map is a catalogued map. Width and Height are zero until the map's
// constants have been imported, and Tileset is empty until its header has.
type Map struct {
	Name        string
	Constant    string
	Width       int
	Height      int
	Tileset     string
	Blockset    string
	Connections []asm.Connection
}

type MapDB struct {
	db *sql.DB
}

func NewMapDB(file string) (*MapDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tileset (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, blockset TEXT)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS map (id INTEGER PRIMARY KEY NOT NULL, constant TEXT NOT NULL UNIQUE, name TEXT UNIQUE, width INTEGER, height INTEGER, tileset_id INTEGER, FOREIGN KEY(tileset_id) REFERENCES tileset(id))"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS connection (map_id INTEGER NOT NULL, direction TEXT NOT NULL, name TEXT NOT NULL, constant TEXT NOT NULL, delta INTEGER NOT NULL, UNIQUE(map_id, direction), FOREIGN KEY(map_id) REFERENCES map(id))"); err != nil {
		return nil, err
	}

	return &MapDB{
		db: db,
	}, nil
}

func (db *MapDB) Close() error {
	return db.db.Close()
}

// ImportConstants imports the dimensions of every map declared in file,
// usually constants/map_constants.asm.
func (db *MapDB) ImportConstants(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	constants, err := asm.ParseMapConstants(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range constants {
		if _, err := tx.Exec("INSERT INTO map (constant, width, height) VALUES (?, ?, ?) ON CONFLICT(constant) DO UPDATE SET width = excluded.width, height = excluded.height", c.Name, c.Width, c.Height); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ImportTilesets imports the blockset used by each tileset in file, usually
// gfx/tilesets.asm.
func (db *MapDB) ImportTilesets(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	mappings, err := asm.ParseTilesets(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for tileset, blockset := range mappings {
		if _, err := tx.Exec("INSERT INTO tileset (name, blockset) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET blockset = excluded.blockset", tileset, blockset); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ImportHeader imports the name, tileset and connections of the map whose
// header is in file, for example data/maps/headers/PalletTown.asm.
func (db *MapDB) ImportHeader(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := asm.ParseMapHeader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tileset, err := addTileset(tx, header.Tileset)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("INSERT INTO map (constant, name, tileset_id) VALUES (?, ?, ?) ON CONFLICT(constant) DO UPDATE SET name = excluded.name, tileset_id = excluded.tileset_id", header.Constant, header.Name, tileset); err != nil {
		return err
	}

	var id int64
	if err = tx.QueryRow("SELECT id FROM map WHERE constant = ?", header.Constant).Scan(&id); err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM connection WHERE map_id = ?", id); err != nil {
		return err
	}

	// A header with two connections in the same direction is rejected
	for _, c := range header.Connections {
		if _, err = tx.Exec("INSERT INTO connection (map_id, direction, name, constant, delta) VALUES (?, ?, ?, ?, ?)", id, c.Direction, c.Name, c.Constant, c.Offset); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}

	return tx.Commit()
}

func addTileset(tx *sql.Tx, name string) (int64, error) {
	var id int64
	switch err := tx.QueryRow("SELECT id FROM tileset WHERE name = ?", name).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO tileset (name) VALUES (?)", name)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

const selectMap = "SELECT m.id, m.constant, m.name, m.width, m.height, t.name, t.blockset FROM map AS m LEFT JOIN tileset AS t ON m.tileset_id = t.id"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMap(row scanner) (int64, *Map, error) {
	var (
		id                      int64
		constant                string
		name, tileset, blockset sql.NullString
		width, height           sql.NullInt64
	)
	if err := row.Scan(&id, &constant, &name, &width, &height, &tileset, &blockset); err != nil {
		return 0, nil, err
	}

	m := &Map{
		Name:     name.String,
		Constant: constant,
		Width:    int(width.Int64),
		Height:   int(height.Int64),
		Tileset:  tileset.String,
	}
	if tileset.Valid {
		mappings := make(map[string]string)
		if blockset.Valid {
			mappings[tileset.String] = blockset.String
		}
		m.Blockset = asm.Blockset(tileset.String, mappings)
	}

	return id, m, nil
}

func (db *MapDB) connections(id int64) ([]asm.Connection, error) {
	rows, err := db.db.Query("SELECT direction, name, constant, delta FROM connection WHERE map_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connections []asm.Connection
	for rows.Next() {
		var c asm.Connection
		if err := rows.Scan(&c.Direction, &c.Name, &c.Constant, &c.Offset); err != nil {
			return nil, err
		}
		connections = append(connections, c)
	}

	return connections, rows.Err()
}

// FindMap returns the map with the given label or constant, for example
// "PalletTown" or "PALLET_TOWN". It returns nil if there is no such map.
func (db *MapDB) FindMap(name string) (*Map, error) {
	id, m, err := scanMap(db.db.QueryRow(selectMap+" WHERE m.name = ? OR m.constant = ?", name, name))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
	default:
		return nil, err
	}

	if m.Connections, err = db.connections(id); err != nil {
		return nil, err
	}

	return m, nil
}

// Maps returns every map with an imported header, sorted by name.
func (db *MapDB) Maps() ([]Map, error) {
	rows, err := db.db.Query(selectMap + " WHERE m.name IS NOT NULL ORDER BY m.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	var maps []Map
	for rows.Next() {
		id, m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		maps = append(maps, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		if maps[i].Connections, err = db.connections(id); err != nil {
			return nil, err
		}
	}

	return maps, nil
}
