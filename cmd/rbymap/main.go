package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/rbymap"
	"github.com/bodgit/rbymap/blockset"
	"github.com/bodgit/rbymap/tilemap"
	"github.com/urfave/cli/v2"
)

const defaultDB = "rbymap.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(os.Stderr, "", 0)
	if c.Bool("quiet") {
		logger.SetOutput(ioutil.Discard)
	}
	return logger
}

func openDB(c *cli.Context) (*rbymap.MapDB, error) {
	return rbymap.NewMapDB(c.String("db"))
}

func assembleAction(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	var opts []tilemap.Option
	if c.Bool("strict") {
		opts = append(opts, tilemap.Strict())
	}

	var (
		grid *tilemap.TileGrid
		err  error
	)
	if c.IsSet("map") {
		db, err := openDB(c)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer db.Close()

		m := rbymap.New(db, newLogger(c))
		grid, err = m.AssembleMap(c.String("map"), c.Args().Get(0), c.Args().Get(1), opts...)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	} else {
		m := rbymap.New(nil, newLogger(c))
		grid, err = m.AssembleFiles(c.Args().Get(0), c.Args().Get(1), c.Int("blocks-width"), c.Int("blocks-height"), opts...)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	if err := writeHex(os.Stdout, grid.Rows()); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func blocksetAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := rbymap.ReadFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for i, grid := range blockset.Decode(b).Grids() {
		fmt.Printf("%02X:\n", i)
		if err := writeHex(os.Stdout, grid); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	return nil
}

func importAction(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := openDB(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	if err := db.ImportConstants(c.Args().Get(0)); err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := db.ImportTilesets(c.Args().Get(1)); err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, file := range c.Args().Slice()[2:] {
		if err := db.ImportHeader(file); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	return nil
}

func mapsAction(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	maps, err := db.Maps()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, m := range maps {
		fmt.Printf("%-24s %-24s %3dx%-3d %s\n", m.Name, m.Constant, m.Width, m.Height, m.Blockset)
	}

	return nil
}

func scanAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := openDB(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	m := rbymap.New(db, newLogger(c))

	reports, err := m.Scan(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, r := range reports {
		fmt.Printf("%s: %d warning(s)\n", r.File, len(r.Diagnostics))
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "rbymap"
	app.Usage = "Pokémon Red/Blue map reconstruction utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"RBYMAP_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to map catalogue",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "suppress warnings",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "assemble",
			Usage:       "Assemble a map and print its tile ids",
			Description: "Tile ids are printed in hexadecimal, one row of tiles per line.",
			ArgsUsage:   "BLK BLOCKSET",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "blocks-width",
					Value: 10,
					Usage: "map width in blocks",
				},
				&cli.IntFlag{
					Name:  "blocks-height",
					Value: 9,
					Usage: "map height in blocks",
				},
				&cli.StringFlag{
					Name:  "map",
					Usage: "look up the map dimensions in the catalogue",
				},
				&cli.BoolFlag{
					Name:  "strict",
					Usage: "fail if the block file is too short",
				},
			},
			Action: assembleAction,
		},
		{
			Name:      "blockset",
			Usage:     "Print every block in a blockset",
			ArgsUsage: "BLOCKSET",
			Action:    blocksetAction,
		},
		{
			Name:        "import",
			Usage:       "Import map metadata from a disassembly",
			Description: "Typically constants/map_constants.asm, gfx/tilesets.asm and data/maps/headers/*.asm.",
			ArgsUsage:   "CONSTANTS TILESETS [HEADER...]",
			Action:      importAction,
		},
		{
			Name:   "maps",
			Usage:  "List catalogued maps",
			Action: mapsAction,
		},
		{
			Name:      "scan",
			Usage:     "Assemble every map in a disassembly and report problems",
			ArgsUsage: "DIRECTORY",
			Action:    scanAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
