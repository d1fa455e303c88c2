package rbymap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bodgit/rbymap/tilemap"
)

const (
	mapsDir      = "maps"
	blocksetsDir = "gfx/blocksets"
	numWorkers   = 10
)

// Report is the outcome of assembling one block file during a Scan.
type Report struct {
	File        string
	Map         Map
	Diagnostics []tilemap.Diagnostic
}

func (m *RBYMap) findBlockMaps(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Editor and VCS droppings such as .git or .foo.blk.swp
			if strings.HasPrefix(info.Name(), ".") {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || filepath.Ext(file) != ".blk" {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (m *RBYMap) blockMapWorker(ctx context.Context, root string, in <-chan string, out chan<- Report) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

			mp, err := m.db.FindMap(name)
			if err != nil {
				errc <- err
				return
			}
			if mp == nil || mp.Width == 0 || mp.Height == 0 || mp.Blockset == "" {
				m.logger.Printf("No catalogue entry for \"%s\"\n", file)
				continue
			}

			bstFile := filepath.Join(root, blocksetsDir, mp.Blockset+".bst")
			if _, err := os.Stat(bstFile); os.IsNotExist(err) {
				m.logger.Printf("No blockset for \"%s\", expected \"%s\"\n", file, bstFile)
				continue
			}

			result, err := m.assembleFiles(file, bstFile, tilemap.Dimensions{Width: mp.Width, Height: mp.Height})
			if err != nil {
				errc <- err
				return
			}

			select {
			case out <- Report{File: file, Map: *mp, Diagnostics: result.Diagnostics}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return errc, nil
}

// waitForPipeline drains every error channel, cancelling the pipeline on the
// first error, and returns that error once all stages have stopped.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan assembles every block file under the maps directory of the
// disassembly at path, using the catalogue for dimensions and blocksets. Block
// files that can't be matched to a catalogued map and blockset are logged and
// skipped. The reports are sorted by file.
func (m *RBYMap) Scan(path string) ([]Report, error) {
	if m.db == nil {
		return nil, errors.New("rbymap: scan requires a catalogue")
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := m.findBlockMaps(ctx, filepath.Join(root, mapsDir))
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	reportc := make(chan Report)
	var reports []Report
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range reportc {
			reports = append(reports, r)
		}
	}()

	for i := 0; i < numWorkers; i++ {
		errc, err := m.blockMapWorker(ctx, root, files, reportc)
		if err != nil {
			return nil, err
		}
		errcList = append(errcList, errc)
	}

	err = waitForPipeline(cancelFunc, errcList...)
	close(reportc)
	<-done
	if err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].File < reports[j].File })

	return reports, nil
}
