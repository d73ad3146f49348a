package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// batchExtensions are the input types batch mode picks up from a directory.
var batchExtensions = map[string]bool{".docx": true, ".pdf": true, ".html": true, ".htm": true}

// RunBatch processes every supported document under dir, one independent
// pipeline per document. Documents share only the read-only corpus, so they
// run in parallel up to the worker cap. A failing document does not stop the
// others; all failures are reported together at the end, each naming its
// file.
func (a *App) RunBatch(ctx context.Context, dir string) (map[string]*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if batchExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			inputs = append(inputs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(inputs)
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no supported documents in %s", dir)
	}

	workers := a.cfg.BatchWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	results := make(map[string]*Result, len(inputs))
	var failures []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			sub := *a
			sub.cfg.OutputDir = filepath.Join(outDirOf(a.cfg), stemOf(input))
			res, err := sub.Run(gctx, input)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Collect instead of returning: one bad document must not
				// cancel the group.
				failures = append(failures, fmt.Errorf("%s: %w", input, err))
				log.Error().Err(err).Str("file", input).Msg("document failed")
				return nil
			}
			results[input] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if len(failures) > 0 {
		return results, errors.Join(failures...)
	}
	return results, nil
}

func outDirOf(cfg Config) string {
	if cfg.OutputDir == "" {
		return "output"
	}
	return cfg.OutputDir
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
