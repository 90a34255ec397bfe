package app

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/index"
)

// IngestOptions control a bulk index build.
type IngestOptions struct {
	// Workers bounds concurrent extractions. Zero uses GOMAXPROCS.
	Workers int

	// Clean removes text before embedding.
	Clean bool

	// Reset empties the index first.
	Reset bool
}

// IngestResult reports a bulk index build.
type IngestResult struct {
	Found    int           `json:"found"`
	Added    int           `json:"added"`
	Skipped  int           `json:"skipped"`
	Failed   []string      `json:"failed,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

var templateExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// FindImages walks dir and returns every jpg, jpeg and png file in
// lexical order.
func FindImages(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && templateExts[strings.ToLower(filepath.Ext(path))] {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// Ingest embeds every image in paths and adds them to the index in one
// batch. Paths already indexed are skipped without being read. Images that
// fail to load or embed are reported and do not stop the build.
func (s *Services) Ingest(ctx context.Context, paths []string, opts IngestOptions) (*IngestResult, error) {
	start := time.Now()
	res := &IngestResult{Found: len(paths)}

	if opts.Reset {
		if err := s.Index.Reset(ctx); err != nil {
			return nil, err
		}
		s.Templates.Clear()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		records = make([]index.Record, 0, len(paths))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		if s.Index.Contains(path) {
			res.Skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := imaging.ReadFile(path)
			if err == nil {
				var vec []float32
				if vec, err = s.Embed(gctx, src, opts.Clean); err == nil {
					mu.Lock()
					records = append(records, index.Record{Path: path, Vector: vec})
					mu.Unlock()
					return nil
				}
			}
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			s.Logger.Warn("skipping template", "path", path, "err", err)
			mu.Lock()
			res.Failed = append(res.Failed, path)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Workers finish in any order; keep the index in path order.
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	sort.Strings(res.Failed)

	added, err := s.Index.AddBatch(ctx, records)
	if err != nil {
		return nil, err
	}
	// Templates read before this build may have been replaced on disk.
	for _, r := range records {
		s.Templates.Evict(r.Path)
	}
	res.Added = added
	res.Skipped += len(records) - added
	res.Duration = time.Since(start)
	s.Logger.Info("index build finished",
		"found", res.Found,
		"added", res.Added,
		"skipped", res.Skipped,
		"failed", len(res.Failed),
		"duration", res.Duration,
	)
	return res, nil
}
