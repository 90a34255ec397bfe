package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ironsheep/memezap/internal/blobstore"
)

// DefaultName is the blob name used when none is configured.
const DefaultName = "templates.mzix"

// Match is a search hit.
type Match struct {
	ID    int     `json:"id"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Record is an input to AddBatch.
type Record struct {
	Path   string
	Vector []float32
}

// Stats summarizes the index contents.
type Stats struct {
	Count       int      `json:"count"`
	Dimension   int      `json:"dimension"`
	Paths       []string `json:"paths"`
	Directories int      `json:"unique_directories"`
	Backend     string   `json:"backend"`
	Persisted   bool     `json:"database_exists"`
}

// Index is an append-only exact cosine-similarity index.
type Index struct {
	// writeMu serializes writers, including the persist step.
	writeMu sync.Mutex

	// mu guards the arena below.
	mu      sync.RWMutex
	dim     int
	paths   []string
	vectors []float32
	lookup  map[string]int

	fixedDim  int
	store     blobstore.Store
	name      string
	persisted bool
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(x *Index) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithDimension fixes the vector dimension. A persisted index of another
// dimension is discarded on Open. Without it the first vector added sets
// the dimension.
func WithDimension(dim int) Option {
	return func(x *Index) { x.fixedDim = dim }
}

// New creates an empty in-memory index.
func New(opts ...Option) *Index {
	x := &Index{
		lookup: make(map[string]int),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(x)
	}
	x.dim = x.fixedDim
	return x
}

// Open loads the index stored under name in store.
//
// Open never fails. A missing blob starts an empty index; an unreadable or
// corrupt blob, or one of the wrong dimension, is logged at Warn and also
// starts empty. The next successful write replaces it.
func Open(ctx context.Context, store blobstore.Store, name string, opts ...Option) *Index {
	x := New(opts...)
	x.store = store
	x.name = name
	if x.name == "" {
		x.name = DefaultName
	}

	data, err := store.Get(ctx, x.name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			x.logger.Info("no index found, starting empty", "backend", store.Describe(), "name", x.name)
		} else {
			x.logger.Warn("index unreadable, starting empty", "backend", store.Describe(), "name", x.name, "error", err)
		}
		return x
	}
	x.persisted = true

	dim, paths, vectors, err := decode(data)
	if err != nil {
		var ce *CorruptError
		if errors.As(err, &ce) {
			ce.Name = x.name
		}
		x.logger.Warn("index corrupt, starting empty", "backend", store.Describe(), "error", err)
		return x
	}
	if x.fixedDim > 0 && len(paths) > 0 && dim != x.fixedDim {
		x.logger.Warn("index dimension differs from extractor, starting empty",
			"stored", dim, "expected", x.fixedDim)
		return x
	}

	lookup := make(map[string]int, len(paths))
	for i, p := range paths {
		if _, dup := lookup[p]; dup {
			x.logger.Warn("index has duplicate path, starting empty", "path", p)
			return x
		}
		lookup[p] = i
	}
	if len(paths) > 0 {
		x.dim = dim
	}
	x.paths = paths
	x.vectors = vectors
	x.lookup = lookup
	x.logger.Info("index loaded", "backend", store.Describe(), "count", len(paths), "dimension", x.dim)
	return x
}

// Add inserts vec under path. Re-adding an existing path is a no-op that
// returns false. When the index is backed by a store the blob is written
// before the record becomes visible; if the write fails nothing changes.
func (x *Index) Add(ctx context.Context, path string, vec []float32) (bool, error) {
	n, err := x.AddBatch(ctx, []Record{{Path: path, Vector: vec}})
	return n == 1, err
}

// AddBatch inserts records with a single persist. Records whose path is
// already present, or repeated within the batch, are skipped. Any invalid
// record fails the whole batch.
func (x *Index) AddBatch(ctx context.Context, records []Record) (int, error) {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	// Only writers mutate the arena and writeMu is held, so reading it
	// without mu is safe here.
	dim := x.dim
	seen := make(map[string]bool, len(records))
	var (
		newPaths []string
		newVecs  []float32
	)
	for _, r := range records {
		if r.Path == "" {
			return 0, fmt.Errorf("add: %w: empty path", ErrInvalidVector)
		}
		if _, ok := x.lookup[r.Path]; ok || seen[r.Path] {
			continue
		}
		unit, ok := NormalizeL2(r.Vector)
		if !ok {
			return 0, fmt.Errorf("add %s: %w", r.Path, ErrInvalidVector)
		}
		if dim == 0 {
			dim = len(unit)
		}
		if len(unit) != dim {
			return 0, fmt.Errorf("add %s: %w", r.Path, dimensionError(dim, len(unit)))
		}
		seen[r.Path] = true
		newPaths = append(newPaths, r.Path)
		newVecs = append(newVecs, unit...)
	}
	if len(newPaths) == 0 {
		return 0, nil
	}

	if x.store != nil {
		paths := append(append(make([]string, 0, len(x.paths)+len(newPaths)), x.paths...), newPaths...)
		vectors := append(append(make([]float32, 0, len(x.vectors)+len(newVecs)), x.vectors...), newVecs...)
		if err := x.store.Put(ctx, x.name, encode(dim, paths, vectors)); err != nil {
			return 0, fmt.Errorf("persist index: %w", err)
		}
	}

	x.mu.Lock()
	x.persisted = x.persisted || x.store != nil
	x.dim = dim
	for _, p := range newPaths {
		x.lookup[p] = len(x.paths)
		x.paths = append(x.paths, p)
	}
	x.vectors = append(x.vectors, newVecs...)
	x.mu.Unlock()

	x.logger.Debug("index grew", "added", len(newPaths), "count", len(x.paths))
	return len(newPaths), nil
}

// Save writes the current contents to the store. It is a no-op for an
// in-memory index.
func (x *Index) Save(ctx context.Context) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()
	return x.saveLocked(ctx)
}

func (x *Index) saveLocked(ctx context.Context) error {
	if x.store == nil {
		return nil
	}
	if err := x.store.Put(ctx, x.name, encode(x.dim, x.paths, x.vectors)); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	x.mu.Lock()
	x.persisted = true
	x.mu.Unlock()
	return nil
}

// Reset removes every record and persists the empty index. It is the entry
// point for a full rebuild.
func (x *Index) Reset(ctx context.Context) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	x.mu.Lock()
	x.dim = x.fixedDim
	x.paths = nil
	x.vectors = nil
	x.lookup = make(map[string]int)
	x.mu.Unlock()

	return x.saveLocked(ctx)
}

// Search returns the most similar record scoring at least threshold. Exact
// ties go to the earlier record.
func (x *Index) Search(vec []float32, threshold float64) (Match, bool) {
	q, ok := NormalizeL2(vec)
	if !ok {
		return Match{}, false
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(q) != x.dim {
		return Match{}, false
	}

	best := -1
	bestScore := 0.0
	for i := range x.paths {
		s := dot(q, x.vectors[i*x.dim:(i+1)*x.dim])
		if s < threshold {
			continue
		}
		if best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return Match{}, false
	}
	return Match{ID: best, Path: x.paths[best], Score: bestScore}, true
}

// SearchTopK returns up to k records scoring at least threshold, best
// first. Equal scores are ordered by insertion.
func (x *Index) SearchTopK(vec []float32, k int, threshold float64) []Match {
	if k <= 0 {
		return nil
	}
	q, ok := NormalizeL2(vec)
	if !ok {
		return nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(q) != x.dim {
		return nil
	}

	var cands []candidate
	for i := range x.paths {
		s := dot(q, x.vectors[i*x.dim:(i+1)*x.dim])
		if s >= threshold {
			cands = append(cands, candidate{id: i, score: s})
		}
	}
	top := selectTopK(cands, k)
	out := make([]Match, len(top))
	for i, c := range top {
		out[i] = Match{ID: c.id, Path: x.paths[c.id], Score: c.score}
	}
	return out
}

// Contains reports whether path has been indexed.
func (x *Index) Contains(path string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.lookup[path]
	return ok
}

// Len returns the number of records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.paths)
}

// Dim returns the vector dimension, or zero before the first insertion.
func (x *Index) Dim() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Vector returns a copy of the stored unit vector for path.
func (x *Index) Vector(path string) ([]float32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	i, ok := x.lookup[path]
	if !ok {
		return nil, false
	}
	out := make([]float32, x.dim)
	copy(out, x.vectors[i*x.dim:])
	return out, true
}

// Stats summarizes the index.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	dirs := make(map[string]struct{})
	for _, p := range x.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	paths := make([]string, len(x.paths))
	copy(paths, x.paths)
	sort.Strings(paths)

	backend := "memory"
	if x.store != nil {
		backend = x.store.Describe()
	}
	return Stats{
		Count:       len(x.paths),
		Dimension:   x.dim,
		Paths:       paths,
		Directories: len(dirs),
		Backend:     backend,
		Persisted:   x.persisted,
	}
}
