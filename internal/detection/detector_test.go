package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/cache"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/ocr"
)

type fakeEngine struct {
	calls atomic.Int32
	out   []ocr.Detection
	err   error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) DetectRaw(ctx context.Context, img image.Image) ([]ocr.Detection, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{out: []ocr.Detection{
		{Polygon: bbox.Box{MinX: 10, MinY: 5, MaxX: 90, MaxY: 20}.Polygon(), Text: "TOP", Confidence: 0.9},
		{Polygon: bbox.Box{MinX: 20, MinY: 25, MaxX: 80, MaxY: 35}.Polygon(), Text: "TEXT", Confidence: 0.7},
		{Polygon: bbox.Box{MinX: 10, MinY: 80, MaxX: 90, MaxY: 95}.Polygon(), Text: "noise", Confidence: 0.3},
	}}
}

func testSource(t *testing.T, w, h int) *imaging.Source {
	t.Helper()
	src, err := imaging.FromImage(image.NewRGBA(image.Rect(0, 0, w, h)))
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	return src
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("boom") }
func (brokenStore) Set(context.Context, string, []byte) error   { return errors.New("boom") }
func (brokenStore) Close() error                                { return nil }

func TestDetector_FiltersAndMerges(t *testing.T) {
	d := NewDetector(newFakeEngine())
	got, err := d.Detect(context.Background(), testSource(t, 100, 100))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d regions, want 1: %+v", len(got), got)
	}
	if got[0].Text != "TOP TEXT" {
		t.Errorf("Text = %q", got[0].Text)
	}
}

func TestDetector_CacheHitMatchesMiss(t *testing.T) {
	engine := newFakeEngine()
	store := cache.NewMemory(cache.Options{})
	d := NewDetector(engine, WithCache(store))
	src := testSource(t, 100, 100)
	ctx := context.Background()

	miss, err := d.Detect(ctx, src)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	hit, err := d.Detect(ctx, src)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !reflect.DeepEqual(miss, hit) {
		t.Errorf("cache hit differs from miss:\n miss %+v\n hit  %+v", miss, hit)
	}
	if n := engine.calls.Load(); n != 1 {
		t.Errorf("engine called %d times, want 1", n)
	}
}

func TestDetector_NoCacheRunsEngineEachTime(t *testing.T) {
	engine := newFakeEngine()
	d := NewDetector(engine)
	src := testSource(t, 100, 100)
	for i := 0; i < 2; i++ {
		if _, err := d.Detect(context.Background(), src); err != nil {
			t.Fatalf("Detect: %v", err)
		}
	}
	if n := engine.calls.Load(); n != 2 {
		t.Errorf("engine called %d times, want 2", n)
	}
}

func TestDetector_CachedShapeRemapped(t *testing.T) {
	engine := newFakeEngine()
	d := NewDetector(engine, WithCache(cache.NewMemory(cache.Options{})))
	ctx := context.Background()

	small := testSource(t, 100, 100)
	base, err := d.Detect(ctx, small)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	// Same bytes decoded at twice the size.
	large := &imaging.Source{Image: image.NewRGBA(image.Rect(0, 0, 200, 200)), Hash: small.Hash}
	got, err := d.Detect(ctx, large)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if engine.calls.Load() != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls.Load())
	}
	if len(got) != len(base) {
		t.Fatalf("got %d regions, want %d", len(got), len(base))
	}
	for i := range got {
		for j := range got[i].Polygon {
			w, g := base[i].Polygon[j], got[i].Polygon[j]
			if math.Abs(g.X-2*w.X) > 1e-9 || math.Abs(g.Y-2*w.Y) > 1e-9 {
				t.Errorf("point %d/%d = %+v, want %+v scaled by 2", i, j, g, w)
			}
		}
	}
}

func TestDetector_EngineError(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("%w: model missing", ocr.ErrEngine)}
	d := NewDetector(engine)
	_, err := d.Detect(context.Background(), testSource(t, 10, 10))
	if !errors.Is(err, ocr.ErrEngine) {
		t.Errorf("err = %v, want ErrEngine", err)
	}
}

func TestDetector_CacheFailureIgnored(t *testing.T) {
	d := NewDetector(newFakeEngine(), WithCache(brokenStore{}))
	got, err := d.Detect(context.Background(), testSource(t, 100, 100))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d regions, want 1", len(got))
	}
}

func TestDetector_Concurrent(t *testing.T) {
	d := NewDetector(newFakeEngine(), WithCache(cache.NewMemory(cache.Options{})))
	src := testSource(t, 100, 100)

	var wg sync.WaitGroup
	results := make([][]TextRegion, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := d.Detect(context.Background(), src)
			if err != nil {
				t.Errorf("Detect: %v", err)
			}
			results[i] = r
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[0], results[i]) {
			t.Errorf("result %d differs", i)
		}
	}
}

// gatedEngine blocks until release is closed and fails if its ctx ended.
type gatedEngine struct {
	started chan struct{}
	once    sync.Once
	release chan struct{}
}

func (g *gatedEngine) Name() string { return "gated" }

func (g *gatedEngine) DetectRaw(ctx context.Context, _ image.Image) ([]ocr.Detection, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newFakeEngine().out, nil
}

func TestDetector_CanceledCallerDoesNotFailOthers(t *testing.T) {
	engine := &gatedEngine{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDetector(engine)
	src := testSource(t, 100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := d.Detect(ctx, src)
		first <- err
	}()
	<-engine.started

	type result struct {
		regions []TextRegion
		err     error
	}
	second := make(chan result, 1)
	go func() {
		r, err := d.Detect(context.Background(), src)
		second <- result{r, err}
	}()
	// Let the second caller join the running detection.
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller err = %v", err)
	}
	close(engine.release)
	r := <-second
	if r.err != nil {
		t.Fatalf("other caller err = %v", r.err)
	}
	if len(r.regions) != 1 {
		t.Errorf("got %d regions, want 1", len(r.regions))
	}
}

func TestDetector_NilSource(t *testing.T) {
	d := NewDetector(newFakeEngine())
	if _, err := d.Detect(context.Background(), nil); err == nil {
		t.Error("expected error for nil source")
	}
}
