package app

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/memezap/internal/compositor"
	"github.com/ironsheep/memezap/internal/config"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/suggest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	cfg.Index.Dir = filepath.Join(dir, "index")
	cfg.OCR.Engine = "heuristic"
	cfg.Compositor.TemplateDir = filepath.Join(dir, "templates")
	cfg.Cache.Path = filepath.Join(dir, "cache", "ocr.db")
	return cfg
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if s.Compositor == nil || s.Detector == nil || s.Index == nil {
		t.Fatal("services not wired")
	}
	if _, ok := s.Suggester.(suggest.Disabled); !ok {
		t.Errorf("suggester = %T, want Disabled", s.Suggester)
	}
	if s.Index.Dim() == 0 {
		t.Error("perceptual index dimension not fixed")
	}
	if got := s.Compositor.Options().TemplateDir; got == "" {
		t.Error("template dir not passed to compositor")
	}
}

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"bolt cache", func(c *config.Config) { c.Cache.Backend = "bolt" }},
		{"badger cache", func(c *config.Config) { c.Cache.Backend = "badger"; c.Cache.Path = "" }},
		{"no cache", func(c *config.Config) { c.Cache.Backend = "none" }},
		{"memory index", func(c *config.Config) { c.Index.Backend = "memory" }},
		{"fast inpaint", func(c *config.Config) { c.Inpaint.Strategy = "fast" }},
		{"measured font", func(c *config.Config) { c.Font.Measured = true }},
		{"suggestions", func(c *config.Config) { c.Suggest.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)
			s, err := New(context.Background(), cfg, nil)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"cache backend", func(c *config.Config) { c.Cache.Backend = "floppy" }},
		{"index backend", func(c *config.Config) { c.Index.Backend = "floppy" }},
		{"inpaint strategy", func(c *config.Config) { c.Inpaint.Strategy = "smudge" }},
		{"font path", func(c *config.Config) { c.Font.Path = "/nonexistent/font.ttf" }},
		{"suggest url", func(c *config.Config) { c.Suggest.Enabled = true; c.Suggest.BaseURL = "ftp://x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)
			if _, err := New(context.Background(), cfg, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLazyEngineBuiltOnce(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var wg sync.WaitGroup
	engines := make([]any, 8)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.Engine()
			if err != nil {
				t.Errorf("Engine: %v", err)
			}
			engines[i] = e
		}(i)
	}
	wg.Wait()
	for _, e := range engines[1:] {
		if e != engines[0] {
			t.Fatal("engine built more than once")
		}
	}
}

func TestCompose_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 160, 120))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{90, 140, 200, 255}), image.Point{}, draw.Src)
	src, err := imaging.FromImage(img)
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Compositor.Compose(context.Background(), compositor.Request{
		Source:   src,
		Captions: []string{"top", "bottom"},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if res.Layout != compositor.LayoutDistributed {
		t.Errorf("layout = %s, want distributed for a blank image", res.Layout)
	}
	if res.Indexed == "" || s.Index.Len() != 1 {
		t.Errorf("indexed = %q, len = %d", res.Indexed, s.Index.Len())
	}

	// The same image now matches its own saved template.
	again, err := s.Compositor.Compose(context.Background(), compositor.Request{
		Source:   src,
		Captions: []string{"top", "bottom"},
	})
	if err != nil {
		t.Fatalf("second Compose: %v", err)
	}
	if !again.UsedTemplate || again.TemplatePath != res.Indexed {
		t.Errorf("second render template = %q (used %v), want %q", again.TemplatePath, again.UsedTemplate, res.Indexed)
	}
	if again.Layout != compositor.LayoutTemplateWhiteBox {
		t.Errorf("second layout = %s", again.Layout)
	}
	if s.Index.Len() != 1 {
		t.Errorf("index grew on template reuse: %d", s.Index.Len())
	}
}

func TestInfo(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	info := s.Info()
	if info.OCR.Engine != "heuristic" || !info.OCR.Available {
		t.Errorf("ocr = %+v", info.OCR)
	}
	if info.Extractor != "perceptual" || info.Dimension == 0 {
		t.Errorf("extractor = %q, dim = %d", info.Extractor, info.Dimension)
	}
	if info.Inpaint != "telea" || info.Cache != "memory" {
		t.Errorf("info = %+v", info)
	}
}
