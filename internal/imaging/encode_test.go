package imaging

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestSave(t *testing.T) {
	img := solidImage(20, 10, color.RGBA{10, 20, 30, 255})
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"png", "out.png", false},
		{"jpeg", "nested/out.jpg", false},
		{"unsupported", "out.webp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			err := Save(img, path)
			if tt.wantErr {
				if !errors.Is(err, ErrWrite) {
					t.Errorf("err = %v, want ErrWrite", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			src, err := ReadFile(path)
			if err != nil {
				t.Fatalf("reading back: %v", err)
			}
			if s := src.Shape(); s.Width != 20 || s.Height != 10 {
				t.Errorf("shape = %v, want 20x10", s)
			}
		})
	}
}

func TestEncodeBase64PNG_Downscale(t *testing.T) {
	img := solidImage(400, 200, color.White)

	encoded, size, err := EncodeBase64PNG(img, 100)
	if err != nil {
		t.Fatal(err)
	}
	if size != (image.Point{X: 100, Y: 50}) {
		t.Errorf("size = %v, want (100,50)", size)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	src, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if s := src.Shape(); s.Width != 100 || s.Height != 50 {
		t.Errorf("decoded shape = %v", s)
	}
}

func TestEncodeBase64PNG_NoUpscale(t *testing.T) {
	img := solidImage(30, 20, color.White)
	_, size, err := EncodeBase64PNG(img, 100)
	if err != nil {
		t.Fatal(err)
	}
	if size != (image.Point{X: 30, Y: 20}) {
		t.Errorf("size = %v, want (30,20)", size)
	}
}

func TestClone(t *testing.T) {
	src := solidImage(5, 5, color.RGBA{1, 2, 3, 255})
	dst := Clone(src.SubImage(image.Rect(1, 1, 4, 4)))
	if dst.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Errorf("bounds = %v", dst.Bounds())
	}
	dst.Set(0, 0, color.Black)
	if src.RGBAAt(1, 1) != (color.RGBA{1, 2, 3, 255}) {
		t.Error("Clone shares pixels with source")
	}
}
