package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrWrite is returned when a rendered image cannot be written.
var ErrWrite = errors.New("write image")

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64PNG downscales img so neither side exceeds maxSide (when
// maxSide > 0) and returns it as base64 PNG along with the encoded size.
//
// Downscaling uses Lanczos resampling and preserves the aspect ratio.
func EncodeBase64PNG(img image.Image, maxSide int) (string, image.Point, error) {
	b := img.Bounds()
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}
	data, err := EncodePNG(img)
	if err != nil {
		return "", image.Point{}, err
	}
	size := img.Bounds().Size()
	return base64.StdEncoding.EncodeToString(data), size, nil
}

// Save writes img to path. The format is chosen from the file extension
// (PNG, JPEG, GIF, TIFF or BMP). Missing parent directories are created.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s: unsupported extension %q", ErrWrite, path, strings.ToLower(filepath.Ext(path)))
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Clone returns a mutable NRGBA copy of img with bounds starting at (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
