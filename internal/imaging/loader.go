package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/memezap/internal/bbox"
)

// ErrDecode is returned when image bytes cannot be decoded.
var ErrDecode = errors.New("decode image")

// Source is a decoded image together with the bytes it was decoded from.
//
// Hash is the hex SHA-256 of Data and identifies the image for the OCR
// cache. Path is set when the image was read from disk and is the identity
// used by the embedding index.
type Source struct {
	Image  image.Image
	Data   []byte
	Hash   string
	Format string
	Path   string
}

// Shape returns the pixel size of the decoded image.
func (s *Source) Shape() bbox.Shape {
	return bbox.ShapeOf(s.Image)
}

// Decode decodes raw image bytes into a Source.
//
// Supported formats are PNG, JPEG and GIF. The returned Source keeps a
// reference to data; callers must not modify it afterwards.
func Decode(data []byte) (*Source, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &Source{
		Image:  img,
		Data:   data,
		Hash:   ContentHash(data),
		Format: format,
	}, nil
}

// FromImage wraps an in-memory image as a Source by encoding it to PNG so
// it gets a stable content hash.
func FromImage(img image.Image) (*Source, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	data := buf.Bytes()
	return &Source{
		Image:  img,
		Data:   data,
		Hash:   ContentHash(data),
		Format: "png",
	}, nil
}

// ReadFile reads and decodes the image at path.
func ReadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// ContentHash returns the hex SHA-256 digest of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultCacheCapacity bounds an ImageCache built without WithCapacity.
const DefaultCacheCapacity = 64

// PrepareFunc turns a freshly read image into the image that is cached,
// for example by removing its text.
type PrepareFunc func(ctx context.Context, src *Source) (image.Image, error)

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithCapacity bounds the number of cached images. Values below one use
// DefaultCacheCapacity.
func WithCapacity(n int) CacheOption {
	return func(c *ImageCache) { c.capacity = n }
}

// WithPrepare runs fn on every image read from disk before it is cached.
func WithPrepare(fn PrepareFunc) CacheOption {
	return func(c *ImageCache) { c.prepare = fn }
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Templates are loaded through the cache so repeated renders against the
// same template do not decode or prepare it again. The least recently used
// image is dropped once the cache is full. Cached sources keep no raw bytes.
type ImageCache struct {
	capacity int
	prepare  PrepareFunc
	images   *lru.Cache[string, *Source]
	group    singleflight.Group
}

// NewImageCache creates an empty image cache.
func NewImageCache(opts ...CacheOption) *ImageCache {
	c := &ImageCache{}
	for _, opt := range opts {
		opt(c)
	}
	if c.capacity < 1 {
		c.capacity = DefaultCacheCapacity
	}
	// New only fails for a non-positive size.
	c.images, _ = lru.New[string, *Source](c.capacity)
	return c
}

// Load returns the cached image for path or reads and prepares it.
//
// The image is cached using the exact path string provided. Different paths
// to the same file result in separate cache entries. Concurrent loads of
// one path share a single read, and a caller whose ctx ends stops waiting
// without aborting it.
func (c *ImageCache) Load(ctx context.Context, path string) (*Source, error) {
	if src, ok := c.images.Get(path); ok {
		return src, nil
	}
	// The shared read is not canceled by any one caller.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(path, func() (interface{}, error) {
		if src, ok := c.images.Get(path); ok {
			return src, nil
		}
		src, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if c.prepare != nil {
			img, err := c.prepare(shared, src)
			if err != nil {
				return nil, fmt.Errorf("prepare %s: %w", path, err)
			}
			src.Image = img
		}
		src.Data = nil
		c.images.Add(path, src)
		return src, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Source), nil
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.images.Len()
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.images.Purge()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.images.Remove(path)
}
