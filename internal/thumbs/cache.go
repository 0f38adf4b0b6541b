package thumbs

import (
	"crypto/md5" //nolint:gosec // MD5 used for cache key generation, not security
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"asset-browser/internal/logging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// CachePath resolves the on-disk cached thumbnail path for a content key:
// one JPEG per key under the cache directory.
func CachePath(cacheDir, key string) string {
	hash := md5.Sum([]byte(key)) //nolint:gosec // cache key, not security
	return filepath.Join(cacheDir, fmt.Sprintf("%x.jpg", hash))
}

// decodableExts are the formats the decode path handles without an
// external generator.
var decodableExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "webp": true, "tif": true, "tiff": true,
}

// CanDecode reports whether thumbnails can be generated for the given
// extension (lower case, no dot).
func CanDecode(ext string) bool {
	return decodableExts[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

type cacheEntry struct {
	img image.Image
	bg  color.NRGBA
}

// ImageCache holds decoded thumbnails keyed by path and height so repaints
// do not re-decode. It also computes the background color shown behind
// images with alpha.
type ImageCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewImageCache returns an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]cacheEntry)}
}

func cacheKey(path string, height int) string {
	return fmt.Sprintf("%s|%d", path, height)
}

// Get decodes the image at path fitted to the given height, caching the
// result. With overwrite set, any cached entry is replaced - used right
// after a thumbnail has been (re)generated on disk.
func (c *ImageCache) Get(path string, height int, overwrite bool) (image.Image, color.NRGBA, error) {
	key := cacheKey(path, height)

	if !overwrite {
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return e.img, e.bg, nil
		}
		c.mu.Unlock()
	}

	img, err := decodeFitted(path, height)
	if err != nil {
		return nil, color.NRGBA{}, err
	}
	bg := averageColor(img)

	c.mu.Lock()
	c.entries[key] = cacheEntry{img: img, bg: bg}
	c.mu.Unlock()

	return img, bg, nil
}

// Invalidate drops every cached entry for the given path, regardless of
// height.
func (c *ImageCache) Invalidate(path string) {
	prefix := path + "|"
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// decodeFitted loads an image scaled to fit within height x height,
// preferring decode-time shrinking via libvips when available.
func decodeFitted(path string, height int) (image.Image, error) {
	if IsVipsAvailable() {
		img, err := loadWithVips(path, height)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return imaging.Fit(img, height, height, imaging.Lanczos), nil
}

// averageColor reduces the image to a single pixel to derive the color
// painted behind the thumbnail.
func averageColor(img image.Image) color.NRGBA {
	px := imaging.Resize(img, 1, 1, imaging.Box)
	return px.NRGBAAt(0, 0)
}
