package imaging

import (
	"image"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/pkg/errors"
)

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. The MCP server uses one cache for its lifetime so that repeated calibration
// calls (sample, mask, detect) on the same capture do not decode it every time.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Decoding goes through bild's imgio.Open, which understands PNG, JPEG and BMP.
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imgio.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load image")
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadFrame loads an image through the cache and converts it to an RGB frame.
//
// A fresh frame is returned on every call; the cached image is never exposed
// to the detector.
func (c *ImageCache) LoadFrame(path string) (Frame, error) {
	img, err := c.Load(path)
	if err != nil {
		return Frame{}, err
	}
	return FrameFromImage(img), nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// LoadFrameFile decodes an image file without caching it.
func LoadFrameFile(path string) (Frame, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return Frame{}, errors.Wrap(err, "failed to load image")
	}
	return FrameFromImage(img), nil
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return errors.Wrap(err, "failed to save image")
	}
	return nil
}
