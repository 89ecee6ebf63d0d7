package render

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ImageCache holds decoded images by reference. Loads run off the game loop,
// so access is locked.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*ebiten.Image
}

func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]*ebiten.Image)}
}

// Register stores an image by key.
func (c *ImageCache) Register(key string, img *ebiten.Image) {
	if c == nil || key == "" || img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[key] = img
}

// Get returns a cached image by key.
func (c *ImageCache) Get(key string) *ebiten.Image {
	if c == nil || key == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.images[key]
}

// Clear forgets every cached image. Views already handed out stay valid.
func (c *ImageCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]*ebiten.Image)
}

func (c *ImageCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
