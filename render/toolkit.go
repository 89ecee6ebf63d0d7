// Package render implements the surface toolkit on top of ebiten.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arenapreview/surface"
)

// Toolkit loads images into ebiten and builds nodes for a Canvas.
type Toolkit struct {
	images   *ImageCache
	client   *http.Client
	assetDir string
	embedded bool
}

type ToolkitOption func(*Toolkit)

// WithAssetDir looks for images on disk under dir.
func WithAssetDir(dir string) ToolkitOption {
	return func(t *Toolkit) { t.assetDir = dir }
}

// WithoutEmbedded skips the embedded assets.
func WithoutEmbedded() ToolkitOption {
	return func(t *Toolkit) { t.embedded = false }
}

// WithHTTPClient sets the client used for http(s) image refs.
func WithHTTPClient(c *http.Client) ToolkitOption {
	return func(t *Toolkit) {
		if c != nil {
			t.client = c
		}
	}
}

func NewToolkit(opts ...ToolkitOption) *Toolkit {
	t := &Toolkit{
		images:   NewImageCache(),
		client:   &http.Client{Timeout: 15 * time.Second},
		embedded: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Images returns the decoded image cache.
func (t *Toolkit) Images() *ImageCache {
	return t.images
}

// LoadImage loads and caches ref. Safe for concurrent use.
func (t *Toolkit) LoadImage(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty image ref")
	}
	if img := t.images.Get(ref); img != nil {
		return img, nil
	}
	b, err := t.readSource(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := decode(ref, b)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImageFromImage(src)
	t.images.Register(ref, img)
	return img, nil
}

// RegionView returns a SubImage sharing img's pixels.
func (t *Toolkit) RegionView(img image.Image, r image.Rectangle) image.Image {
	return toEbiten(img).SubImage(r)
}

func (t *Toolkit) NewAnimatedNode(frames []image.Image) surface.Node {
	s := &Sprite{scale: 1}
	s.frames = make([]*ebiten.Image, 0, len(frames))
	for _, f := range frames {
		if f == nil {
			continue
		}
		s.frames = append(s.frames, toEbiten(f))
	}
	return s
}

func (t *Toolkit) NewPlaceholder(radius float64, c color.Color) surface.Node {
	return &Placeholder{radius: radius, color: c, scale: 1}
}

// DisposeNode drops the node's frame views. The shared source image stays in
// the cache for other nodes.
func (t *Toolkit) DisposeNode(n surface.Node) {
	switch n := n.(type) {
	case *Sprite:
		n.frames = nil
		n.disposed = true
	case *Placeholder:
		n.disposed = true
	}
}

func toEbiten(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	return ebiten.NewImageFromImage(img)
}
