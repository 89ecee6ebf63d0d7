// Package surface describes the rendering toolkit the preview engine drives:
// image loading, region views, animated nodes and host surfaces.
package surface

import (
	"context"
	"errors"
	"image"
	"image/color"
)

var (
	ErrHandleReleased = errors.New("surface: handle released")
	ErrHandleInUse    = errors.New("surface: handle already has a node")
)

// Node is a displayable scene-graph node.
type Node interface {
	SetFrame(i int)
	SetPosition(x, y float64)
	SetScale(s float64)
	SetAnchor(ax, ay float64)
	// Len returns the number of frames the node can show.
	Len() int
}

// Handle is a reserved attachment slot on a Host. The zero handle is invalid.
type Handle uint64

// Host is a rendering surface nodes attach to.
type Host interface {
	Size() (w, h int)
	// Reserve allocates an attachment slot before any content exists.
	Reserve() Handle
	// Attach places n in slot h. It fails once h has been freed.
	Attach(h Handle, n Node) error
	// Detach removes whatever node sits in slot h.
	Detach(h Handle)
	// Free releases slot h. Repeated calls are ignored.
	Free(h Handle)
}

// Toolkit creates the images and nodes a Host displays.
type Toolkit interface {
	LoadImage(ctx context.Context, ref string) (image.Image, error)
	// RegionView returns a view of r inside img without copying pixels.
	RegionView(img image.Image, r image.Rectangle) image.Image
	NewAnimatedNode(frames []image.Image) Node
	NewPlaceholder(radius float64, c color.Color) Node
	DisposeNode(n Node)
}
