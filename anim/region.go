package anim

import "image"

// FrameRegion is one frame's rectangle inside a loaded source image.
type FrameRegion struct {
	Source string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the region as an image rectangle.
func (r FrameRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region covers no pixels.
func (r FrameRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// within reports whether r lies entirely inside an image of the given size.
func (r FrameRegion) within(size image.Point) bool {
	if r.Empty() || r.X < 0 || r.Y < 0 {
		return false
	}
	return r.X+r.Width <= size.X && r.Y+r.Height <= size.Y
}
