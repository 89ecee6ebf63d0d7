package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arenapreview/surface"
)

// Canvas is a fixed-size viewport that hosts nodes and draws them onto an
// offscreen image. It is driven from the game goroutine only.
type Canvas struct {
	w, h       int
	background color.Color

	offscreen *ebiten.Image
	next      surface.Handle
	reserved  map[surface.Handle]bool
	nodes     map[surface.Handle]surface.Node
}

func NewCanvas(w, h int, background color.Color) *Canvas {
	return &Canvas{
		w:          w,
		h:          h,
		background: background,
		reserved:   make(map[surface.Handle]bool),
		nodes:      make(map[surface.Handle]surface.Node),
	}
}

func (c *Canvas) Size() (int, int) { return c.w, c.h }

// SetBackground changes the fill colour behind the nodes.
func (c *Canvas) SetBackground(bg color.Color) { c.background = bg }

func (c *Canvas) Reserve() surface.Handle {
	c.next++
	c.reserved[c.next] = true
	return c.next
}

func (c *Canvas) Attach(h surface.Handle, n surface.Node) error {
	if !c.reserved[h] {
		return fmt.Errorf("%w: %d", surface.ErrHandleReleased, h)
	}
	if _, ok := c.nodes[h]; ok {
		return fmt.Errorf("%w: %d", surface.ErrHandleInUse, h)
	}
	c.nodes[h] = n
	return nil
}

func (c *Canvas) Detach(h surface.Handle) {
	delete(c.nodes, h)
}

func (c *Canvas) Free(h surface.Handle) {
	delete(c.nodes, h)
	delete(c.reserved, h)
}

// Attached returns the number of attached nodes.
func (c *Canvas) Attached() int {
	return len(c.nodes)
}

// Draw renders the canvas with its top-left corner at (x, y) on screen.
func (c *Canvas) Draw(screen *ebiten.Image, x, y float64) {
	if c == nil || screen == nil || c.w <= 0 || c.h <= 0 {
		return
	}
	if c.offscreen == nil {
		c.offscreen = ebiten.NewImage(c.w, c.h)
	}
	c.offscreen.Clear()
	if c.background != nil {
		c.offscreen.Fill(c.background)
	}
	for h := surface.Handle(1); h <= c.next; h++ {
		n, ok := c.nodes[h]
		if !ok {
			continue
		}
		if d, ok := n.(drawer); ok {
			d.draw(c.offscreen)
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	screen.DrawImage(c.offscreen, op)
}

// Dispose frees the offscreen image.
func (c *Canvas) Dispose() {
	if c == nil || c.offscreen == nil {
		return
	}
	c.offscreen.Deallocate()
	c.offscreen = nil
}
