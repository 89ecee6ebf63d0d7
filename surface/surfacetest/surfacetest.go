// Package surfacetest provides in-memory surface implementations for tests.
package surfacetest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/milk9111/arenapreview/surface"
)

var ErrNotFound = errors.New("surfacetest: image not found")

// Node records what the engine did to it.
type Node struct {
	Frames      []image.Image
	Frame       int
	X, Y        float64
	Scale       float64
	AnchorX     float64
	AnchorY     float64
	Placeholder bool
	Color       color.Color
	Radius      float64
	Disposed    int
}

func (n *Node) SetFrame(i int)           { n.Frame = i }
func (n *Node) SetPosition(x, y float64) { n.X, n.Y = x, y }
func (n *Node) SetScale(s float64)       { n.Scale = s }
func (n *Node) SetAnchor(ax, ay float64) { n.AnchorX, n.AnchorY = ax, ay }
func (n *Node) Len() int                 { return len(n.Frames) }

// Host is a surface that tracks reserved slots and attached nodes.
type Host struct {
	W, H int

	mu       sync.Mutex
	next     surface.Handle
	reserved map[surface.Handle]bool
	attached map[surface.Handle]surface.Node
	freed    int
}

func NewHost(w, h int) *Host {
	return &Host{
		W:        w,
		H:        h,
		reserved: make(map[surface.Handle]bool),
		attached: make(map[surface.Handle]surface.Node),
	}
}

func (h *Host) Size() (int, int) { return h.W, h.H }

func (h *Host) Reserve() surface.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.reserved[h.next] = true
	return h.next
}

func (h *Host) Attach(handle surface.Handle, n surface.Node) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.reserved[handle] {
		return fmt.Errorf("%w: %d", surface.ErrHandleReleased, handle)
	}
	if _, ok := h.attached[handle]; ok {
		return fmt.Errorf("%w: %d", surface.ErrHandleInUse, handle)
	}
	h.attached[handle] = n
	return nil
}

func (h *Host) Detach(handle surface.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.attached, handle)
}

func (h *Host) Free(handle surface.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.reserved[handle] {
		return
	}
	delete(h.reserved, handle)
	delete(h.attached, handle)
	h.freed++
}

// Attached returns the attached nodes.
func (h *Host) Attached() []*Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Node, 0, len(h.attached))
	for _, n := range h.attached {
		if tn, ok := n.(*Node); ok {
			out = append(out, tn)
		}
	}
	return out
}

// Reserved returns the number of live slots.
func (h *Host) Reserved() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.reserved)
}

// Freed returns how many slots have been freed.
func (h *Host) Freed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.freed
}

// Toolkit serves images of fixed sizes. Loads of a gated ref block until
// Release(ref), or context cancellation unless IgnoreCancel is set.
type Toolkit struct {
	IgnoreCancel bool

	mu       sync.Mutex
	sizes    map[string]image.Point
	errs     map[string]error
	gates    map[string]chan struct{}
	started  map[string]chan struct{}
	loads    map[string]int
	nodes    []*Node
	disposed int
}

func NewToolkit() *Toolkit {
	return &Toolkit{
		sizes:   make(map[string]image.Point),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
		started: make(map[string]chan struct{}),
		loads:   make(map[string]int),
	}
}

// SetImage makes ref load as an image of the given size.
func (tk *Toolkit) SetImage(ref string, w, h int) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.sizes[ref] = image.Pt(w, h)
}

// SetError makes ref fail to load.
func (tk *Toolkit) SetError(ref string, err error) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.errs[ref] = err
}

// Gate makes loads of ref block until Release(ref).
func (tk *Toolkit) Gate(ref string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.gates[ref] = make(chan struct{})
	tk.started[ref] = make(chan struct{})
}

// Started returns a channel closed once a gated load of ref has begun.
func (tk *Toolkit) Started(ref string) <-chan struct{} {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.started[ref]
}

// Release unblocks gated loads of ref.
func (tk *Toolkit) Release(ref string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	if g, ok := tk.gates[ref]; ok {
		close(g)
		delete(tk.gates, ref)
	}
}

func (tk *Toolkit) LoadImage(ctx context.Context, ref string) (image.Image, error) {
	tk.mu.Lock()
	tk.loads[ref]++
	gate := tk.gates[ref]
	if started, ok := tk.started[ref]; ok {
		select {
		case <-started:
		default:
			close(started)
		}
	}
	tk.mu.Unlock()

	if gate != nil {
		done := ctx.Done()
		if tk.IgnoreCancel {
			done = nil
		}
		select {
		case <-gate:
		case <-done:
			return nil, ctx.Err()
		}
	}

	tk.mu.Lock()
	defer tk.mu.Unlock()
	if err := tk.errs[ref]; err != nil {
		return nil, err
	}
	size, ok := tk.sizes[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return image.NewAlpha(image.Rectangle{Max: size}), nil
}

// Loads returns how many times ref was requested.
func (tk *Toolkit) Loads(ref string) int {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.loads[ref]
}

func (tk *Toolkit) RegionView(img image.Image, r image.Rectangle) image.Image {
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	return img
}

func (tk *Toolkit) NewAnimatedNode(frames []image.Image) surface.Node {
	n := &Node{Frames: frames, Scale: 1}
	tk.track(n)
	return n
}

func (tk *Toolkit) NewPlaceholder(radius float64, c color.Color) surface.Node {
	n := &Node{Placeholder: true, Radius: radius, Color: c, Scale: 1}
	tk.track(n)
	return n
}

func (tk *Toolkit) DisposeNode(n surface.Node) {
	tn, ok := n.(*Node)
	if !ok {
		return
	}
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tn.Disposed++
	tk.disposed++
}

func (tk *Toolkit) track(n *Node) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.nodes = append(tk.nodes, n)
}

// Nodes returns every node created so far.
func (tk *Toolkit) Nodes() []*Node {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return append([]*Node(nil), tk.nodes...)
}

// Disposed returns the total number of DisposeNode calls.
func (tk *Toolkit) Disposed() int {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.disposed
}
