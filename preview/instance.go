package preview

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"

	"github.com/milk9111/arenapreview/anim"
	"github.com/milk9111/arenapreview/loop"
	"github.com/milk9111/arenapreview/surface"
)

// Status is an Instance's lifecycle stage.
type Status int

const (
	StatusLoading Status = iota
	// StatusIdle means content is attached but the clip has no frames.
	StatusIdle
	StatusPlaying
	// StatusFailed means the load failed and a placeholder is shown.
	StatusFailed
	StatusReleased
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusFailed:
		return "failed"
	case StatusReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Instance is one animated character bound to one host slot.
type Instance struct {
	manager   *Manager
	character string
	host      surface.Host
	handle    surface.Handle
	cfg       acquireConfig
	cancel    context.CancelFunc
	done      chan struct{}
	doneOnce  sync.Once
	release   sync.Once

	mu         sync.Mutex
	status     Status
	superseded bool
	controller *anim.Controller
	node       surface.Node
	tick       loop.TickHandle
	centerX    float64
}

// Character returns the character type this instance was acquired for.
func (i *Instance) Character() string { return i.character }

// Handle returns the host slot reserved at acquire time.
func (i *Instance) Handle() surface.Handle { return i.handle }

func (i *Instance) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}

// Controller returns the playback controller, or nil before content attaches.
func (i *Instance) Controller() *anim.Controller {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.controller
}

// Node returns the attached node, or nil.
func (i *Instance) Node() surface.Node {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.node
}

// Done is closed once the load result has been applied or discarded.
func (i *Instance) Done() <-chan struct{} {
	return i.done
}

// Release stops the tick, detaches and disposes the node and frees the host
// slot. It runs once; later calls and calls before the load resolves are safe.
func (i *Instance) Release() {
	if i == nil {
		return
	}
	i.release.Do(func() {
		i.cancel()

		i.mu.Lock()
		i.superseded = true
		i.status = StatusReleased
		tick := i.tick
		node := i.node
		ctrl := i.controller
		i.tick = 0
		i.node = nil
		i.mu.Unlock()

		i.manager.loop.Unregister(tick)
		if node != nil {
			i.host.Detach(i.handle)
			i.manager.toolkit.DisposeNode(node)
		}
		if ctrl != nil {
			ctrl.Dispose()
		}
		i.host.Free(i.handle)
		i.manager.unbind(i)
	})
}

func (i *Instance) finish() {
	i.doneOnce.Do(func() { close(i.done) })
}

// resolve runs on the loop with the load result. The superseded flag is
// checked before anything touches the host.
func (i *Instance) resolve(set *anim.AnimationSet, err error) {
	defer i.finish()

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.superseded {
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("preview: load %s: %v", i.character, err)
		i.attachPlaceholder()
		return
	}

	frames, err := set.Lookup(i.cfg.clip)
	if err != nil {
		log.Printf("preview: %s: %v", i.character, err)
		i.attachPlaceholder()
		return
	}

	m := i.manager
	views := m.regionViews(set, frames)
	if len(views) != len(frames) {
		frames = nil
		views = nil
	}

	w, h := i.host.Size()
	cx, cy := float64(w)/2, float64(h)/2
	ctrl := anim.NewController(
		anim.WithSpeed(i.cfg.speed),
		anim.WithBobRate(i.cfg.bobRate),
		anim.WithAmplitude(i.cfg.amplitude),
		anim.WithBaseY(cy),
	)

	node := m.toolkit.NewAnimatedNode(views)
	node.SetAnchor(0.5, 0.5)
	node.SetPosition(cx, cy)
	if len(frames) > 0 {
		node.SetScale(i.fitScale(frames[0], w, h))
	}
	if err := i.host.Attach(i.handle, node); err != nil {
		log.Printf("preview: attach %s: %v", i.character, err)
		m.toolkit.DisposeNode(node)
		return
	}

	i.node = node
	i.controller = ctrl
	i.centerX = cx
	if ctrl.Play(frames) != anim.StatePlaying {
		i.status = StatusIdle
		return
	}
	i.status = StatusPlaying
	node.SetFrame(0)
	i.tick = m.loop.Register(i.advance)
}

func (i *Instance) fitScale(f anim.FrameRegion, w, h int) float64 {
	bw, bh := float64(w), float64(h)
	if i.cfg.fit > 0 {
		bw, bh = i.cfg.fit, i.cfg.fit
	}
	return math.Min(bw/float64(f.Width), bh/float64(f.Height)) * i.cfg.scale
}

func (i *Instance) attachPlaceholder() {
	m := i.manager
	w, h := i.host.Size()
	node := m.toolkit.NewPlaceholder(m.placeholderRadius, m.placeholderColor)
	node.SetPosition(float64(w)/2, float64(h)/2)
	if err := i.host.Attach(i.handle, node); err != nil {
		m.toolkit.DisposeNode(node)
		return
	}
	i.node = node
	i.status = StatusFailed
}

func (i *Instance) advance(dt float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.superseded || i.controller == nil || i.node == nil {
		return
	}
	if i.controller.Advance(dt) {
		i.node.SetFrame(i.controller.Index())
	}
	i.node.SetPosition(i.centerX, i.controller.Y())
}
