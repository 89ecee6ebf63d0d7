// Package preview binds animated characters to host surfaces and owns their
// lifecycle: acquire starts an asynchronous load, release tears everything
// down exactly once, whatever state the load is in.
package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/milk9111/arenapreview/anim"
	"github.com/milk9111/arenapreview/loop"
	"github.com/milk9111/arenapreview/surface"
)

// Manager hands out Instances and keeps at most one live Instance per host.
type Manager struct {
	toolkit  surface.Toolkit
	registry *anim.Registry
	loop     *loop.Loop

	placeholderColor  color.Color
	placeholderRadius float64

	mu    sync.Mutex
	hosts map[surface.Host]*Instance
}

type ManagerOption func(*Manager)

// WithPlaceholder sets the fallback circle drawn when a load fails.
func WithPlaceholder(radius float64, c color.Color) ManagerOption {
	return func(m *Manager) {
		if radius > 0 {
			m.placeholderRadius = radius
		}
		if c != nil {
			m.placeholderColor = c
		}
	}
}

func NewManager(toolkit surface.Toolkit, registry *anim.Registry, lp *loop.Loop, opts ...ManagerOption) *Manager {
	m := &Manager{
		toolkit:           toolkit,
		registry:          registry,
		loop:              lp,
		placeholderColor:  PlaceholderColor,
		placeholderRadius: PlaceholderRadius,
		hosts:             make(map[surface.Host]*Instance),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire binds characterType to host. Unknown characters and clips fail
// immediately. Any instance already bound to host is released first. The
// returned Instance holds a reserved slot on host right away; content is
// attached once the load completes on the loop.
func (m *Manager) Acquire(characterType string, host surface.Host, opts ...AcquireOption) (*Instance, error) {
	if host == nil {
		return nil, fmt.Errorf("preview: nil host")
	}
	cfg := defaultAcquireConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	desc, err := m.registry.Descriptor(characterType)
	if err != nil {
		return nil, err
	}
	if cfg.clip != anim.WholeSheet {
		if _, ok := desc.Clips.Get(cfg.clip); !ok {
			return nil, fmt.Errorf("%w: %s/%s", anim.ErrUnknownClip, characterType, cfg.clip)
		}
	}

	m.mu.Lock()
	prev := m.hosts[host]
	delete(m.hosts, host)
	m.mu.Unlock()
	if prev != nil {
		prev.Release()
	}

	ctx, cancel := context.WithCancel(context.Background())
	inst := &Instance{
		manager:   m,
		character: characterType,
		host:      host,
		handle:    host.Reserve(),
		cfg:       cfg,
		cancel:    cancel,
		done:      make(chan struct{}),
		status:    StatusLoading,
	}

	m.mu.Lock()
	m.hosts[host] = inst
	m.mu.Unlock()

	go m.load(ctx, inst)
	return inst, nil
}

// Release is shorthand for inst.Release().
func (m *Manager) Release(inst *Instance) {
	inst.Release()
}

// Bound returns the live instance on host, if any.
func (m *Manager) Bound(host surface.Host) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.hosts[host]
	return inst, ok
}

// Live returns the number of hosts with a live instance.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hosts)
}

// Close releases every live instance.
func (m *Manager) Close() {
	m.mu.Lock()
	insts := make([]*Instance, 0, len(m.hosts))
	for _, inst := range m.hosts {
		insts = append(insts, inst)
	}
	m.mu.Unlock()
	for _, inst := range insts {
		inst.Release()
	}
}

func (m *Manager) unbind(inst *Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hosts[inst.host] == inst {
		delete(m.hosts, inst.host)
	}
}

// load runs off the loop. Its result is always handed back through Post so
// every surface mutation happens on the loop.
func (m *Manager) load(ctx context.Context, inst *Instance) {
	set, err := m.registry.Build(ctx, inst.character)
	m.loop.Post(func() {
		inst.resolve(set, err)
	})
}

func (m *Manager) regionViews(set *anim.AnimationSet, frames []anim.FrameRegion) []image.Image {
	views := make([]image.Image, 0, len(frames))
	for _, f := range frames {
		img := set.Image(f.Source)
		if img == nil {
			continue
		}
		views = append(views, m.toolkit.RegionView(img, f.Rect()))
	}
	return views
}
