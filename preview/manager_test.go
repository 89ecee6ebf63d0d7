package preview

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/milk9111/arenapreview/anim"
	"github.com/milk9111/arenapreview/atlas"
	"github.com/milk9111/arenapreview/loop"
	"github.com/milk9111/arenapreview/surface/surfacetest"
)

func intPtr(i int) *int {
	return &i
}

type fixture struct {
	toolkit *surfacetest.Toolkit
	loop    *loop.Loop
	manager *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := atlas.NewCatalog(
		&atlas.Descriptor{
			Type: "satyr", Kind: atlas.KindSheetGrid, Source: "satyr.png",
			CellWidth: 64, CellHeight: 64, Rows: 4, Cols: 4,
			Clips: atlas.NewClips([]string{"idle", "walk"}, map[string]atlas.Clip{
				"idle": {Row: intPtr(0), From: intPtr(0), To: intPtr(3)},
				"walk": {Row: intPtr(1), From: intPtr(0), To: intPtr(3)},
			}),
		},
		&atlas.Descriptor{
			Type: "luneblade", Kind: atlas.KindSheetGrid, Source: "luneblade.png", Frames: 6,
			Clips: atlas.NewClips([]string{"idle"}, map[string]atlas.Clip{"idle": {}}),
		},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	tk := surfacetest.NewToolkit()
	tk.SetImage("satyr.png", 256, 256)
	tk.SetImage("luneblade.png", 384, 64)
	lp := loop.New()
	reg := anim.NewRegistry(cat, tk)
	return &fixture{toolkit: tk, loop: lp, manager: NewManager(tk, reg, lp)}
}

// settle pumps the loop until inst's load result has been applied or dropped.
func (f *fixture) settle(t *testing.T, inst *Instance) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.loop.Drain()
		select {
		case <-inst.Done():
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s to resolve", inst.Character())
		}
		time.Sleep(time.Millisecond)
	}
}

// waitPosted blocks until a load result is queued on the loop without running it.
func (f *fixture) waitPosted(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.loop.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d posted results", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestAcquirePlaysClip(t *testing.T) {
	f := newFixture(t)
	host := surfacetest.NewHost(300, 300)

	inst, err := f.manager.Acquire("satyr", host, WithSpeed(1), WithAmplitude(8))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if inst.Handle() == 0 || host.Reserved() != 1 {
		t.Fatalf("expected a slot reserved at acquire time")
	}
	if len(host.Attached()) != 0 {
		t.Fatalf("nothing should attach before the load resolves")
	}
	if f.loop.Ticks() != 0 {
		t.Fatalf("no tick should be registered before the load resolves")
	}

	f.settle(t, inst)
	if inst.Status() != StatusPlaying {
		t.Fatalf("expected playing, got %v", inst.Status())
	}
	attached := host.Attached()
	if len(attached) != 1 {
		t.Fatalf("expected one attached node, got %d", len(attached))
	}
	node := attached[0]
	if node.Len() != 4 {
		t.Fatalf("expected 4 frames, got %d", node.Len())
	}
	if math.Abs(node.Scale-300.0/64.0) > 1e-9 {
		t.Fatalf("unexpected scale %v", node.Scale)
	}
	if node.AnchorX != 0.5 || node.AnchorY != 0.5 || node.X != 150 {
		t.Fatalf("expected centred node, got %+v", node)
	}

	for i := 1; i <= 4; i++ {
		f.loop.Step(1)
		if node.Frame != i%4 {
			t.Fatalf("step %d: expected frame %d, got %d", i, i%4, node.Frame)
		}
	}
	want := 150 + math.Sin(4*anim.DefaultBobRate)*8
	if math.Abs(node.Y-want) > 1e-9 {
		t.Fatalf("expected bob y=%v, got %v", want, node.Y)
	}
}

func TestAcquireValidation(t *testing.T) {
	f := newFixture(t)
	host := surfacetest.NewHost(150, 150)

	tests := []struct {
		name      string
		character string
		opts      []AcquireOption
		want      error
	}{
		{"unknown_character", "goblin", nil, anim.ErrUnknownCharacter},
		{"unknown_clip", "satyr", []AcquireOption{WithClip("nonexistent")}, anim.ErrUnknownClip},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.manager.Acquire(tc.character, host, tc.opts...); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if host.Reserved() != 0 {
				t.Fatalf("failed acquire should not reserve a slot")
			}
		})
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	host := surfacetest.NewHost(300, 300)
	inst, err := f.manager.Acquire("satyr", host)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	f.settle(t, inst)

	inst.Release()
	f.manager.Release(inst)
	inst.Release()

	if len(host.Attached()) != 0 || host.Reserved() != 0 {
		t.Fatalf("expected empty host after release")
	}
	if host.Freed() != 1 {
		t.Fatalf("expected slot freed once, got %d", host.Freed())
	}
	if f.toolkit.Disposed() != 1 {
		t.Fatalf("expected node disposed once, got %d", f.toolkit.Disposed())
	}
	if f.loop.Ticks() != 0 {
		t.Fatalf("expected tick unregistered")
	}
	if inst.Status() != StatusReleased {
		t.Fatalf("expected released, got %v", inst.Status())
	}
	if _, ok := f.manager.Bound(host); ok {
		t.Fatalf("host should have no bound instance")
	}
}

func TestReleaseBeforeLoadResolves(t *testing.T) {
	t.Run("cancelled_mid_load", func(t *testing.T) {
		f := newFixture(t)
		f.toolkit.Gate("satyr.png")
		host := surfacetest.NewHost(300, 300)

		inst, err := f.manager.Acquire("satyr", host)
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		<-f.toolkit.Started("satyr.png")
		inst.Release()
		inst.Release()
		f.settle(t, inst)

		if len(host.Attached()) != 0 || host.Reserved() != 0 {
			t.Fatalf("expected empty host")
		}
		if len(f.toolkit.Nodes()) != 0 {
			t.Fatalf("no node should be created for a cancelled load")
		}
	})

	t.Run("load_finishes_after_release", func(t *testing.T) {
		f := newFixture(t)
		host := surfacetest.NewHost(300, 300)

		inst, err := f.manager.Acquire("satyr", host)
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		f.waitPosted(t, 1)
		inst.Release()
		f.settle(t, inst)
		f.loop.Step(1)

		if len(host.Attached()) != 0 || host.Reserved() != 0 {
			t.Fatalf("late result must not touch the host")
		}
		if len(f.toolkit.Nodes()) != 0 {
			t.Fatalf("late result must not create nodes")
		}
		if f.loop.Ticks() != 0 {
			t.Fatalf("late result must not register ticks")
		}
	})
}

func TestAcquireSupersedesPreviousInstance(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T, f *fixture, host *surfacetest.Host) (*Instance, *Instance)
	}{
		{
			name: "old_attached_first",
			run: func(t *testing.T, f *fixture, host *surfacetest.Host) (*Instance, *Instance) {
				old, _ := f.manager.Acquire("satyr", host)
				f.settle(t, old)
				cur, err := f.manager.Acquire("luneblade", host, WithWholeSheet())
				if err != nil {
					t.Fatalf("acquire: %v", err)
				}
				f.settle(t, cur)
				return old, cur
			},
		},
		{
			name: "new_resolves_before_old",
			run: func(t *testing.T, f *fixture, host *surfacetest.Host) (*Instance, *Instance) {
				f.toolkit.IgnoreCancel = true
				f.toolkit.Gate("satyr.png")
				old, _ := f.manager.Acquire("satyr", host)
				<-f.toolkit.Started("satyr.png")
				cur, err := f.manager.Acquire("luneblade", host, WithWholeSheet())
				if err != nil {
					t.Fatalf("acquire: %v", err)
				}
				f.settle(t, cur)
				f.toolkit.Release("satyr.png")
				f.settle(t, old)
				return old, cur
			},
		},
		{
			name: "old_result_queued_behind_new",
			run: func(t *testing.T, f *fixture, host *surfacetest.Host) (*Instance, *Instance) {
				old, _ := f.manager.Acquire("satyr", host)
				f.waitPosted(t, 1)
				cur, err := f.manager.Acquire("luneblade", host, WithWholeSheet())
				if err != nil {
					t.Fatalf("acquire: %v", err)
				}
				f.settle(t, cur)
				f.settle(t, old)
				return old, cur
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			host := surfacetest.NewHost(300, 300)
			old, cur := c.run(t, f, host)
			f.loop.Step(1)

			if old.Status() != StatusReleased {
				t.Fatalf("expected old instance released, got %v", old.Status())
			}
			attached := host.Attached()
			if len(attached) != 1 {
				t.Fatalf("expected exactly one attached node, got %d", len(attached))
			}
			if attached[0].Len() != 6 {
				t.Fatalf("expected the luneblade node, got %d frames", attached[0].Len())
			}
			if host.Reserved() != 1 {
				t.Fatalf("expected one live slot, got %d", host.Reserved())
			}
			if bound, _ := f.manager.Bound(host); bound != cur {
				t.Fatalf("host should be bound to the new instance")
			}
			if f.loop.Ticks() != 1 {
				t.Fatalf("expected only the new instance ticking, got %d", f.loop.Ticks())
			}
		})
	}
}

func TestLoadFailureShowsPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.toolkit.SetError("satyr.png", errors.New("decode: unexpected EOF"))
	host := surfacetest.NewHost(300, 300)

	inst, err := f.manager.Acquire("satyr", host)
	if err != nil {
		t.Fatalf("load failures must not surface from acquire: %v", err)
	}
	f.settle(t, inst)
	f.loop.Step(1)

	if inst.Status() != StatusFailed {
		t.Fatalf("expected failed, got %v", inst.Status())
	}
	attached := host.Attached()
	if len(attached) != 1 || !attached[0].Placeholder {
		t.Fatalf("expected a placeholder node, got %+v", attached)
	}
	if attached[0].Color != PlaceholderColor || attached[0].Radius != PlaceholderRadius {
		t.Fatalf("unexpected placeholder %+v", attached[0])
	}
	if f.loop.Ticks() != 0 {
		t.Fatalf("placeholder should not tick")
	}

	inst.Release()
	if len(host.Attached()) != 0 || f.toolkit.Disposed() != 1 {
		t.Fatalf("placeholder should be detached and disposed on release")
	}
}

func TestDegenerateClipEndToEnd(t *testing.T) {
	f := newFixture(t)
	host := surfacetest.NewHost(300, 300)

	inst, err := f.manager.Acquire("luneblade", host)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	f.settle(t, inst)
	f.loop.Step(1)

	if inst.Status() != StatusIdle {
		t.Fatalf("expected idle, got %v", inst.Status())
	}
	if st := inst.Controller().State(); st != anim.StateIdle {
		t.Fatalf("expected idle controller, got %v", st)
	}
	attached := host.Attached()
	if len(attached) != 1 || attached[0].Len() != 0 || attached[0].Placeholder {
		t.Fatalf("expected one zero-frame node, got %+v", attached)
	}
	if f.loop.Ticks() != 0 {
		t.Fatalf("idle instance should not tick")
	}

	whole, err := f.manager.Acquire("luneblade", host, WithWholeSheet(), WithSpeed(1))
	if err != nil {
		t.Fatalf("acquire whole sheet: %v", err)
	}
	f.settle(t, whole)
	node := host.Attached()[0]
	if node.Len() != 6 {
		t.Fatalf("expected 6 strip frames, got %d", node.Len())
	}
	// cell width is the image width over the strip frame count
	if b := node.Frames[5].Bounds(); b.Min.X != 320 || b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("unexpected last frame bounds %v", b)
	}
	f.loop.Step(1)
	if node.Frame != 1 {
		t.Fatalf("expected frame 1, got %d", node.Frame)
	}
}

func TestReleaseDuringStep(t *testing.T) {
	f := newFixture(t)
	host := surfacetest.NewHost(300, 300)

	var inst *Instance
	f.loop.Register(func(float64) {
		if inst != nil && inst.Status() == StatusPlaying {
			inst.Release()
		}
	})

	var err error
	inst, err = f.manager.Acquire("satyr", host, WithSpeed(1))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	f.settle(t, inst)
	node := host.Attached()[0]

	f.loop.Step(1)
	if node.Frame != 0 {
		t.Fatalf("released instance ticked after release, frame %d", node.Frame)
	}
	if len(host.Attached()) != 0 || host.Freed() != 1 {
		t.Fatalf("expected host cleared")
	}
}

func TestManagerClose(t *testing.T) {
	f := newFixture(t)
	a := surfacetest.NewHost(150, 150)
	b := surfacetest.NewHost(150, 150)

	ia, _ := f.manager.Acquire("satyr", a, SelectorOptions(2)...)
	ib, _ := f.manager.Acquire("luneblade", b, SelectorOptions(1)...)
	f.settle(t, ia)
	f.settle(t, ib)
	if f.manager.Live() != 2 {
		t.Fatalf("expected 2 live instances, got %d", f.manager.Live())
	}
	if s := a.Attached()[0].Scale; math.Abs(s-120.0/64.0*2) > 1e-9 {
		t.Fatalf("expected selector fit scale, got %v", s)
	}

	f.manager.Close()
	if f.manager.Live() != 0 || len(a.Attached()) != 0 || len(b.Attached()) != 0 {
		t.Fatalf("expected all hosts cleared")
	}
}
