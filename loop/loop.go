// Package loop is a single-threaded cooperative scheduler. Work finished on
// other goroutines is handed back with Post and runs on the next Step, before
// that step's tick callbacks.
package loop

import "sync"

// TickFunc is called once per step with the elapsed delta.
type TickFunc func(dt float64)

// TickHandle identifies a registered tick. The zero handle is never issued.
type TickHandle uint64

type tickEntry struct {
	handle TickHandle
	fn     TickFunc
}

// Loop owns posted completions and tick callbacks. Post, Register and
// Unregister may be called from any goroutine; Step must be called from one.
type Loop struct {
	mu     sync.Mutex
	posted []func()
	ticks  []tickEntry
	live   map[TickHandle]struct{}
	next   TickHandle
	steps  uint64
}

func New() *Loop {
	return &Loop{live: make(map[TickHandle]struct{})}
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) {
	if l == nil || fn == nil {
		return
	}
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Register adds a tick callback. A callback registered from a posted
// completion fires in the same Step, after the drain; one registered from
// inside a tick first fires on the next Step.
func (l *Loop) Register(fn TickFunc) TickHandle {
	if l == nil || fn == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	h := l.next
	l.ticks = append(l.ticks, tickEntry{handle: h, fn: fn})
	l.live[h] = struct{}{}
	return h
}

// Unregister removes a tick callback. A callback removed during a Step does
// not fire later in that Step. Unknown or repeated handles are ignored.
func (l *Loop) Unregister(h TickHandle) {
	if l == nil || h == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.live[h]; !ok {
		return
	}
	delete(l.live, h)
	for i, t := range l.ticks {
		if t.handle == h {
			l.ticks = append(l.ticks[:i], l.ticks[i+1:]...)
			break
		}
	}
}

// Drain runs the completions posted so far and returns how many ran.
// Completions posted while draining wait for the next call.
func (l *Loop) Drain() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
	return len(posted)
}

// Step drains posted completions, then fires every live tick once.
func (l *Loop) Step(dt float64) {
	if l == nil {
		return
	}
	l.Drain()

	l.mu.Lock()
	l.steps++
	ticks := append([]tickEntry(nil), l.ticks...)
	l.mu.Unlock()

	for _, t := range ticks {
		if !l.alive(t.handle) {
			continue
		}
		t.fn(dt)
	}
}

// Pending returns the number of queued completions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posted)
}

// Ticks returns the number of live tick callbacks.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// Steps returns how many times Step has run.
func (l *Loop) Steps() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.steps
}

func (l *Loop) alive(h TickHandle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.live[h]
	return ok
}
