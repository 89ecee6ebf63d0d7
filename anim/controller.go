package anim

import "math"

// State is a controller's playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

const (
	DefaultSpeed     = 0.1
	DefaultBobRate   = 0.05
	DefaultAmplitude = 8.0

	// accumulator slack so that e.g. ten steps of 0.1 still count as one frame
	frameEpsilon = 1e-9
)

// Controller drives one playing clip: a looping frame index advanced by a
// fractional accumulator, and a sine bob driven by the same clock.
type Controller struct {
	frames    []FrameRegion
	index     int
	speed     float64
	acc       float64
	elapsed   float64
	bobRate   float64
	amplitude float64
	baseY     float64
	state     State
}

type ControllerOption func(*Controller)

// WithSpeed sets frames advanced per unit of tick delta.
func WithSpeed(speed float64) ControllerOption {
	return func(c *Controller) {
		if speed >= 0 {
			c.speed = speed
		}
	}
}

// WithBobRate sets bob phase advanced per unit of tick delta.
func WithBobRate(rate float64) ControllerOption {
	return func(c *Controller) { c.bobRate = rate }
}

// WithAmplitude sets the bob amplitude in surface units.
func WithAmplitude(amplitude float64) ControllerOption {
	return func(c *Controller) { c.amplitude = amplitude }
}

// WithBaseY sets the resting vertical position.
func WithBaseY(y float64) ControllerOption {
	return func(c *Controller) { c.baseY = y }
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		speed:     DefaultSpeed,
		bobRate:   DefaultBobRate,
		amplitude: DefaultAmplitude,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Play selects a frame sequence and restarts at frame 0. An empty sequence
// leaves the controller idle.
func (c *Controller) Play(frames []FrameRegion) State {
	if c == nil || c.state == StateDisposed {
		return StateDisposed
	}
	c.frames = frames
	c.index = 0
	c.acc = 0
	if len(frames) == 0 {
		c.state = StateIdle
	} else {
		c.state = StatePlaying
	}
	return c.state
}

// Advance steps the clock by dt and reports whether the frame index changed.
func (c *Controller) Advance(dt float64) bool {
	if c == nil || c.state == StateDisposed || dt <= 0 {
		return false
	}
	c.elapsed += dt * c.bobRate
	if c.state != StatePlaying {
		return false
	}

	prev := c.index
	c.acc += dt * c.speed
	for c.acc >= 1-frameEpsilon {
		c.index = (c.index + 1) % len(c.frames)
		c.acc--
	}
	if c.acc < 0 {
		c.acc = 0
	}
	return c.index != prev
}

// Index returns the current frame index.
func (c *Controller) Index() int {
	if c == nil {
		return 0
	}
	return c.index
}

// Frame returns the current frame region.
func (c *Controller) Frame() (FrameRegion, bool) {
	if c == nil || c.state != StatePlaying {
		return FrameRegion{}, false
	}
	return c.frames[c.index], true
}

// Len returns the number of frames in the selected sequence.
func (c *Controller) Len() int {
	if c == nil {
		return 0
	}
	return len(c.frames)
}

func (c *Controller) State() State {
	if c == nil {
		return StateDisposed
	}
	return c.state
}

// Elapsed returns the bob clock.
func (c *Controller) Elapsed() float64 {
	if c == nil {
		return 0
	}
	return c.elapsed
}

// Y returns baseY offset by the bob at the current clock.
func (c *Controller) Y() float64 {
	if c == nil {
		return 0
	}
	return c.baseY + math.Sin(c.elapsed)*c.amplitude
}

// Dispose stops playback for good. Safe to call more than once.
func (c *Controller) Dispose() {
	if c == nil {
		return
	}
	c.state = StateDisposed
	c.frames = nil
}
