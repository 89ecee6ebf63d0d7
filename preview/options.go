package preview

import (
	"image/color"

	"github.com/milk9111/arenapreview/anim"
)

const (
	// DefaultClip is the clip played when none is requested.
	DefaultClip = "idle"

	PlaceholderRadius = 50.0
)

// PlaceholderColor fills the fallback circle shown when a load fails.
var PlaceholderColor = color.NRGBA{R: 0x45, G: 0xb7, B: 0xd1, A: 0xff}

type acquireConfig struct {
	clip      string
	speed     float64
	bobRate   float64
	amplitude float64
	scale     float64
	fit       float64
}

func defaultAcquireConfig() acquireConfig {
	return acquireConfig{
		clip:      DefaultClip,
		speed:     anim.DefaultSpeed,
		bobRate:   anim.DefaultBobRate,
		amplitude: anim.DefaultAmplitude,
		scale:     1,
	}
}

// AcquireOption tunes one Acquire call.
type AcquireOption func(*acquireConfig)

// WithClip plays the named clip. anim.WholeSheet plays the descriptor's full
// layout instead.
func WithClip(name string) AcquireOption {
	return func(c *acquireConfig) { c.clip = name }
}

// WithWholeSheet plays every frame of the descriptor's layout.
func WithWholeSheet() AcquireOption {
	return WithClip(anim.WholeSheet)
}

func WithSpeed(speed float64) AcquireOption {
	return func(c *acquireConfig) { c.speed = speed }
}

func WithBobRate(rate float64) AcquireOption {
	return func(c *acquireConfig) { c.bobRate = rate }
}

func WithAmplitude(amplitude float64) AcquireOption {
	return func(c *acquireConfig) { c.amplitude = amplitude }
}

// WithScale multiplies the fitted scale.
func WithScale(scale float64) AcquireOption {
	return func(c *acquireConfig) {
		if scale > 0 {
			c.scale = scale
		}
	}
}

// WithFit fits the first frame into a size x size box instead of the host.
func WithFit(size float64) AcquireOption {
	return func(c *acquireConfig) { c.fit = size }
}

// RendererOptions mirror the full-size character renderer: whole layout,
// speed 0.1, 8 unit bob.
func RendererOptions(scale float64) []AcquireOption {
	return []AcquireOption{WithWholeSheet(), WithSpeed(0.1), WithAmplitude(8), WithScale(scale)}
}

// SelectorOptions mirror the selector card preview: idle clip fitted to
// 120 units, speed 0.12, 5 unit bob.
func SelectorOptions(scale float64) []AcquireOption {
	return []AcquireOption{WithClip(DefaultClip), WithSpeed(0.12), WithAmplitude(5), WithFit(120), WithScale(scale)}
}
