package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type drawer interface {
	draw(dst *ebiten.Image)
}

// Sprite shows one frame of a sequence, anchored and scaled around (x, y).
type Sprite struct {
	frames   []*ebiten.Image
	frame    int
	x, y     float64
	scale    float64
	ax, ay   float64
	disposed bool
}

func (s *Sprite) SetFrame(i int) {
	if i < 0 || i >= len(s.frames) {
		return
	}
	s.frame = i
}

func (s *Sprite) SetPosition(x, y float64) { s.x, s.y = x, y }
func (s *Sprite) SetScale(v float64)       { s.scale = v }
func (s *Sprite) SetAnchor(ax, ay float64) { s.ax, s.ay = ax, ay }
func (s *Sprite) Len() int                 { return len(s.frames) }

func (s *Sprite) draw(dst *ebiten.Image) {
	if s.disposed || len(s.frames) == 0 {
		return
	}
	img := s.frames[s.frame]
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.ax*float64(b.Dx()), -s.ay*float64(b.Dy()))
	op.GeoM.Scale(s.scale, s.scale)
	op.GeoM.Translate(s.x, s.y)
	op.Filter = ebiten.FilterNearest
	dst.DrawImage(img, op)
}

// Placeholder is a filled circle shown when a character failed to load.
type Placeholder struct {
	radius   float64
	color    color.Color
	x, y     float64
	scale    float64
	disposed bool
}

func (p *Placeholder) SetFrame(int)               {}
func (p *Placeholder) SetPosition(x, y float64)   { p.x, p.y = x, y }
func (p *Placeholder) SetScale(v float64)         { p.scale = v }
func (p *Placeholder) SetAnchor(float64, float64) {}
func (p *Placeholder) Len() int                   { return 0 }

func (p *Placeholder) draw(dst *ebiten.Image) {
	if p.disposed {
		return
	}
	vector.FillCircle(dst, float32(p.x), float32(p.y), float32(p.radius*p.scale), p.color, true)
}
