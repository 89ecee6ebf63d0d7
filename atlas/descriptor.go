package atlas

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownCharacter  = errors.New("atlas: unknown character")
	ErrInvalidDescriptor = errors.New("atlas: invalid descriptor")
)

// Kind selects how a descriptor's source is split into frames.
type Kind string

const (
	// KindSheetGrid is a single image cut into fixed-size cells.
	KindSheetGrid Kind = "sheet"
	// KindFileList uses one image file per frame.
	KindFileList Kind = "files"
)

// Clip is a named animation. Sheet clips use Row/From/To, file clips use Files.
// Nil fields are unset; a sheet clip with any unset field or From > To is
// degenerate and resolves to no frames.
type Clip struct {
	Row   *int     `yaml:"row"`
	From  *int     `yaml:"from"`
	To    *int     `yaml:"to"`
	Files []string `yaml:"files"`
}

// Degenerate reports whether a sheet clip cannot produce any frame.
func (c Clip) Degenerate() bool {
	if c.Row == nil || c.From == nil || c.To == nil {
		return true
	}
	return *c.Row < 0 || *c.From < 0 || *c.From > *c.To
}

// Clips keeps clips in document order.
type Clips struct {
	order  []string
	byName map[string]Clip
}

// NewClips builds an ordered clip table. Later duplicates replace earlier ones
// but keep the first position.
func NewClips(names []string, clips map[string]Clip) Clips {
	var c Clips
	for _, name := range names {
		c.set(name, clips[name])
	}
	return c
}

func (c *Clips) set(name string, clip Clip) {
	if c.byName == nil {
		c.byName = make(map[string]Clip)
	}
	if _, ok := c.byName[name]; !ok {
		c.order = append(c.order, name)
	}
	c.byName[name] = clip
}

// Names returns clip names in declaration order.
func (c Clips) Names() []string {
	return append([]string(nil), c.order...)
}

// Get returns a clip by name.
func (c Clips) Get(name string) (Clip, bool) {
	clip, ok := c.byName[name]
	return clip, ok
}

// Len returns the number of clips.
func (c Clips) Len() int { return len(c.order) }

func (c *Clips) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("clips must be a mapping")
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		if _, dup := c.byName[name]; dup {
			return fmt.Errorf("duplicate clip %q", name)
		}
		node := value.Content[i+1]
		var clip Clip
		switch node.Kind {
		case yaml.SequenceNode:
			// files shorthand: walk: [a.png, b.png]
			if err := node.Decode(&clip.Files); err != nil {
				return fmt.Errorf("clip %q: %w", name, err)
			}
		default:
			if err := node.Decode(&clip); err != nil {
				return fmt.Errorf("clip %q: %w", name, err)
			}
		}
		c.set(name, clip)
	}
	return nil
}

// Descriptor declares one character's sprite source and its clips.
type Descriptor struct {
	Type         string  `yaml:"type"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Color        *Color  `yaml:"color"`
	Kind         Kind    `yaml:"kind"`
	Source       string  `yaml:"source"`
	CellWidth    int     `yaml:"cell_width"`
	CellHeight   int     `yaml:"cell_height"`
	Rows         int     `yaml:"rows"`
	Cols         int     `yaml:"cols"`
	Frames       int     `yaml:"frames"`
	Scale        float64 `yaml:"scale"`
	PreviewScale float64 `yaml:"preview_scale"`
	Clips        Clips   `yaml:"clips"`
}

// Grid reports whether rows and columns are both known.
func (d *Descriptor) Grid() bool {
	return d != nil && d.Rows > 0 && d.Cols > 0
}

// Strip reports whether only a horizontal frame count is known.
func (d *Descriptor) Strip() bool {
	return d != nil && !d.Grid() && d.Frames > 0
}

// HasLayout reports whether the whole sheet can be sliced without a clip.
func (d *Descriptor) HasLayout() bool {
	return d.Grid() || d.Strip()
}

// RendererScale returns the renderer size multiplier, defaulting to 1.
func (d *Descriptor) RendererScale() float64 {
	if d == nil || d.Scale <= 0 {
		return 1
	}
	return d.Scale
}

// SelectorScale returns the selector preview multiplier, defaulting to 1.
func (d *Descriptor) SelectorScale() float64 {
	if d == nil || d.PreviewScale <= 0 {
		return 1
	}
	return d.PreviewScale
}

// Refs returns every image reference the descriptor needs, in first-use order.
func (d *Descriptor) Refs() []string {
	if d == nil {
		return nil
	}
	if d.Kind != KindFileList {
		if d.Source == "" {
			return nil
		}
		return []string{d.Source}
	}
	seen := make(map[string]struct{})
	var refs []string
	for _, name := range d.Clips.order {
		for _, f := range d.Clips.byName[name].Files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			refs = append(refs, f)
		}
	}
	return refs
}

// Validate checks the structural invariants of a descriptor.
func (d *Descriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	switch d.Kind {
	case KindSheetGrid:
		if d.Source == "" {
			return fmt.Errorf("%w: %s: missing source", ErrInvalidDescriptor, d.Type)
		}
		if d.CellWidth < 0 || d.CellHeight < 0 || d.Rows < 0 || d.Cols < 0 || d.Frames < 0 {
			return fmt.Errorf("%w: %s: negative size", ErrInvalidDescriptor, d.Type)
		}
		if !d.HasLayout() && (d.CellWidth == 0 || d.CellHeight == 0) {
			return fmt.Errorf("%w: %s: cell_width and cell_height must be positive", ErrInvalidDescriptor, d.Type)
		}
	case KindFileList:
		for _, name := range d.Clips.order {
			if len(d.Clips.byName[name].Files) == 0 {
				return fmt.Errorf("%w: %s: clip %q has no files", ErrInvalidDescriptor, d.Type, name)
			}
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidDescriptor, d.Type, d.Kind)
	}
	return nil
}

// Color is a hex colour (#rrggbb or #rrggbbaa) decoded from YAML.
type Color struct {
	color.Color
}

// ParseColor parses a hex colour string.
func ParseColor(v string) (color.NRGBA, error) {
	s := strings.TrimPrefix(v, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", v)
	}

	parse := func(start int) (uint8, error) {
		n, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(n), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}
	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.NRGBA{}, err
		}
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// Or returns the colour, or fallback when unset.
func (c *Color) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
