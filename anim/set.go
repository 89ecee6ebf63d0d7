package anim

import (
	"fmt"
	"image"
)

// AnimationSet maps clip names to ordered frames for one character and its
// loaded images. It is read-only once built and may be shared.
type AnimationSet struct {
	Character string

	names  []string
	clips  map[string][]FrameRegion
	layout []FrameRegion
	images map[string]image.Image
}

func newAnimationSet(character string, images map[string]image.Image) *AnimationSet {
	return &AnimationSet{
		Character: character,
		clips:     make(map[string][]FrameRegion),
		images:    images,
	}
}

func (s *AnimationSet) add(name string, frames []FrameRegion) {
	if _, ok := s.clips[name]; !ok {
		s.names = append(s.names, name)
	}
	s.clips[name] = frames
}

// Names returns clip names in declaration order.
func (s *AnimationSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Lookup returns the frames of a clip. Unknown names fail with ErrUnknownClip;
// degenerate clips return an empty slice. WholeSheet returns the layout frames.
// The returned slice is shared and must not be modified.
func (s *AnimationSet) Lookup(name string) ([]FrameRegion, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClip, name)
	}
	if name == WholeSheet {
		return s.layout[:len(s.layout):len(s.layout)], nil
	}
	frames, ok := s.clips[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownClip, s.Character, name)
	}
	return frames[:len(frames):len(frames)], nil
}

// Image returns the loaded image a region's Source refers to.
func (s *AnimationSet) Image(ref string) image.Image {
	if s == nil {
		return nil
	}
	return s.images[ref]
}

// Lookup is shorthand for set.Lookup(clip).
func Lookup(set *AnimationSet, clip string) ([]FrameRegion, error) {
	return set.Lookup(clip)
}
