package anim

import (
	"fmt"
	"image"

	"github.com/milk9111/arenapreview/atlas"
)

// WholeSheet selects the descriptor's full layout instead of a named clip.
const WholeSheet = ""

// Slice returns the frames of clip for a descriptor whose images all have the
// given size. See SliceFunc.
func Slice(desc *atlas.Descriptor, clip string, size image.Point) ([]FrameRegion, error) {
	return SliceFunc(desc, clip, func(string) image.Point { return size })
}

// SliceFunc returns the ordered frames of clip. sizeOf reports the loaded size
// of an image reference.
//
// Sheet clips map cell i of the row to {i*cw, row*ch, cw, ch}. WholeSheet walks
// the grid row-major, or the strip left to right. File clips yield one
// whole-image region per file. Degenerate clips yield no frames and no error.
// Frames that fall outside the image are dropped, so a clip sliced against a
// small image can hold fewer than to-from+1 frames, or none.
func SliceFunc(desc *atlas.Descriptor, clip string, sizeOf func(ref string) image.Point) ([]FrameRegion, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", atlas.ErrInvalidDescriptor)
	}

	if desc.Kind == atlas.KindFileList {
		return sliceFiles(desc, clip, sizeOf)
	}

	size := sizeOf(desc.Source)
	if clip == WholeSheet {
		return sliceLayout(desc, size), nil
	}

	spec, ok := desc.Clips.Get(clip)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownClip, desc.Type, clip)
	}
	if spec.Degenerate() {
		return []FrameRegion{}, nil
	}

	cw, ch := cellSize(desc, size)
	if cw <= 0 || ch <= 0 {
		return []FrameRegion{}, nil
	}
	row := *spec.Row
	frames := make([]FrameRegion, 0, *spec.To-*spec.From+1)
	for i := *spec.From; i <= *spec.To; i++ {
		r := FrameRegion{Source: desc.Source, X: i * cw, Y: row * ch, Width: cw, Height: ch}
		if !r.within(size) {
			continue
		}
		frames = append(frames, r)
	}
	return frames, nil
}

// cellSize returns the explicit cell size, filling unset axes from the layout
// hints.
func cellSize(desc *atlas.Descriptor, size image.Point) (int, int) {
	cw, ch := desc.CellWidth, desc.CellHeight
	switch {
	case desc.Grid():
		if cw <= 0 {
			cw = size.X / desc.Cols
		}
		if ch <= 0 {
			ch = size.Y / desc.Rows
		}
	case desc.Strip():
		if cw <= 0 {
			cw = size.X / desc.Frames
		}
		if ch <= 0 {
			ch = size.Y
		}
	}
	return cw, ch
}

func sliceLayout(desc *atlas.Descriptor, size image.Point) []FrameRegion {
	cw, ch := cellSize(desc, size)
	if cw <= 0 || ch <= 0 {
		return []FrameRegion{}
	}

	var rows, cols int
	switch {
	case desc.Grid():
		rows, cols = desc.Rows, desc.Cols
	case desc.Strip():
		rows, cols = 1, desc.Frames
	default:
		rows, cols = size.Y/ch, size.X/cw
	}

	frames := make([]FrameRegion, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r := FrameRegion{Source: desc.Source, X: col * cw, Y: row * ch, Width: cw, Height: ch}
			if !r.within(size) {
				continue
			}
			frames = append(frames, r)
		}
	}
	return frames
}

func sliceFiles(desc *atlas.Descriptor, clip string, sizeOf func(ref string) image.Point) ([]FrameRegion, error) {
	var files []string
	if clip == WholeSheet {
		for _, name := range desc.Clips.Names() {
			spec, _ := desc.Clips.Get(name)
			files = append(files, spec.Files...)
		}
	} else {
		spec, ok := desc.Clips.Get(clip)
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownClip, desc.Type, clip)
		}
		files = spec.Files
	}

	frames := make([]FrameRegion, 0, len(files))
	for _, f := range files {
		size := sizeOf(f)
		r := FrameRegion{Source: f, Width: size.X, Height: size.Y}
		if r.Empty() {
			continue
		}
		frames = append(frames, r)
	}
	return frames, nil
}
