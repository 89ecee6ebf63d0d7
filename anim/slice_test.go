package anim

import (
	"errors"
	"image"
	"testing"

	"github.com/milk9111/arenapreview/atlas"
)

func intPtr(i int) *int {
	return &i
}

func sheetClip(row, from, to int) atlas.Clip {
	return atlas.Clip{Row: intPtr(row), From: intPtr(from), To: intPtr(to)}
}

func TestSliceWholeSheetGridIsRowMajor(t *testing.T) {
	cases := []struct {
		name string
		rows int
		cols int
		size image.Point
	}{
		{"square_4x4", 4, 4, image.Pt(256, 256)},
		{"wide_2x6", 2, 6, image.Pt(384, 128)},
		{"single", 1, 1, image.Pt(64, 64)},
		{"uneven_pixels", 3, 5, image.Pt(161, 97)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			desc := &atlas.Descriptor{Type: "t", Kind: atlas.KindSheetGrid, Source: "s.png", Rows: c.rows, Cols: c.cols}
			frames, err := Slice(desc, WholeSheet, c.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(frames) != c.rows*c.cols {
				t.Fatalf("expected %d frames, got %d", c.rows*c.cols, len(frames))
			}
			cw, ch := c.size.X/c.cols, c.size.Y/c.rows
			for i, f := range frames {
				row, col := i/c.cols, i%c.cols
				want := FrameRegion{Source: "s.png", X: col * cw, Y: row * ch, Width: cw, Height: ch}
				if f != want {
					t.Fatalf("frame %d: expected %+v, got %+v", i, want, f)
				}
			}
		})
	}
}

func TestSliceWholeSheetStrip(t *testing.T) {
	desc := &atlas.Descriptor{Type: "luneblade", Kind: atlas.KindSheetGrid, Source: "idle.png", Frames: 6}
	frames, err := Slice(desc, WholeSheet, image.Pt(384, 80))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(frames))
	}
	for i, f := range frames {
		want := FrameRegion{Source: "idle.png", X: i * 64, Y: 0, Width: 64, Height: 80}
		if f != want {
			t.Fatalf("frame %d: expected %+v, got %+v", i, want, f)
		}
	}
}

func TestSliceWholeSheetExplicitCells(t *testing.T) {
	desc := &atlas.Descriptor{Type: "t", Kind: atlas.KindSheetGrid, Source: "s.png", CellWidth: 32, CellHeight: 16}
	frames, err := Slice(desc, WholeSheet, image.Pt(100, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 full columns, 2 full rows
	if len(frames) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(frames))
	}
	if frames[3] != (FrameRegion{Source: "s.png", X: 0, Y: 16, Width: 32, Height: 16}) {
		t.Fatalf("unexpected frame 3: %+v", frames[3])
	}
}

func TestSliceNamedClip(t *testing.T) {
	desc := &atlas.Descriptor{
		Type:       "satyr",
		Kind:       atlas.KindSheetGrid,
		Source:     "sheet.png",
		CellWidth:  64,
		CellHeight: 64,
		Clips: atlas.NewClips([]string{"walk"}, map[string]atlas.Clip{
			"walk": sheetClip(1, 2, 4),
		}),
	}
	frames, err := Slice(desc, "walk", image.Pt(512, 512))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []FrameRegion{
		{Source: "sheet.png", X: 128, Y: 64, Width: 64, Height: 64},
		{Source: "sheet.png", X: 192, Y: 64, Width: 64, Height: 64},
		{Source: "sheet.png", X: 256, Y: 64, Width: 64, Height: 64},
	}
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frame %d: expected %+v, got %+v", i, want[i], frames[i])
		}
	}
}

func TestSliceDegenerateClips(t *testing.T) {
	cases := []struct {
		name string
		clip atlas.Clip
	}{
		{"missing_row", atlas.Clip{From: intPtr(0), To: intPtr(3)}},
		{"missing_from", atlas.Clip{Row: intPtr(0), To: intPtr(3)}},
		{"missing_to", atlas.Clip{Row: intPtr(0), From: intPtr(0)}},
		{"empty", atlas.Clip{}},
		{"reversed", sheetClip(0, 4, 1)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			desc := &atlas.Descriptor{
				Type: "t", Kind: atlas.KindSheetGrid, Source: "s.png", CellWidth: 64, CellHeight: 64,
				Clips: atlas.NewClips([]string{"idle"}, map[string]atlas.Clip{"idle": c.clip}),
			}
			frames, err := Slice(desc, "idle", image.Pt(256, 256))
			if err != nil {
				t.Fatalf("degenerate clip should not fail: %v", err)
			}
			if frames == nil || len(frames) != 0 {
				t.Fatalf("expected empty non-nil sequence, got %v", frames)
			}
		})
	}
}

func TestSliceDropsFramesOutsideImage(t *testing.T) {
	desc := &atlas.Descriptor{
		Type: "t", Kind: atlas.KindSheetGrid, Source: "s.png", CellWidth: 64, CellHeight: 64,
		Clips: atlas.NewClips([]string{"walk"}, map[string]atlas.Clip{"walk": sheetClip(0, 2, 5)}),
	}
	frames, err := Slice(desc, "walk", image.Pt(256, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 in-bounds frames, got %d", len(frames))
	}
}

func TestSliceUnknownClip(t *testing.T) {
	desc := &atlas.Descriptor{Type: "t", Kind: atlas.KindSheetGrid, Source: "s.png", CellWidth: 64, CellHeight: 64}
	if _, err := Slice(desc, "nonexistent", image.Pt(64, 64)); !errors.Is(err, ErrUnknownClip) {
		t.Fatalf("expected ErrUnknownClip, got %v", err)
	}
}

func TestSliceFileList(t *testing.T) {
	desc := &atlas.Descriptor{
		Type: "wisp",
		Kind: atlas.KindFileList,
		Clips: atlas.NewClips([]string{"idle", "walk"}, map[string]atlas.Clip{
			"idle": {Files: []string{"a.png", "b.png"}},
			"walk": {Files: []string{"c.png"}},
		}),
	}
	sizes := map[string]image.Point{"a.png": image.Pt(10, 20), "b.png": image.Pt(30, 40), "c.png": image.Pt(5, 5)}
	sizeOf := func(ref string) image.Point { return sizes[ref] }

	frames, err := SliceFunc(desc, "idle", sizeOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []FrameRegion{
		{Source: "a.png", Width: 10, Height: 20},
		{Source: "b.png", Width: 30, Height: 40},
	}
	if len(frames) != len(want) || frames[0] != want[0] || frames[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, frames)
	}

	all, err := SliceFunc(desc, WholeSheet, sizeOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[2].Source != "c.png" {
		t.Fatalf("expected clips concatenated in order, got %+v", all)
	}
}

func TestSliceEmbeddedLunebladeRowsPastStrip(t *testing.T) {
	cat, err := atlas.LoadCatalog("", "")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	desc, err := cat.Lookup("luneblade")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	size := image.Pt(384, 64)

	cases := []struct {
		clip string
		want int
	}{
		{clip: "idle", want: 6},
		{clip: "walk"},
		{clip: "attack"},
		{clip: "cast"},
	}
	for _, tc := range cases {
		t.Run(tc.clip, func(t *testing.T) {
			frames, err := Slice(desc, tc.clip, size)
			if err != nil {
				t.Fatalf("Slice: %v", err)
			}
			if len(frames) != tc.want {
				t.Fatalf("expected %d frames, got %d", tc.want, len(frames))
			}
		})
	}
}
