package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"text/tabwriter"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/arenapreview/anim"
	"github.com/milk9111/arenapreview/atlas"
	"github.com/milk9111/arenapreview/render"
)

const viewSize = 512

type viewer struct {
	frames     []*ebiten.Image
	controller *anim.Controller
}

func (v *viewer) Update() error {
	v.controller.Advance(1)
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x00, 0x00, 0x00, 0xff})
	if len(v.frames) == 0 {
		return
	}
	img := v.frames[v.controller.Index()]
	fw := img.Bounds().Dx()
	fh := img.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(viewSize-fw)/2, v.controller.Y()-float64(fh)/2)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return viewSize, viewSize
}

// printRegions writes every clip's frame rectangles for one character.
func printRegions(set *anim.AnimationSet) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tclip\tframe\tsource\trect\n", set.Character)
	names := append([]string{anim.WholeSheet}, set.Names()...)
	for _, name := range names {
		frames, err := set.Lookup(name)
		if err != nil {
			continue
		}
		label := name
		if label == anim.WholeSheet {
			label = "(sheet)"
		}
		if len(frames) == 0 {
			fmt.Fprintf(tw, "\t%s\t-\t-\tempty\n", label)
			continue
		}
		for i, f := range frames {
			fmt.Fprintf(tw, "\t%s\t%d\t%s\t%v\n", label, i, f.Source, f.Rect())
		}
	}
	tw.Flush()
}

func main() {
	character := flag.String("character", "satyr", "character type to show")
	clip := flag.String("clip", "", "clip to play (defaults to the whole sheet)")
	atlasDir := flag.String("atlas", "", "directory holding characters.yaml")
	assetDir := flag.String("assets", "", "directory searched for sprite images before the embedded copies")
	list := flag.Bool("list", false, "print frame regions for every character and exit")
	speed := flag.Float64("speed", anim.DefaultSpeed, "frames advanced per tick")
	flag.Parse()

	cat, err := atlas.LoadCatalog(*atlasDir, atlas.CatalogFile)
	if err != nil {
		log.Fatal(err)
	}
	toolkit := render.NewToolkit(render.WithAssetDir(*assetDir))
	registry := anim.NewRegistry(cat, toolkit)
	ctx := context.Background()

	if *list {
		for _, t := range cat.Types() {
			set, err := registry.Build(ctx, t)
			if err != nil {
				log.Printf("%s: %v", t, err)
				continue
			}
			printRegions(set)
		}
		return
	}

	set, err := registry.Build(ctx, *character)
	if err != nil {
		log.Fatal(err)
	}
	regions, err := set.Lookup(*clip)
	if err != nil {
		log.Fatal(err)
	}

	frames := make([]*ebiten.Image, 0, len(regions))
	for _, r := range regions {
		view := toolkit.RegionView(set.Image(r.Source), r.Rect())
		if img, ok := view.(*ebiten.Image); ok {
			frames = append(frames, img)
		} else {
			frames = append(frames, ebiten.NewImageFromImage(view))
		}
	}
	if len(frames) == 0 {
		log.Printf("%s: clip %q has no frames", *character, *clip)
	}

	controller := anim.NewController(anim.WithSpeed(*speed), anim.WithBaseY(viewSize/2))
	controller.Play(regions)

	ebiten.SetWindowSize(viewSize, viewSize)
	ebiten.SetWindowTitle(fmt.Sprintf("%s %s", *character, *clip))
	if err := ebiten.RunGame(&viewer{frames: frames, controller: controller}); err != nil {
		log.Fatal(err)
	}
}
