package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/arenapreview/anim"
	"github.com/milk9111/arenapreview/atlas"
	"github.com/milk9111/arenapreview/lobby"
	"github.com/milk9111/arenapreview/loop"
	"github.com/milk9111/arenapreview/preview"
	"github.com/milk9111/arenapreview/render"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	stageSize = 300
	stageY    = 120

	cardSize = 150
	cardGap  = 40
	cardY    = 140

	apiTimeout = 10 * time.Second
)

var stageBackground = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}

type mode int

const (
	modeStage mode = iota
	modeSelect
)

// Config is the command-line configuration of the preview shell.
type Config struct {
	Character string
	Clip      string
	AtlasDir  string
	AssetDir  string
	APIURL    string
	Token     string
	Guest     bool
	Select    bool
}

type card struct {
	characterType string
	canvas        *render.Canvas
}

type Game struct {
	frames int

	loop     *loop.Loop
	toolkit  *render.Toolkit
	registry *anim.Registry
	manager  *preview.Manager
	catalog  *atlas.Catalog
	watcher  *atlas.Watcher
	lobby    *lobby.Client

	atlasDir string
	clip     string

	mode       mode
	character  string
	selected   string
	submitting bool
	status     string

	stage *render.Canvas
	cards []*card

	selectorUI *selectorUI
	stageUI    *ebitenui.UI
}

func NewGame(cfg Config) (*Game, error) {
	cat, err := atlas.LoadCatalog(cfg.AtlasDir, atlas.CatalogFile)
	if err != nil {
		return nil, err
	}
	if len(cat.Types()) == 0 {
		return nil, fmt.Errorf("atlas: catalog has no characters")
	}

	toolkit := render.NewToolkit(render.WithAssetDir(cfg.AssetDir))
	registry := anim.NewRegistry(cat, toolkit, anim.WithCache())
	lp := loop.New()

	g := &Game{
		loop:     lp,
		toolkit:  toolkit,
		registry: registry,
		manager:  preview.NewManager(toolkit, registry, lp),
		catalog:  cat,
		atlasDir: cfg.AtlasDir,
		clip:     cfg.Clip,
		stage:    render.NewCanvas(stageSize, stageSize, stageBackground),
	}

	if cfg.APIURL != "" {
		g.lobby = lobby.NewClient(cfg.APIURL, lobby.WithToken(cfg.Token))
	}
	if cfg.AtlasDir != "" {
		w, err := atlas.NewWatcher(cfg.AtlasDir)
		if err != nil {
			log.Printf("atlas: watch %s: %v", cfg.AtlasDir, err)
		} else {
			g.watcher = w
		}
	}

	g.character = g.initialCharacter(cfg)
	g.selected = g.character
	if g.character == "" {
		g.character = cat.Types()[0]
		g.selected = g.character
		cfg.Select = g.lobby != nil || cfg.Select
	}

	g.buildUI()
	if cfg.Select {
		g.enterSelect()
	} else {
		g.enterStage()
	}
	return g, nil
}

// initialCharacter returns the flag value, else the lobby's stored choice.
// It returns "" when neither is known.
func (g *Game) initialCharacter(cfg Config) string {
	if cfg.Character != "" {
		return cfg.Character
	}
	if g.lobby == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	if !g.lobby.Authenticated() && cfg.Guest {
		if _, err := g.lobby.LoginAsGuest(ctx); err != nil {
			log.Printf("lobby: guest login: %v", err)
			return ""
		}
	}
	t, err := g.lobby.CurrentCharacter(ctx)
	if err != nil {
		log.Printf("lobby: current character: %v", err)
		return ""
	}
	return t
}

func (g *Game) Update() error {
	g.frames++

	g.reload()
	g.loop.Step(1)

	switch g.mode {
	case modeSelect:
		g.selectorUI.ui.Update()
	default:
		g.stageUI.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	switch g.mode {
	case modeSelect:
		for i, c := range g.cards {
			x, y := cardPosition(i, len(g.cards))
			if c.characterType == g.selected {
				vector.StrokeRect(screen, float32(x-4), float32(y-4), cardSize+8, cardSize+8, 3, colornames.Gold, false)
			}
			c.canvas.Draw(screen, x, y)
		}
		g.selectorUI.ui.Draw(screen)
	default:
		g.stage.Draw(screen, (baseWidth-stageSize)/2, stageY)
		g.stageUI.Draw(screen)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Instances: %d", g.frames, ebiten.ActualFPS(), g.manager.Live()))
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 0, 20)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close releases every preview and stops the watcher.
func (g *Game) Close() {
	g.manager.Close()
	g.loop.Drain()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.releaseCards()
	g.stage.Dispose()
}

func cardPosition(i, n int) (float64, float64) {
	total := n*cardSize + (n-1)*cardGap
	x0 := (baseWidth - total) / 2
	return float64(x0 + i*(cardSize+cardGap)), cardY
}

func (g *Game) enterStage() {
	g.releaseCards()
	g.mode = modeStage
	g.acquireStage()
	g.stageUI = newStageUI(g)
}

func (g *Game) enterSelect() {
	if inst, ok := g.manager.Bound(g.stage); ok {
		inst.Release()
	}
	g.mode = modeSelect
	g.buildCards()
	g.selectorUI.choose(g.selected)
}

func (g *Game) acquireStage() {
	scale := 1.0
	if desc, err := g.registry.Descriptor(g.character); err == nil {
		scale = desc.RendererScale()
	}
	opts := preview.RendererOptions(scale)
	if g.clip != "" {
		opts = append(opts, preview.WithClip(g.clip))
	}
	if _, err := g.manager.Acquire(g.character, g.stage, opts...); err != nil {
		log.Printf("preview: %s: %v", g.character, err)
		g.status = err.Error()
	}
}

func (g *Game) buildCards() {
	g.releaseCards()
	for _, t := range g.catalog.Types() {
		desc, err := g.catalog.Lookup(t)
		if err != nil {
			continue
		}
		c := &card{
			characterType: t,
			canvas:        render.NewCanvas(cardSize, cardSize, desc.Color.Or(preview.PlaceholderColor)),
		}
		if _, err := g.manager.Acquire(t, c.canvas, preview.SelectorOptions(desc.SelectorScale())...); err != nil {
			log.Printf("preview: card %s: %v", t, err)
		}
		g.cards = append(g.cards, c)
	}
}

func (g *Game) releaseCards() {
	for _, c := range g.cards {
		if inst, ok := g.manager.Bound(c.canvas); ok {
			inst.Release()
		}
		c.canvas.Dispose()
	}
	g.cards = nil
}

func (g *Game) buildUI() {
	g.selectorUI = newSelectorUI(g)
	g.stageUI = newStageUI(g)
}

// choose marks t as the pending selection.
func (g *Game) choose(t string) {
	g.selected = t
}

// confirm submits the pending selection. With a lobby client the request
// runs off the game goroutine and its result is posted back to the loop.
func (g *Game) confirm() {
	t := g.selected
	if t == "" || g.submitting {
		return
	}
	if g.lobby == nil {
		g.applySelection(t)
		return
	}

	g.submitting = true
	g.selectorUI.setSubmitting(true)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		err := g.lobby.SelectCharacter(ctx, t)
		g.loop.Post(func() {
			g.submitting = false
			g.selectorUI.setSubmitting(false)
			if err != nil {
				log.Printf("lobby: select %s: %v", t, err)
				g.status = err.Error()
				return
			}
			g.applySelection(t)
		})
	}()
}

func (g *Game) applySelection(t string) {
	g.status = ""
	g.character = t
	g.enterStage()
}

// reload swaps in a changed catalog and re-acquires every visible preview.
// A catalog that fails to parse leaves the current one in place.
func (g *Game) reload() {
	changed, err := g.watcher.Poll()
	if err != nil {
		log.Printf("atlas: watch: %v", err)
	}
	if !changed {
		return
	}

	cat, err := atlas.LoadCatalog(g.atlasDir, atlas.CatalogFile)
	if err != nil {
		log.Printf("atlas: reload: %v", err)
		g.status = err.Error()
		return
	}
	if len(cat.Types()) == 0 {
		log.Printf("atlas: reload: catalog has no characters")
		return
	}
	log.Printf("atlas: reloaded %d characters", len(cat.Types()))

	g.catalog = cat
	g.registry.SetSource(cat)
	g.toolkit.Images().Clear()
	g.status = ""

	if _, err := cat.Lookup(g.character); err != nil {
		g.character = cat.Types()[0]
	}
	if _, err := cat.Lookup(g.selected); err != nil {
		g.selected = g.character
	}

	g.buildUI()
	switch g.mode {
	case modeSelect:
		g.enterSelect()
	default:
		g.enterStage()
	}
}
