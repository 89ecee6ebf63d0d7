package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

var (
	panelColor      = color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200}
	buttonColor     = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}
	buttonDownColor = color.NRGBA{R: 0x45, G: 0xb7, B: 0xd1, A: 255}
	textColor       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

type selectorUI struct {
	ui      *ebitenui.UI
	group   *widget.RadioGroup
	buttons map[string]*widget.Button
	desc    *widget.Text
	confirm *widget.Button
	game    *Game
}

func uiFace() *ebtext.Face {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	return &face
}

func buttonImage() *widget.ButtonImage {
	idle := imageui.NewNineSliceColor(buttonColor)
	down := imageui.NewNineSliceColor(buttonDownColor)
	return &widget.ButtonImage{Idle: idle, Hover: idle, Pressed: down}
}

func bottomPanel(width int) *widget.Container {
	return widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(panelColor)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(width, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
			}),
		),
	)
}

func centered() widget.WidgetOpt {
	return widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})
}

// newSelectorUI builds the character picker: one toggle button per catalog
// entry, the chosen character's description and a Confirm button.
func newSelectorUI(g *Game) *selectorUI {
	face := uiFace()
	btnTextColor := &widget.ButtonTextColor{Idle: textColor}
	s := &selectorUI{game: g, buttons: make(map[string]*widget.Button)}

	title := widget.NewText(
		widget.TextOpts.Text("Choose your character", face, textColor),
		widget.TextOpts.WidgetOpts(centered()),
	)

	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.WidgetOpts(centered()),
	)

	var elements []widget.RadioGroupElement
	var order []string
	for _, t := range g.catalog.Types() {
		label := t
		if desc, err := g.catalog.Lookup(t); err == nil && desc.Name != "" {
			label = desc.Name
		}
		btn := widget.NewButton(
			widget.ButtonOpts.Image(buttonImage()),
			widget.ButtonOpts.Text(label, face, btnTextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(120, 32)),
		)
		s.buttons[t] = btn
		order = append(order, t)
		elements = append(elements, btn)
		row.AddChild(btn)
	}

	s.desc = widget.NewText(
		widget.TextOpts.Text("", face, textColor),
		widget.TextOpts.WidgetOpts(centered()),
	)

	s.confirm = widget.NewButton(
		widget.ButtonOpts.Image(buttonImage()),
		widget.ButtonOpts.Text("Confirm", face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(centered(), widget.WidgetOpts.MinSize(160, 36)),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.confirm()
		}),
	)

	s.group = widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			for _, t := range order {
				if args.Active == s.buttons[t] {
					s.describe(t)
					g.choose(t)
					return
				}
			}
		}),
	)

	panel := bottomPanel(baseWidth / 2)
	panel.AddChild(title)
	panel.AddChild(row)
	panel.AddChild(s.desc)
	panel.AddChild(s.confirm)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	s.ui = &ebitenui.UI{Container: root}
	return s
}

// choose activates the button for t without waiting for a click.
func (s *selectorUI) choose(t string) {
	if btn, ok := s.buttons[t]; ok {
		s.group.SetActive(btn)
	}
	s.describe(t)
	s.game.choose(t)
}

func (s *selectorUI) describe(t string) {
	desc, err := s.game.catalog.Lookup(t)
	if err != nil {
		s.desc.Label = ""
		return
	}
	s.desc.Label = desc.Description
}

func (s *selectorUI) setSubmitting(on bool) {
	label := "Confirm"
	if on {
		label = "Summoning..."
	}
	if text := s.confirm.Text(); text != nil {
		text.Label = label
	}
	s.confirm.GetWidget().Disabled = on
}

// newStageUI shows the current character's name and a button back to the
// selector.
func newStageUI(g *Game) *ebitenui.UI {
	face := uiFace()
	btnTextColor := &widget.ButtonTextColor{Idle: textColor}

	name := g.character
	description := ""
	if desc, err := g.catalog.Lookup(g.character); err == nil {
		if desc.Name != "" {
			name = desc.Name
		}
		description = desc.Description
	}

	panel := bottomPanel(baseWidth / 3)
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text(name, face, textColor),
		widget.TextOpts.WidgetOpts(centered()),
	))
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text(description, face, textColor),
		widget.TextOpts.WidgetOpts(centered()),
	))
	panel.AddChild(widget.NewButton(
		widget.ButtonOpts.Image(buttonImage()),
		widget.ButtonOpts.Text("Change character", face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(centered(), widget.WidgetOpts.MinSize(160, 36)),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.enterSelect()
		}),
	))

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}
