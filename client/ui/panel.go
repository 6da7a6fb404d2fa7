package ui

import (
	"image/color"

	"github.com/cbodonnell/reels/client/fonts"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
)

var (
	textColor     = color.NRGBA{254, 255, 255, 255}
	disabledColor = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	winColor      = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
)

type ControlPanelOptions struct {
	// Top is the y offset of the panel.
	Top int
	// OnSpin, OnBetDown and OnBetUp are called from the game's Update.
	OnSpin    func()
	OnBetDown func()
	OnBetUp   func()
}

// ControlPanel shows the balance, bet and win message and holds the Spin
// and bet buttons.
type ControlPanel struct {
	UI *ebitenui.UI

	balance    *widget.Text
	bet        *widget.Text
	winMessage *widget.Text
	buttons    []*widget.Button
}

func NewControlPanel(opts ControlPanelOptions) *ControlPanel {
	p := &ControlPanel{}

	buttonImage := &widget.ButtonImage{
		Idle:     image.NewNineSliceColor(color.NRGBA{R: 170, G: 170, B: 180, A: 255}),
		Hover:    image.NewNineSliceColor(color.NRGBA{R: 135, G: 135, B: 150, A: 255}),
		Pressed:  image.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 120, A: 255}),
		Disabled: image.NewNineSliceColor(color.NRGBA{R: 60, G: 60, B: 70, A: 255}),
	}
	fontFace := fonts.TTFNormalFont

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(12),
			widget.RowLayoutOpts.Padding(widget.Insets{
				Top:  opts.Top,
				Left: 40,
			}))),
	)

	labels := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(40),
		)),
	)
	p.balance = widget.NewText(widget.TextOpts.Text("Balance: $0.00", fontFace, textColor))
	p.bet = widget.NewText(widget.TextOpts.Text("Bet: $0.00", fontFace, textColor))
	labels.AddChild(p.balance)
	labels.AddChild(p.bet)
	rootContainer.AddChild(labels)

	controls := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(16),
		)),
	)
	newButton := func(label string, onClick func()) *widget.Button {
		button := widget.NewButton(
			widget.ButtonOpts.Image(buttonImage),
			widget.ButtonOpts.Text(label, fontFace, &widget.ButtonTextColor{
				Idle:     textColor,
				Disabled: disabledColor,
			}),
			widget.ButtonOpts.TextPadding(widget.Insets{
				Left:   30,
				Right:  30,
				Top:    5,
				Bottom: 5,
			}),
		)
		button.ClickedEvent.AddHandler(func(args interface{}) {
			if onClick != nil {
				onClick()
			}
		})
		controls.AddChild(button)
		p.buttons = append(p.buttons, button)
		return button
	}
	newButton("-", opts.OnBetDown)
	newButton("+", opts.OnBetUp)
	newButton("Spin", opts.OnSpin)
	rootContainer.AddChild(controls)

	p.winMessage = widget.NewText(widget.TextOpts.Text("", fonts.TTFLargeFont, winColor))
	rootContainer.AddChild(p.winMessage)

	p.UI = &ebitenui.UI{
		Container: rootContainer,
	}
	return p
}

func (p *ControlPanel) SetEnabled(enabled bool) {
	for _, button := range p.buttons {
		button.GetWidget().Disabled = !enabled
	}
}

func (p *ControlPanel) SetBalance(balance string) {
	p.balance.Label = "Balance: $" + balance
}

func (p *ControlPanel) SetBet(bet string) {
	p.bet.Label = "Bet: $" + bet
}

func (p *ControlPanel) SetWinMessage(message string) {
	p.winMessage.Label = message
}
