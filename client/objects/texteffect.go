package objects

import (
	"fmt"
	"image/color"

	"github.com/cbodonnell/reels/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TextEffect is a banner that removes itself after its TTL. Alerts are
// shown with it.
type TextEffect struct {
	*BaseObject

	text  string
	x     float64
	y     float64
	color color.Color
	ttl   int
}

type NewTextEffectOptions struct {
	// Text is the text to display.
	Text string
	// X is the x-coordinate of the banner center.
	X float64
	// Y is the y-coordinate of the banner center.
	Y float64
	// Color is the background color of the banner.
	Color color.Color
	// TTL is the time to live in milliseconds. Zero keeps the banner until removed.
	TTL int
	// ZIndex is the z-index of the text effect.
	ZIndex int
}

func NewTextEffect(id string, opts NewTextEffectOptions) *TextEffect {
	clr := opts.Color
	if clr == nil {
		clr = color.NRGBA{R: 160, G: 30, B: 30, A: 230}
	}

	return &TextEffect{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: opts.ZIndex}),
		text:       opts.Text,
		x:          opts.X,
		y:          opts.Y,
		color:      clr,
		ttl:        opts.TTL,
	}
}

func (o *TextEffect) Update() error {
	if o.ttl > 0 {
		o.ttl -= 1000 / ebiten.TPS()
		if o.ttl <= 0 {
			if err := o.BaseObject.RemoveFromParent(); err != nil {
				return fmt.Errorf("failed to remove text effect from parent: %w", err)
			}
		}
	}
	return nil
}

func (o *TextEffect) Draw(screen *ebiten.Image) {
	const height = 36
	width := float32(screen.Bounds().Dx()) * 0.8
	vector.DrawFilledRect(screen, float32(o.x)-width/2, float32(o.y)-height/2, width, height, o.color, false)
	drawCentered(screen, o.text, fonts.TTFSmallFont, o.x, o.y, color.White)
}
