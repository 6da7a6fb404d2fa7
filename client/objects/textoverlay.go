package objects

import (
	"image/color"

	"github.com/cbodonnell/reels/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// TextOverlayObject dims the screen and centers a message with an optional
// hint line below it.
type TextOverlayObject struct {
	*BaseObject

	text string
	hint string
}

func NewTextOverlayObject(id string, text string, hint string) *TextOverlayObject {
	return &TextOverlayObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: 100}),
		text:       text,
		hint:       hint,
	}
}

func (o *TextOverlayObject) Draw(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), color.NRGBA{A: 200}, false)

	drawCentered(screen, o.text, fonts.TTFNormalFont, w/2, h/2, color.White)
	if o.hint != "" {
		drawCentered(screen, o.hint, fonts.TTFSmallFont, w/2, h/2+40, color.NRGBA{R: 180, G: 180, B: 180, A: 255})
	}
}

func drawCentered(screen *ebiten.Image, t string, f font.Face, x, y float64, clr color.Color) {
	bounds, _ := font.BoundString(f, t)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x-float64((bounds.Max.X-bounds.Min.X)>>6)/2, y-float64((bounds.Max.Y+bounds.Min.Y)>>6)/2)
	op.ColorScale.ScaleWithColor(clr)
	text.DrawWithOptions(screen, t, f, op)
}
