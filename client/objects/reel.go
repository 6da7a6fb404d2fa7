package objects

import (
	"image"
	"image/color"
	"time"

	"github.com/cbodonnell/reels/client/animations"
	"github.com/cbodonnell/reels/client/assets"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	reelBackground  = color.NRGBA{R: 20, G: 20, B: 28, A: 255}
	winningBorder   = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
	nonWinningAlpha = float32(0.35)
)

// ReelObject draws one reel of the grid: its cells when stopped and a
// scrolling strip while spinning.
type ReelObject struct {
	*BaseObject

	reel     int
	grid     *grid.Grid
	tiles    *assets.Tiles
	strip    *animations.Strip
	rect     image.Rectangle
	spinning bool
}

type NewReelObjectOptions struct {
	Reel  int
	Grid  *grid.Grid
	Tiles *assets.Tiles
	// Frames are the tiles scrolled while spinning.
	Frames []*ebiten.Image
	// Rect is the reel window on screen.
	Rect image.Rectangle
}

func NewReelObject(id string, opts NewReelObjectOptions) *ReelObject {
	return &ReelObject{
		BaseObject: NewBaseObject(id, nil),
		reel:       opts.Reel,
		grid:       opts.Grid,
		tiles:      opts.Tiles,
		rect:       opts.Rect,
		strip: animations.NewStrip(animations.NewStripOptions{
			Frames:      opts.Frames,
			FrameHeight: opts.Tiles.Size(),
			FrameSpeed:  opts.Tiles.Size() / 4,
		}),
	}
}

func (o *ReelObject) Update() error {
	cell, err := o.grid.Cell(o.reel, 0)
	if err != nil {
		return err
	}
	if cell.Spinning && !o.spinning {
		delay := int(cell.SpinOffset * time.Duration(ebiten.TPS()) / time.Second)
		o.strip.Reset(delay)
		log.Trace("Reel %d spinning after %d updates", o.reel, delay)
	}
	o.spinning = cell.Spinning
	if o.spinning {
		o.strip.Update()
	}
	return nil
}

func (o *ReelObject) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, float32(o.rect.Min.X), float32(o.rect.Min.Y), float32(o.rect.Dx()), float32(o.rect.Dy()), reelBackground, false)

	window := screen.SubImage(o.rect).(*ebiten.Image)
	size := o.tiles.Size()
	if o.spinning {
		o.strip.Draw(window, float64(o.rect.Min.X), float64(o.rect.Min.Y), o.grid.Rows())
		return
	}

	for row := 0; row < o.grid.Rows(); row++ {
		cell, err := o.grid.Cell(o.reel, row)
		if err != nil || cell.Symbol == "" {
			continue
		}
		x, y := float64(o.rect.Min.X), float64(o.rect.Min.Y+row*size)

		img := o.tiles.Image(cell.Asset)
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		scale := float64(size) / float64(img.Bounds().Dx())
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x, y)
		if cell.Highlight == grid.HighlightNonWinning {
			op.ColorScale.ScaleAlpha(nonWinningAlpha)
		}
		window.DrawImage(img, op)

		if cell.Highlight == grid.HighlightWinning {
			vector.StrokeRect(window, float32(x)+2, float32(y)+2, float32(size)-4, float32(size)-4, 4, winningBorder, true)
		}
	}
}
