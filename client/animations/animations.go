package animations

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Strip scrolls a looping column of frames downwards. A spinning reel is
// drawn as a strip of symbol tiles.
type Strip struct {
	// frames are drawn top to bottom and wrap around.
	frames []*ebiten.Image
	// frameHeight is the height each frame is scaled to.
	frameHeight int
	// frameSpeed is the number of pixels scrolled per update.
	frameSpeed int
	// delay is the number of updates before scrolling starts.
	delay int

	// updateCount is the number of times the strip has been updated.
	updateCount int
	// offset is the scroll position in pixels.
	offset int
}

type NewStripOptions struct {
	Frames      []*ebiten.Image
	FrameHeight int
	FrameSpeed  int
}

func NewStrip(opts NewStripOptions) *Strip {
	return &Strip{
		frames:      opts.Frames,
		frameHeight: opts.FrameHeight,
		frameSpeed:  opts.FrameSpeed,
	}
}

func (s *Strip) Update() {
	s.updateCount++
	if s.updateCount <= s.delay || len(s.frames) == 0 {
		return
	}
	s.offset = (s.offset + s.frameSpeed) % (s.frameHeight * len(s.frames))
}

// Reset rewinds the strip and holds it still for delay updates.
func (s *Strip) Reset(delay int) {
	s.updateCount = 0
	s.offset = 0
	s.delay = delay
}

// Draw fills rows frames of dst starting at (x, y). dst should be clipped to
// the reel window since the first and last frames overhang it.
func (s *Strip) Draw(dst *ebiten.Image, x, y float64, rows int) {
	if len(s.frames) == 0 {
		return
	}
	first := s.offset / s.frameHeight
	shift := s.offset % s.frameHeight
	for i := -1; i < rows; i++ {
		idx := ((first-i)%len(s.frames) + len(s.frames)) % len(s.frames)
		frame := s.frames[idx]
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		scale := float64(s.frameHeight) / float64(frame.Bounds().Dy())
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(x, y+float64(i*s.frameHeight+shift))
		dst.DrawImage(frame, op)
	}
}
