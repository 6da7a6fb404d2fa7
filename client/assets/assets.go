// Package assets turns symbol asset references into images.
package assets

import (
	"fmt"
	"hash/fnv"
	"image/color"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbodonnell/reels/client/fonts"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

var palette = []color.NRGBA{
	{R: 52, G: 152, B: 219, A: 255},
	{R: 46, G: 204, B: 113, A: 255},
	{R: 155, G: 89, B: 182, A: 255},
	{R: 230, G: 126, B: 34, A: 255},
	{R: 231, G: 76, B: 60, A: 255},
	{R: 241, G: 196, B: 15, A: 255},
}

// Tiles caches one square image per asset. Images come from Dir when an
// asset's file exists there and are generated otherwise.
type Tiles struct {
	dir  string
	size int

	mu    sync.Mutex
	cache map[symbols.AssetRef]*ebiten.Image
}

func NewTiles(dir string, size int) *Tiles {
	return &Tiles{
		dir:   dir,
		size:  size,
		cache: make(map[symbols.AssetRef]*ebiten.Image),
	}
}

func (t *Tiles) Size() int {
	return t.size
}

// Image returns the tile for asset. It never fails: unreadable files fall
// back to a generated tile.
func (t *Tiles) Image(asset symbols.AssetRef) *ebiten.Image {
	t.mu.Lock()
	defer t.mu.Unlock()

	if img, ok := t.cache[asset]; ok {
		return img
	}

	img, err := t.load(asset)
	if err != nil {
		log.Debug("Generating tile for %s: %v", asset, err)
		img = t.generate(asset)
	}
	t.cache[asset] = img
	return img
}

func (t *Tiles) load(asset symbols.AssetRef) (*ebiten.Image, error) {
	if t.dir == "" || asset == symbols.Placeholder {
		return nil, fmt.Errorf("no asset directory")
	}
	filename := filepath.Join(t.dir, path.Base(string(asset)))
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	img, _, err := ebitenutil.NewImageFromFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %v", filename, err)
	}
	return img, nil
}

// generate draws a colored tile labelled with the symbol name. The
// placeholder is gray with a question mark.
func (t *Tiles) generate(asset symbols.AssetRef) *ebiten.Image {
	img := ebiten.NewImage(t.size, t.size)
	label, bg := "?", color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	if asset != symbols.Placeholder {
		label = labelFor(asset)
		h := fnv.New32a()
		_, _ = h.Write([]byte(label))
		bg = palette[h.Sum32()%uint32(len(palette))]
	}

	inset := float32(t.size) * 0.08
	vector.DrawFilledRect(img, inset, inset, float32(t.size)-2*inset, float32(t.size)-2*inset, bg, true)

	f := fonts.TTFSmallFont
	bounds, _ := font.BoundString(f, label)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(
		float64(t.size)/2-float64((bounds.Max.X-bounds.Min.X)>>6)/2,
		float64(t.size)/2-float64((bounds.Max.Y+bounds.Min.Y)>>6)/2,
	)
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(img, label, f, op)
	return img
}

// labelFor turns ".../0_seven.png" into "SEVEN".
func labelFor(asset symbols.AssetRef) string {
	name := strings.TrimSuffix(path.Base(string(asset)), path.Ext(string(asset)))
	if _, after, ok := strings.Cut(name, "_"); ok {
		name = after
	}
	return strings.ToUpper(name)
}
