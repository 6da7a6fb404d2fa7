package scenes

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cbodonnell/reels/client/assets"
	"github.com/cbodonnell/reels/client/objects"
	"github.com/cbodonnell/reels/client/spin"
	"github.com/cbodonnell/reels/client/ui"
	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/samber/lo"
)

const (
	// ReelGap is the horizontal space between reels.
	ReelGap = 8
	// ReelsTop is the y offset of the reel windows.
	ReelsTop = 24
	// AlertTTL is how long an alert banner stays up, in milliseconds.
	AlertTTL = 3000
)

var alertColor = color.NRGBA{R: 160, G: 30, B: 30, A: 230}

type SlotSceneOptions struct {
	ScreenWidth int
	Grid        *grid.Grid
	Registry    *symbols.Registry
	Tiles       *assets.Tiles
	OnSpin      func()
	OnBetDown   func()
	OnBetUp     func()
}

// SlotScene draws the reels and the control panel. It is the orchestrator's
// display.
type SlotScene struct {
	*BaseScene

	opts   SlotSceneOptions
	root   *objects.SortedZIndexObject
	panel  *ui.ControlPanel
	alerts int
}

var (
	_ Scene        = &SlotScene{}
	_ spin.Display = &SlotScene{}
)

func NewSlotScene(opts SlotSceneOptions) (*SlotScene, error) {
	root := objects.NewSortedZIndexObject("slot-root")
	s := &SlotScene{
		BaseScene: NewBaseScene(root),
		opts:      opts,
		root:      root,
	}
	s.panel = ui.NewControlPanel(ui.ControlPanelOptions{
		Top:       ReelsTop + opts.Grid.Rows()*opts.Tiles.Size() + 24,
		OnSpin:    opts.OnSpin,
		OnBetDown: opts.OnBetDown,
		OnBetUp:   opts.OnBetUp,
	})
	return s, nil
}

func (s *SlotScene) Init() error {
	if err := s.BaseScene.Init(); err != nil {
		return err
	}

	size := s.opts.Tiles.Size()
	frames := lo.Map(s.opts.Registry.Names(), func(name string, _ int) *ebiten.Image {
		asset, _ := s.opts.Registry.AssetOrPlaceholder(name)
		return s.opts.Tiles.Image(asset)
	})

	reels := s.opts.Grid.Reels()
	width := reels*size + (reels-1)*ReelGap
	left := (s.opts.ScreenWidth - width) / 2
	for reel := 0; reel < reels; reel++ {
		x := left + reel*(size+ReelGap)
		id := fmt.Sprintf("reel-%d", reel)
		reelObject := objects.NewReelObject(id, objects.NewReelObjectOptions{
			Reel:   reel,
			Grid:   s.opts.Grid,
			Tiles:  s.opts.Tiles,
			Frames: frames,
			Rect:   image.Rect(x, ReelsTop, x+size, ReelsTop+s.opts.Grid.Rows()*size),
		})
		if err := s.root.AddChild(id, reelObject); err != nil {
			return fmt.Errorf("failed to add reel %d: %v", reel, err)
		}
	}

	if err := s.root.AddChild("controls", objects.NewUIObject("controls", s.panel.UI)); err != nil {
		return fmt.Errorf("failed to add controls: %v", err)
	}
	return nil
}

// Destroy detaches everything Init added so the scene can be shown again.
func (s *SlotScene) Destroy() error {
	children := append([]objects.GameObject(nil), s.root.GetChildren()...)
	for _, child := range children {
		if err := s.root.RemoveChild(child.GetID()); err != nil {
			return err
		}
	}
	return s.BaseScene.Destroy()
}

func (s *SlotScene) SetControlsEnabled(enabled bool) {
	s.panel.SetEnabled(enabled)
}

func (s *SlotScene) ShowAccount(state account.State) {
	s.panel.SetBalance(state.BalanceString())
	s.panel.SetBet(state.BetString())
}

func (s *SlotScene) ShowWinMessage(message string) {
	s.panel.SetWinMessage(message)
}

// Alert shows message in a banner above the reels.
func (s *SlotScene) Alert(message string) {
	s.alerts++
	id := fmt.Sprintf("alert-%d", s.alerts)
	banner := objects.NewTextEffect(id, objects.NewTextEffectOptions{
		Text:   message,
		X:      float64(s.opts.ScreenWidth) / 2,
		Y:      float64(ReelsTop + s.opts.Tiles.Size()*s.opts.Grid.Rows()/2),
		Color:  alertColor,
		TTL:    AlertTTL,
		ZIndex: 50,
	})
	if err := s.root.AddChild(id, banner); err != nil {
		log.Error("Failed to show alert %q: %v", message, err)
	}
}

// Overlay covers the scene with a message until the returned func is called.
func (s *SlotScene) Overlay(message string) (remove func()) {
	overlay := objects.NewTextOverlayObject("overlay", message, "")
	if err := s.root.AddChild("overlay", overlay); err != nil {
		return func() {}
	}
	return func() {
		_ = s.root.RemoveChild("overlay")
	}
}
