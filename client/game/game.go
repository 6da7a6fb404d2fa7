package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/cbodonnell/reels/client/assets"
	"github.com/cbodonnell/reels/client/input"
	"github.com/cbodonnell/reels/client/network"
	"github.com/cbodonnell/reels/client/scenes"
	"github.com/cbodonnell/reels/client/spin"
	"github.com/cbodonnell/reels/client/ui"
	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/schedule"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/shopspring/decimal"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// ctx is cancelled when the window closes.
	ctx    context.Context
	cancel context.CancelFunc
	// loop runs timers and request continuations once per Update.
	loop *schedule.Loop
	// client is the outcome authority client.
	client *network.Client
	// account holds the confirmed balance and bet.
	account *account.Store
	// orchestrator drives spins.
	orchestrator *spin.Orchestrator
	// slot is the reel scene, kept across error screens.
	slot *scenes.SlotScene
	// mode is the current game mode.
	mode GameMode
	// scene is the current scene.
	scene scenes.Scene
}

type GameMode int

const (
	GameModeConnecting GameMode = iota
	GameModePlay
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModeConnecting:
		return "Connecting"
	case GameModePlay:
		return "Play"
	case GameModeNetworkError:
		return "Network Error"
	}
	return "Unknown"
}

const (
	DefaultScreenWidth  = 640
	DefaultScreenHeight = 480
	DefaultTileSize     = 96
)

type NewGameOptions struct {
	Debug    bool
	Loop     *schedule.Loop
	Client   *network.Client
	Account  *account.Store
	Registry *symbols.Registry
	Grid     *grid.Grid
	Timings  spin.Timings
	Tiles    *assets.Tiles
	Logger   *log.Logger
}

func NewGame(opts NewGameOptions) (*Game, error) {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		debug:   opts.Debug,
		ctx:     ctx,
		cancel:  cancel,
		loop:    opts.Loop,
		client:  opts.Client,
		account: opts.Account,
	}

	rng := rand.New(rand.NewSource(rand.Int63()))
	opts.Grid.Fill(func(_, _ int) string {
		return opts.Registry.RandomSymbol(rng)
	})

	slot, err := scenes.NewSlotScene(scenes.SlotSceneOptions{
		ScreenWidth: DefaultScreenWidth,
		Grid:        opts.Grid,
		Registry:    opts.Registry,
		Tiles:       opts.Tiles,
		OnSpin:      g.spin,
		OnBetDown:   func() { g.adjustBet(-1) },
		OnBetUp:     func() { g.adjustBet(1) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create slot scene: %v", err)
	}
	g.slot = slot

	g.orchestrator = spin.NewOrchestrator(spin.OrchestratorOptions{
		Timings:   opts.Timings,
		Account:   opts.Account,
		Grid:      opts.Grid,
		Requester: opts.Client,
		Scheduler: opts.Loop,
		Display:   slot,
		Logger:    opts.Logger,
	})

	if err := g.loadSlot(); err != nil {
		return nil, err
	}
	g.connect()
	return g, nil
}

func (g *Game) SetScene(scene scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = scene
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}

	return nil
}

func (g *Game) loadSlot() error {
	if err := g.SetScene(g.slot); err != nil {
		return fmt.Errorf("failed to set slot scene: %v", err)
	}
	g.slot.ShowAccount(g.account.Current())
	return nil
}

// connect fetches the session cookies off the loop. Spinning is disabled
// until it succeeds.
func (g *Game) connect() {
	g.mode = GameModeConnecting
	g.slot.SetControlsEnabled(false)
	removeOverlay := g.slot.Overlay("Connecting...")

	g.loop.Go(func() func() {
		err := g.client.Bootstrap(g.ctx)
		return func() {
			removeOverlay()
			if err != nil {
				log.Error("Failed to reach the authority: %v", err)
				notice := &ui.ActionableError{Message: "Could not reach the slot machine server.", Err: err}
				if err := g.loadNetworkError(notice); err != nil {
					log.Error("Failed to load network error scene: %v", err)
				}
				return
			}
			log.Info("Connected to the authority")
			g.mode = GameModePlay
			g.slot.SetControlsEnabled(true)
		}
	})
}

func (g *Game) loadNetworkError(err error) error {
	message := "Network Error"
	var actionable *ui.ActionableError
	if errors.As(err, &actionable) {
		message = actionable.Message
	}
	networkError, err := scenes.NewErrorScene(message, "Press Enter to retry")
	if err != nil {
		return fmt.Errorf("failed to create network error scene: %v", err)
	}
	if err := g.SetScene(networkError); err != nil {
		return fmt.Errorf("failed to set network error scene: %v", err)
	}
	g.mode = GameModeNetworkError
	return nil
}

func (g *Game) spin() {
	if g.mode != GameModePlay {
		return
	}
	if err := g.orchestrator.Trigger(g.ctx); err != nil {
		if spin.IsUserError(err) {
			log.Debug("Spin refused: %v", err)
			return
		}
		log.Error("Failed to start spin: %v", err)
	}
}

func (g *Game) adjustBet(steps int64) {
	if g.mode != GameModePlay {
		return
	}
	delta := g.account.Limits().Step.Mul(decimal.NewFromInt(steps))
	bet := g.orchestrator.AdjustBet(delta)
	log.Debug("Bet is now %s", bet.StringFixed(2))
}

func (g *Game) Update() error {
	// Run timers and request continuations that are due
	g.loop.RunPending()

	// Handle input
	if err := g.handleInput(); err != nil {
		return err
	}

	// Update the current scene
	if err := g.scene.Update(); err != nil {
		return fmt.Errorf("failed to update scene: %v", err)
	}

	return nil
}

func (g *Game) handleInput() error {
	if input.IsNegativeJustPressed() {
		return ebiten.Termination
	}

	switch g.mode {
	case GameModePlay:
		if input.IsSpinJustPressed() {
			g.spin()
		}
		if input.IsBetUpJustPressed() {
			g.adjustBet(1)
		}
		if input.IsBetDownJustPressed() {
			g.adjustBet(-1)
		}
	case GameModeNetworkError:
		if input.IsPositiveJustPressed() {
			if err := g.loadSlot(); err != nil {
				return fmt.Errorf("failed to load slot scene: %v", err)
			}
			g.connect()
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.1f TPS: %0.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Mode: %s Spin: %s %s", g.mode, g.orchestrator.State(), g.orchestrator.SpinID()), 0, 16)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return DefaultScreenWidth, DefaultScreenHeight
}

// Close cancels in-flight requests and stops the loop's timers.
func (g *Game) Close() {
	g.cancel()
	g.loop.Stop()
}
