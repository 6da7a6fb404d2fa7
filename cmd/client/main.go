package main

import (
	"fmt"
	"os"

	"github.com/cbodonnell/reels/client/assets"
	"github.com/cbodonnell/reels/client/game"
	"github.com/cbodonnell/reels/client/network"
	"github.com/cbodonnell/reels/client/spin"
	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/config"
	"github.com/cbodonnell/reels/pkg/grid"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/cbodonnell/reels/pkg/schedule"
	"github.com/cbodonnell/reels/pkg/symbols"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string
	var debug bool

	cmd := &cobra.Command{
		Use:           "reels",
		Short:         "Slot machine client for a remote outcome authority",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cfg, debug)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (default ./reels.yaml if present)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Show the debug overlay")
	if err := config.AddFlags(cmd, v); err != nil {
		panic(fmt.Sprintf("Failed to register flags: %v", err))
	}
	return cmd
}

func run(cfg *config.Config, debug bool) error {
	logger := log.New(os.Stdout, log.Format(cfg.Log.Format), cfg.LogLevel())
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", cfg.LogLevel())

	limits, err := cfg.Limits()
	if err != nil {
		return err
	}
	initial, err := cfg.InitialState()
	if err != nil {
		return err
	}

	client, err := network.NewClient(network.Config{
		BaseURL:    cfg.Authority.BaseURL,
		Timeout:    cfg.Authority.Timeout,
		CSRFCookie: cfg.Authority.CSRFCookie,
		Reels:      cfg.Grid.Reels,
		Rows:       cfg.Grid.Rows,
	})
	if err != nil {
		return fmt.Errorf("failed to create authority client: %v", err)
	}
	log.Info("Using authority at %s", cfg.Authority.BaseURL)

	loop := schedule.NewLoop()
	registry := symbols.Default()

	g, err := game.NewGame(game.NewGameOptions{
		Debug:    debug,
		Loop:     loop,
		Client:   client,
		Account:  account.NewStore(initial, limits),
		Registry: registry,
		Grid:     grid.New(cfg.Grid.Reels, cfg.Grid.Rows, registry),
		Timings: spin.Timings{
			StartStagger: cfg.Timing.StartStagger,
			StopBase:     cfg.Timing.StopBase,
			StopStagger:  cfg.Timing.StopStagger,
			Settle:       cfg.Timing.Settle,
			WinMessage:   cfg.Timing.WinMessage,
		},
		Tiles:  assets.NewTiles(cfg.Assets.Dir, game.DefaultTileSize),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %v", err)
	}
	defer g.Close()

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowTitle("Reels")
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return fmt.Errorf("failed to run game: %v", err)
	}
	return nil
}
