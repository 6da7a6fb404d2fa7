// Package config loads client settings from an optional YAML file,
// REELS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cbodonnell/reels/pkg/account"
	"github.com/cbodonnell/reels/pkg/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "REELS"
	DefaultConfigName = "reels"
)

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Authority AuthorityConfig `mapstructure:"authority"`
	Grid      GridConfig      `mapstructure:"grid"`
	Timing    TimingConfig    `mapstructure:"timing"`
	Bet       BetConfig       `mapstructure:"bet"`
	Player    PlayerConfig    `mapstructure:"player"`
	Assets    AssetsConfig    `mapstructure:"assets"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthorityConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CSRFCookie string        `mapstructure:"csrf_cookie"`
}

type GridConfig struct {
	Reels int `mapstructure:"reels"`
	Rows  int `mapstructure:"rows"`
}

type TimingConfig struct {
	StartStagger time.Duration `mapstructure:"start_stagger"`
	StopBase     time.Duration `mapstructure:"stop_base"`
	StopStagger  time.Duration `mapstructure:"stop_stagger"`
	Settle       time.Duration `mapstructure:"settle"`
	WinMessage   time.Duration `mapstructure:"win_message"`
}

// BetConfig holds money as strings so values like 0.10 stay exact.
type BetConfig struct {
	Min  string `mapstructure:"min"`
	Max  string `mapstructure:"max"`
	Step string `mapstructure:"step"`
}

type PlayerConfig struct {
	Balance string `mapstructure:"balance"`
	BetSize string `mapstructure:"bet_size"`
}

type AssetsConfig struct {
	// Dir holds <name>.png symbol images. Empty uses the built-in art.
	Dir string `mapstructure:"dir"`
}

var defaults = map[string]interface{}{
	"log.level":             "info",
	"log.format":            string(log.FormatJSON),
	"authority.base_url":    "http://localhost:8000",
	"authority.timeout":     10 * time.Second,
	"authority.csrf_cookie": "csrftoken",
	"grid.reels":            5,
	"grid.rows":             3,
	"timing.start_stagger":  50 * time.Millisecond,
	"timing.stop_base":      500 * time.Millisecond,
	"timing.stop_stagger":   300 * time.Millisecond,
	"timing.settle":         500 * time.Millisecond,
	"timing.win_message":    2500 * time.Millisecond,
	"bet.min":               "5",
	"bet.max":               "100",
	"bet.step":              "5",
	"player.balance":        "1000.00",
	"player.bet_size":       "10.00",
	"assets.dir":            "",
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// AddFlags registers the command line overrides on cmd and binds them.
func AddFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("log-level", "", "Log level (error, warn, info, debug, trace)")
	flags.String("log-format", "", "Log format (json, console)")
	flags.String("authority", "", "Base URL of the outcome authority")

	bindings := map[string]string{
		"log.level":          "log-level",
		"log.format":         "log-format",
		"authority.base_url": "authority",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads filename, or reels.yaml from the working directory when
// filename is empty, and returns the validated configuration. A missing
// default file is not an error.
func Load(v *viper.Viper, filename string) (*Config, error) {
	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if f := log.Format(c.Log.Format); f != log.FormatJSON && f != log.FormatConsole {
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if c.Authority.BaseURL == "" {
		return fmt.Errorf("authority.base_url is required")
	}
	if c.Authority.Timeout <= 0 {
		return fmt.Errorf("authority.timeout must be positive")
	}
	if c.Grid.Reels < 1 || c.Grid.Rows < 1 {
		return fmt.Errorf("grid must have at least one reel and one row, got %dx%d", c.Grid.Reels, c.Grid.Rows)
	}
	if c.Timing.StopStagger <= 0 {
		return fmt.Errorf("timing.stop_stagger must be positive so reels stop in order")
	}
	if _, err := c.Limits(); err != nil {
		return err
	}
	if _, err := c.InitialState(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogLevel() log.LogLevel {
	level, _ := log.ParseLogLevel(c.Log.Level)
	return level
}

func (c *Config) Limits() (account.Limits, error) {
	min, err := parseMoney("bet.min", c.Bet.Min)
	if err != nil {
		return account.Limits{}, err
	}
	max, err := parseMoney("bet.max", c.Bet.Max)
	if err != nil {
		return account.Limits{}, err
	}
	step, err := parseMoney("bet.step", c.Bet.Step)
	if err != nil {
		return account.Limits{}, err
	}
	if !min.IsPositive() || min.GreaterThan(max) {
		return account.Limits{}, fmt.Errorf("bet limits must satisfy 0 < min <= max, got %s..%s", min, max)
	}
	if !step.IsPositive() {
		return account.Limits{}, fmt.Errorf("bet.step must be positive")
	}
	return account.Limits{Min: min, Max: max, Step: step}, nil
}

// InitialState is the account shown before the first spin. The bet is
// clamped to the limits and snapped to the step.
func (c *Config) InitialState() (account.State, error) {
	balance, err := parseMoney("player.balance", c.Player.Balance)
	if err != nil {
		return account.State{}, err
	}
	bet, err := parseMoney("player.bet_size", c.Player.BetSize)
	if err != nil {
		return account.State{}, err
	}
	limits, err := c.Limits()
	if err != nil {
		return account.State{}, err
	}
	return account.State{Balance: balance, BetSize: limits.Align(bet)}, nil
}

func parseMoney(key, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
