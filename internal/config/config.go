// Package config loads calciq settings from a TOML file with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/theirongolddev/calciq/internal/budget"
)

// EnvPrefix prefixes every environment override, e.g. CALCIQ_THEME.
const EnvPrefix = "CALCIQ"

// Config holds all calciq configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Game       GameConfig       `toml:"game"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
	Storage    StorageConfig    `toml:"storage"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency string `toml:"currency"`
}

// BudgetConfig holds the default allocator inputs.
type BudgetConfig struct {
	Income    float64 `toml:"income"`
	FixedRent float64 `toml:"fixed_rent,omitempty"`
	Members   int     `toml:"members"`
	Lifestyle string  `toml:"lifestyle"`
	City      string  `toml:"city,omitempty"`
	Formula   string  `toml:"formula"`
}

// Input converts the stored defaults into allocator input.
func (b BudgetConfig) Input() budget.Input {
	return budget.Input{
		Income:    b.Income,
		FixedRent: b.FixedRent,
		Members:   b.Members,
		Lifestyle: budget.Lifestyle(b.Lifestyle),
		City:      b.City,
		Formula:   budget.Formula(b.Formula),
	}
}

// GameConfig holds card game settings.
type GameConfig struct {
	ResolveDelayMS  int `toml:"resolve_delay_ms"`
	LeaderboardSize int `toml:"leaderboard_size"`
}

// ResolveDelay returns the pair reveal pause as a duration.
func (g GameConfig) ResolveDelay() time.Duration {
	return time.Duration(g.ResolveDelayMS) * time.Millisecond
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// StorageConfig locates the database. Empty selects DefaultDBPath.
type StorageConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// envOverrides mirrors the settings that can be set from the environment.
type envOverrides struct {
	Theme    string `envconfig:"THEME"`
	Currency string `envconfig:"CURRENCY"`
	Addr     string `envconfig:"ADDR"`
	DBPath   string `envconfig:"DB_PATH"`
	Formula  string `envconfig:"FORMULA"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "INR",
		},
		Budget: BudgetConfig{
			Income:    50000,
			Members:   1,
			Lifestyle: "middle",
			Formula:   "standard",
		},
		Game: GameConfig{
			ResolveDelayMS:  700,
			LeaderboardSize: 5,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "calciq")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "calciq")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the directory for the database and log file.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "calciq")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "calciq")
}

// DefaultDBPath returns the database location used when none is configured.
func DefaultDBPath() string {
	return filepath.Join(CacheDir(), "calciq.db")
}

// LogPath returns the log file used while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(CacheDir(), "calciq.log")
}

// DBPath returns the configured database path or the default.
func (c Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return DefaultDBPath()
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top of either.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Theme != "" {
		cfg.Appearance.Theme = env.Theme
	}
	if env.Currency != "" {
		cfg.General.Currency = env.Currency
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.DBPath != "" {
		cfg.Storage.DBPath = env.DBPath
	}
	if env.Formula != "" {
		cfg.Budget.Formula = env.Formula
	}
	return nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Budget.Members < 1 {
		c.Budget.Members = 1
	}
	if c.Game.ResolveDelayMS <= 0 {
		c.Game.ResolveDelayMS = def.Game.ResolveDelayMS
	}
	if c.Game.LeaderboardSize <= 0 {
		c.Game.LeaderboardSize = def.Game.LeaderboardSize
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.EventsBuffer <= 0 {
		c.Server.EventsBuffer = def.Server.EventsBuffer
	}
	if c.General.Currency == "" {
		c.General.Currency = def.General.Currency
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
