package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// Environment variables that override file settings.
const (
	EnvConfigPath = "BRIDGE_CONFIG"
	EnvDBPath     = "BRIDGE_DB_PATH"
	EnvAPIPort    = "BRIDGE_API_PORT"
)

// Config represents the application configuration.
type Config struct {
	// Competition scoring settings
	Competition CompetitionConfig `toml:"competition"`

	// Database settings
	Storage StorageConfig `toml:"storage"`

	// HTTP API settings
	API APIConfig `toml:"api"`

	// File watcher settings
	Watch WatchConfig `toml:"watch"`
}

// CompetitionConfig contains the settings the scoring engine reads.
type CompetitionConfig struct {
	Method          string  `toml:"method" validate:"oneof=percentage butler"`
	PairCount       int     `toml:"pair_count" validate:"min=2,max=999"`
	SetSize         int     `toml:"set_size" validate:"min=1,max=36"`   // Boards per round
	GameCount       int     `toml:"game_count" validate:"min=1,max=99"` // Boards per session
	Neuberg         bool    `toml:"neuberg"`
	MaxSessions     int     `toml:"max_sessions" validate:"min=1,max=99"`
	MaxAbsent       int     `toml:"max_absent" validate:"min=0"`
	MaxMean         float64 `toml:"max_mean"` // Cap on the substituted mean (0 = no cap)
	WeightedAverage bool    `toml:"weighted_average"`
	MinClubCount    int     `toml:"min_club_count" validate:"min=0"`
	MaxClubCount    int     `toml:"max_club_count" validate:"min=0"` // 0 = count every member
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path        string `toml:"path" validate:"required"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port      int     `toml:"port" validate:"min=1,max=65535"`
	RateLimit float64 `toml:"rate_limit" validate:"min=0"` // Requests per second per client (0 = off)
	Burst     int     `toml:"burst" validate:"min=0"`
}

// WatchConfig contains settings for the recompute watcher.
type WatchConfig struct {
	Debounce string `toml:"debounce"` // Quiet period before recomputing (e.g., "500ms")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Competition: CompetitionConfig{
			Method:       "percentage",
			PairCount:    16,
			SetSize:      3,
			GameCount:    24,
			Neuberg:      true,
			MaxSessions:  6,
			MaxAbsent:    1,
			MaxMean:      60,
			MinClubCount: 2,
			MaxClubCount: 4,
		},
		Storage: StorageConfig{
			Path:        defaultDBPath(),
			AutoMigrate: true,
		},
		API: APIConfig{
			Port:      8080,
			RateLimit: 20,
			Burst:     40,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "bridge-scorer.db"
	}
	return filepath.Join(homeDir, ".bridge-scorer", "scores.db")
}

// DefaultPath returns the configuration file location: $BRIDGE_CONFIG when
// set, otherwise ~/.bridge-scorer/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".bridge-scorer")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from path. Returns default config if the file
// doesn't exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if p := os.Getenv(EnvDBPath); p != "" {
		c.Storage.Path = p
	}
	if p := os.Getenv(EnvAPIPort); p != "" {
		var port int
		if _, err := fmt.Sscanf(p, "%d", &port); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvAPIPort, p, err)
		}
		c.API.Port = port
	}
	return nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Validate watcher debounce
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid debounce %q: %w", c.Watch.Debounce, err)
	}

	comp := c.Competition
	if comp.GameCount%comp.SetSize != 0 {
		return fmt.Errorf("game count %d is not a multiple of set size %d", comp.GameCount, comp.SetSize)
	}
	if comp.MaxClubCount > 0 && comp.MinClubCount > comp.MaxClubCount {
		return fmt.Errorf("min club count %d exceeds max club count %d", comp.MinClubCount, comp.MaxClubCount)
	}
	if comp.Method == "percentage" && (comp.MaxMean < 0 || comp.MaxMean > 100) {
		return fmt.Errorf("max mean %.2f outside 0..100", comp.MaxMean)
	}

	return nil
}

// GetDebounce returns the watcher debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}

// Engine converts the competition section to the engine's configuration.
func (c *Config) Engine() (engine.Config, error) {
	method, err := score.ParseMethod(c.Competition.Method)
	if err != nil {
		return engine.Config{}, err
	}

	comp := c.Competition
	return engine.Config{
		Method:          method,
		PairCount:       comp.PairCount,
		SetSize:         comp.SetSize,
		GameCount:       comp.GameCount,
		Neuberg:         comp.Neuberg,
		MaxSessions:     comp.MaxSessions,
		MaxAbsent:       comp.MaxAbsent,
		MaxMean:         score.HundredthsFromFloat(comp.MaxMean),
		WeightedAverage: comp.WeightedAverage,
		MinClubCount:    comp.MinClubCount,
		MaxClubCount:    comp.MaxClubCount,
	}, nil
}
