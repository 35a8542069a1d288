// Package config provides YAML-based configuration loading for the memory
// game: gameplay defaults, storage, the progress ledger and the SSH server.
package config

import (
	"fmt"
	"time"
)

// MemoryConfig contains all configuration for the memory game.
type MemoryConfig struct {
	Game     GameConfig     `yaml:"game"`
	Progress ProgressConfig `yaml:"progress"`
	Storage  StorageConfig  `yaml:"storage"`
	CardBack CardBackConfig `yaml:"card_back"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// GameConfig defines gameplay parameters.
type GameConfig struct {
	Difficulty    DifficultyPreset `yaml:"difficulty"`     // easy, normal or hard
	StartLevel    int              `yaml:"start_level"`    // 1-10, 0 = from difficulty
	MismatchDelay time.Duration    `yaml:"mismatch_delay"` // How long a mismatched pair stays up
	TickRate      int              `yaml:"tick_rate"`      // UI ticks per second
	Palette       []string         `yaml:"palette"`        // Optional custom card faces
}

// ProgressConfig selects and tunes the progress ledger.
type ProgressConfig struct {
	Backend    string        `yaml:"backend"`     // "local", "http" or "none"
	URL        string        `yaml:"url"`         // Base URL for the http backend
	Principal  string        `yaml:"principal"`   // Identity for local play, empty = anonymous
	StaleAfter time.Duration `yaml:"stale_after"` // Cache staleness window
	Timeout    time.Duration `yaml:"timeout"`     // HTTP request timeout
	RateLimit  float64       `yaml:"rate_limit"`  // Requests per second to the ledger
	Burst      int           `yaml:"burst"`
}

// Progress backends.
const (
	BackendLocal = "local"
	BackendHTTP  = "http"
	BackendNone  = "none"
)

// StorageConfig defines the local database.
type StorageConfig struct {
	Path               string `yaml:"path"`
	MaxPreferenceBytes int    `yaml:"max_preference_bytes"`
}

// CardBackConfig limits custom card-back images.
type CardBackConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes"`
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ResolvedStartLevel returns the level a new game starts at: the explicit
// start level when set, otherwise the difficulty preset's level.
func (c GameConfig) ResolvedStartLevel() int {
	if c.StartLevel > 0 {
		return c.StartLevel
	}
	return StartLevelForPreset(c.Difficulty)
}

// Validate reports the first invalid setting.
func (c MemoryConfig) Validate() error {
	if c.Game.StartLevel < 0 || c.Game.StartLevel > 10 {
		return fmt.Errorf("config: game.start_level %d out of range 0-10", c.Game.StartLevel)
	}
	if c.Game.Difficulty != "" && !ValidPreset(c.Game.Difficulty) {
		return fmt.Errorf("config: unknown difficulty %q", c.Game.Difficulty)
	}
	if c.Game.MismatchDelay < 0 {
		return fmt.Errorf("config: game.mismatch_delay must not be negative")
	}
	switch c.Progress.Backend {
	case BackendLocal, BackendNone:
	case BackendHTTP:
		if c.Progress.URL == "" {
			return fmt.Errorf("config: progress.url is required for the http backend")
		}
	default:
		return fmt.Errorf("config: unknown progress backend %q", c.Progress.Backend)
	}
	return nil
}
