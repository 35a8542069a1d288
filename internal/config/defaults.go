package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/memory.yaml
var defaultMemoryYAML []byte

// DefaultMemoryConfig returns the hardcoded configuration.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Game: GameConfig{
			Difficulty:    DifficultyEasy,
			StartLevel:    0,
			MismatchDelay: time.Second,
			TickRate:      30,
		},
		Progress: ProgressConfig{
			Backend:    BackendLocal,
			StaleAfter: 5 * time.Minute,
			Timeout:    15 * time.Second,
			RateLimit:  5,
			Burst:      10,
		},
		Storage: StorageConfig{
			Path:               "~/.memory/memory.db",
			MaxPreferenceBytes: 2 << 20,
		},
		CardBack: CardBackConfig{
			MaxFileBytes: 1 << 20,
		},
		Server: ServerConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultMemoryYAML
}
