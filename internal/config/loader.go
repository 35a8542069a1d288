package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEMORY_"

// Load loads the memory game configuration.
// Search order: customPath -> ~/.memory/configs/memory.yaml ->
// ./configs/memory.yaml -> embedded default -> hardcoded default.
// Environment overrides (MEMORY_*) are applied last; values missing from the
// process environment are looked up in envFiles (default ".env").
func Load(customPath string, envFiles ...string) (MemoryConfig, error) {
	cfg, err := loadYAML(customPath)
	if err != nil {
		return cfg, err
	}

	if err := ApplyEnv(&cfg, envLookup(envFiles...)); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadYAML(customPath string) (MemoryConfig, error) {
	cfg := DefaultMemoryConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("memory.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			parsed := DefaultMemoryConfig()
			if err := yaml.Unmarshal(data, &parsed); err == nil {
				return parsed, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "memory.yaml")); err == nil {
		parsed := DefaultMemoryConfig()
		if err := yaml.Unmarshal(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	// Use embedded default YAML
	parsed := DefaultMemoryConfig()
	if err := yaml.Unmarshal(defaultMemoryYAML, &parsed); err != nil {
		return DefaultMemoryConfig(), nil // Fallback to hardcoded if embed fails
	}
	return parsed, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".memory", "configs", filename)
}

// envLookup prefers the process environment and falls back to dotenv files.
func envLookup(files ...string) func(string) string {
	fileEnv, err := godotenv.Read(files...)
	if err != nil {
		fileEnv = map[string]string{}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	}
}

// ApplyEnv overrides cfg from MEMORY_* variables read through getenv.
// Empty values are ignored.
func ApplyEnv(cfg *MemoryConfig, getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	var difficulty string
	str("DIFFICULTY", &difficulty)
	if difficulty != "" {
		cfg.Game.Difficulty = DifficultyPreset(difficulty)
	}
	str("PROGRESS_BACKEND", &cfg.Progress.Backend)
	str("PROGRESS_URL", &cfg.Progress.URL)
	str("PRINCIPAL", &cfg.Progress.Principal)
	str("DB", &cfg.Storage.Path)
	str("SSH_ADDRESS", &cfg.Server.Address)
	str("SSH_HOST_KEY", &cfg.Server.HostKeyPath)
	str("LOG_LEVEL", &cfg.Log.Level)

	for _, err := range []error{
		num("START_LEVEL", &cfg.Game.StartLevel),
		num("TICK_RATE", &cfg.Game.TickRate),
		dur("MISMATCH_DELAY", &cfg.Game.MismatchDelay),
		dur("PROGRESS_STALE_AFTER", &cfg.Progress.StaleAfter),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
