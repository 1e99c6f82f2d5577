package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const invadersFile = "invaders.yaml"

// LoadInvaders loads the simulation configuration.
// Search order: customPath -> ~/.invaders/configs/invaders.yaml -> ./configs/invaders.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial YAML only overrides the
// keys it names.
func LoadInvaders(customPath string) (InvadersConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return InvadersConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := ParseInvaders(data)
		if err != nil {
			return InvadersConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath(invadersFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseInvaders(data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", invadersFile)); err == nil {
		if cfg, err := ParseInvaders(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := ParseInvaders(defaultInvadersYAML)
	if err != nil {
		return DefaultInvadersConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseInvaders decodes YAML over DefaultInvadersConfig and validates the result.
func ParseInvaders(data []byte) (InvadersConfig, error) {
	cfg := DefaultInvadersConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c InvadersConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".invaders", "configs", filename)
}
