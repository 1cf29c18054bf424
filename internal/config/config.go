package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	State   StateConfig   `yaml:"state"`
	Log     LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type AuthConfig struct {
	// ProviderLoginURL is the external centralized login page.
	ProviderLoginURL string `yaml:"provider_login_url"`
	// LinkSecret signs recipient link tokens in the dev stub; the
	// production backend owns the real one.
	LinkSecret string `yaml:"link_secret"`
}

type StateConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the config file, falling back to defaults when path is
// empty or the file is absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend base_url is required")
	}
	return cfg, nil
}

func defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Backend: BackendConfig{BaseURL: "http://localhost:8090"},
		Auth:    AuthConfig{ProviderLoginURL: "http://localhost:8090/login"},
		State:   StateConfig{Path: filepath.Join(home, ".esign", "state.db")},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ESIGN_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ESIGN_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("ESIGN_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv("ESIGN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
