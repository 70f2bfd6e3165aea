package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// App holds runtime configuration for the platform process.
type App struct {
	LogLevel        string `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabasePath    string `env:"DATABASE_PATH" envDefault:"matchspine.db"`
	RegistryDir     string `env:"REGISTRY_DIR" envDefault:"registries"`
	EngineCompat    string `env:"ENGINE_COMPAT_RANGE" envDefault:">=1.0.0 <2.0.0"`
	IncludeTimeline bool   `env:"HASH_INCLUDE_TIMELINE" envDefault:"true"`
}

// LoadApp parses runtime configuration from the environment.
func LoadApp() (*App, error) {
	var cfg App
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return &cfg, nil
}
