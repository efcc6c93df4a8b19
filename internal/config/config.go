// ABOUTME: Configuration loader for the mbank CLI
// ABOUTME: Parses environment variables into a config struct after optional .env load

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the client settings.
type Config struct {
	// APIURL is the banking backend base URL
	APIURL string `env:"MBANK_API_URL" envDefault:"http://localhost:8080"`

	// HTTPTimeout bounds each API call; expiry is a transient failure
	HTTPTimeout time.Duration `env:"MBANK_HTTP_TIMEOUT" envDefault:"15s"`

	// ConfigDir overrides the XDG default for the token slot and debug log
	ConfigDir string `env:"MBANK_CONFIG_DIR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment, preceded by a best-effort
// .env load for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
