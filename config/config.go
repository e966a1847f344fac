// Package config loads playerd configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "PLAYBACK"

// Config holds the server settings. Variables are read as PLAYBACK_<NAME>,
// e.g. PLAYBACK_DATA_SERVICE_URL.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DataServiceURL     string        `envconfig:"DATA_SERVICE_URL" required:"true" validate:"required,url"`
	DataServiceToken   string        `envconfig:"DATA_SERVICE_TOKEN"`
	DataServiceTimeout time.Duration `envconfig:"DATA_SERVICE_TIMEOUT" default:"10s" validate:"gt=0"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json" validate:"oneof=json console"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// RateLimit caps catalog requests per client and RatePeriod; 0 disables it.
	RateLimit  uint          `envconfig:"RATE_LIMIT" default:"60"`
	RatePeriod time.Duration `envconfig:"RATE_PERIOD" default:"1m"`

	WSMaxMessageSize int64 `envconfig:"WS_MAX_MESSAGE_SIZE" default:"65536" validate:"gt=0"`
	RuntimeMetrics   bool  `envconfig:"RUNTIME_METRICS" default:"true"`
}

// AllowedOrigins splits CORSAllowedOrigins on commas. A single "*" means
// every origin is allowed and yields nil.
func (c *Config) AllowedOrigins() []string {
	raw := strings.ReplaceAll(c.CORSAllowedOrigins, " ", "")
	if raw == "" || raw == "*" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string { return ":" + c.Port }

// Load reads envFile when it exists, then the environment. Variables that
// are already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env vars: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
