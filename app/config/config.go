// Package config is the planpicker configuration: the core bot settings plus
// the backend, HTTP server and carousel sections.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/planpicker/core/config"
)

// BackendConfig points at the user registration service.
type BackendConfig struct {
	// BaseURL is the origin the Mini App posts /api/backend/users to.
	BaseURL        string `yaml:"base_url" envconfig:"BACKEND_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"BACKEND_TIMEOUT_SECONDS"`
}

// ServerConfig configures the embedded HTTP server.
type ServerConfig struct {
	Listen string `yaml:"listen" envconfig:"SERVER_LISTEN"`
	// UpstreamURL receives /api/* with the /api prefix stripped.
	UpstreamURL string `yaml:"upstream_url" envconfig:"SERVER_UPSTREAM_URL"`
	// InitDataMaxAgeSeconds rejects signed init data older than this; 0 disables.
	InitDataMaxAgeSeconds int `yaml:"init_data_max_age_seconds" envconfig:"SERVER_INIT_DATA_MAX_AGE_SECONDS"`
}

// CarouselConfig tunes the plan carousel.
type CarouselConfig struct {
	BounceResetMS int `yaml:"bounce_reset_ms" envconfig:"CAROUSEL_BOUNCE_RESET_MS"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Backend  BackendConfig  `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Carousel CarouselConfig `yaml:"carousel"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// BackendTimeout is the registration request timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// BounceReset is the carousel edge offset hold time.
func (c *Config) BounceReset() time.Duration {
	return time.Duration(c.Carousel.BounceResetMS) * time.Millisecond
}

// InitDataMaxAge is the accepted age of signed init data.
func (c *Config) InitDataMaxAge() time.Duration {
	return time.Duration(c.Server.InitDataMaxAgeSeconds) * time.Second
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the app sections after the core ones and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if err := checkURL("backend.base_url", cfg.Backend.BaseURL); err != nil {
		return err
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 10
	}

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.UpstreamURL == "" {
		cfg.Server.UpstreamURL = cfg.Backend.BaseURL
	}
	if err := checkURL("server.upstream_url", cfg.Server.UpstreamURL); err != nil {
		return err
	}
	if cfg.Server.InitDataMaxAgeSeconds < 0 {
		return errors.New("server.init_data_max_age_seconds must be >= 0")
	}

	if cfg.Carousel.BounceResetMS < 0 {
		return errors.New("carousel.bounce_reset_ms must be >= 0")
	}
	if cfg.Carousel.BounceResetMS == 0 {
		cfg.Carousel.BounceResetMS = 100
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
