// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath         string `env:"DOUREN_DB_PATH" envDefault:"./data/douren.db"`
	ServerHost     string `env:"DOUREN_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int    `env:"DOUREN_SERVER_PORT" envDefault:"8080"`
	Env            string `env:"DOUREN_ENV" envDefault:"development"`
	LogLevel       string `env:"DOUREN_LOG_LEVEL" envDefault:"info"`
	FrontendOrigin string `env:"DOUREN_FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	// Preview/staging protection. Branch is normally derived from the request
	// hostname; BranchOverride forces it (e.g. in edge deployments).
	BranchOverride string `env:"DOUREN_BRANCH"`
	PreviewUser    string `env:"DOUREN_PREVIEW_USER"`
	PreviewPass    string `env:"DOUREN_PREVIEW_PASS"`

	// Image CDN forwarding
	ImageCDNEndpoint string `env:"DOUREN_IMAGE_CDN_ENDPOINT" envDefault:"https://api.imgur.com/3/image"`
	ImageCDNToken    string `env:"DOUREN_IMAGE_CDN_TOKEN"`

	// Public API rate limiting (fixed window)
	RateLimitWindow time.Duration `env:"DOUREN_RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"DOUREN_RATE_LIMIT_MAX" envDefault:"120"`

	// Optional Redis URL for the role cache; empty = in-process memory cache.
	RedisURL    string `env:"DOUREN_REDIS_URL"`
	CachePrefix string `env:"DOUREN_CACHE_PREFIX" envDefault:"douren:"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// PreviewAuthConfigured returns true if basic-auth credentials for protected
// branches are present.
func (c Config) PreviewAuthConfigured() bool {
	return c.PreviewUser != "" && c.PreviewPass != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RateLimitMax < 1 {
		return nil, fmt.Errorf("DOUREN_RATE_LIMIT_MAX must be at least 1, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("DOUREN_RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimitWindow)
	}

	return cfg, nil
}
