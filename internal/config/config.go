// Package config loads the users proxy configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/logging"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// ErrInvalidConfig is returned for any missing or malformed setting.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds runtime configuration for the users proxy.
type Config struct {
	BaseURL        string `envconfig:"USERS_API_BASE_URL" required:"true" validate:"required,url"`
	TimeoutSeconds int    `envconfig:"USERS_API_TIMEOUT_SECONDS" default:"10" validate:"gt=0"`
	APIKey         string `envconfig:"USERS_API_KEY"`
	APIKeyHeader   string `envconfig:"USERS_API_KEY_HEADER" default:"x-api-key" validate:"required"`

	CacheBackend string        `envconfig:"USERS_CACHE_BACKEND" default:"memory" validate:"oneof=memory redis"`
	CacheTTL     time.Duration `envconfig:"USERS_CACHE_TTL" default:"5m" validate:"gt=0"`
	RedisAddr    string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379" validate:"required_if=CacheBackend redis"`

	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080" validate:"required"`
	RateLimit  int    `envconfig:"PROXY_RATE_LIMIT" default:"60" validate:"gte=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that BaseURL is absolute.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: USERS_API_BASE_URL must be an absolute URL, got %q", ErrInvalidConfig, c.BaseURL)
	}
	return nil
}

// Timeout returns the per-call timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ClientConfig maps the settings onto a users API client configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.BaseURL)
	cfg.Timeout = c.Timeout()
	cfg.APIKey = c.APIKey
	cfg.APIKeyHeader = c.APIKeyHeader
	return cfg
}

// LoggingConfig maps the settings onto a logger configuration.
func (c *Config) LoggingConfig(service string) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Pretty = c.LogPretty
	cfg.Service = service
	return cfg
}
