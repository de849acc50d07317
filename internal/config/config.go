// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// MinJWTSecretLength is the minimum accepted HMAC secret size in bytes.
const MinJWTSecretLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache, rate limits, token denylist and activity stream (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Bearer tokens
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"rentdesk"`

	// Rate limiting
	RateLimitAPIEnabled bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitAPIRPM     int  `env:"RATE_LIMIT_API_RPM" envDefault:"120"`
	RateLimitAPIBurst   int  `env:"RATE_LIMIT_API_BURST" envDefault:"30"`
	LoginRatePerMinute  int  `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginBurst          int  `env:"LOGIN_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Lease sweeper (robfig/cron spec) and dashboard look-ahead
	LeaseSweepSchedule      string `env:"LEASE_SWEEP_SCHEDULE" envDefault:"@every 1h"`
	LeaseExpiringWindowDays int    `env:"LEASE_EXPIRING_WINDOW_DAYS" envDefault:"60"`

	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"60s"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	if c.RateLimitAPIEnabled && (c.RateLimitAPIRPM <= 0 || c.RateLimitAPIBurst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_API_RPM and RATE_LIMIT_API_BURST must be positive"))
	}
	if c.LoginRatePerMinute <= 0 || c.LoginBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE and LOGIN_BURST must be positive"))
	}
	if c.LeaseExpiringWindowDays <= 0 {
		errs = append(errs, errors.New("LEASE_EXPIRING_WINDOW_DAYS must be positive"))
	}
	if strings.TrimSpace(c.LeaseSweepSchedule) == "" {
		errs = append(errs, errors.New("LEASE_SWEEP_SCHEDULE must not be empty"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RedactURL hides the password of a connection string for logging.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
