// Package config handles loading and validation of application configuration
// from environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/splitledger/pkg/logging"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment Environment `mapstructure:"ENVIRONMENT"`
	Port        int         `mapstructure:"PORT"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `mapstructure:"PATH"`
}

// AuthConfig holds identity settings. An empty SecretKey selects header
// identity instead of JWT verification.
type AuthConfig struct {
	SecretKey     string `mapstructure:"SECRET_KEY"`
	Issuer        string `mapstructure:"ISSUER"`
	TokenTTLHours int    `mapstructure:"TOKEN_TTL_HOURS"`
}

// TokenTTL returns the lifetime of issued tokens.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// LedgerConfig holds engine defaults.
type LedgerConfig struct {
	DefaultCurrency string `mapstructure:"DEFAULT_CURRENCY"`
}

// EventsConfig sizes the activity event queue.
type EventsConfig struct {
	BufferSize int `mapstructure:"BUFFER_SIZE"`
	Workers    int `mapstructure:"WORKERS"`
}

// RedisConfig holds Redis connection details for event fan-out.
// An empty Address disables the Redis sink.
type RedisConfig struct {
	Address               string `mapstructure:"ADDRESS"`
	Password              string `mapstructure:"PASSWORD"`
	DB                    int    `mapstructure:"DB"`
	ChannelPrefix         string `mapstructure:"CHANNEL_PREFIX"`
	PublishTimeoutSeconds int    `mapstructure:"PUBLISH_TIMEOUT_SECONDS"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// PublishTimeout returns the per-publish timeout.
func (c RedisConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutSeconds) * time.Second
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER"`
	Database DatabaseConfig `mapstructure:"DATABASE"`
	Auth     AuthConfig     `mapstructure:"AUTH"`
	Ledger   LedgerConfig   `mapstructure:"LEDGER"`
	Events   EventsConfig   `mapstructure:"EVENTS"`
	Redis    RedisConfig    `mapstructure:"REDIS"`
	LogLevel string         `mapstructure:"LOG_LEVEL"`
}

// IsProduction returns true if the application is running in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// Load reads the given .env files (or ./.env when none are given; a
// missing default file is not an error), then builds the configuration from
// defaults and environment variables and validates it. Variables already
// present in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", 8080)
	v.SetDefault("DATABASE.PATH", "./data/ledger.db")
	v.SetDefault("AUTH.SECRET_KEY", "")
	v.SetDefault("AUTH.ISSUER", "splitledger")
	v.SetDefault("AUTH.TOKEN_TTL_HOURS", 24)
	v.SetDefault("LEDGER.DEFAULT_CURRENCY", "USD")
	v.SetDefault("EVENTS.BUFFER_SIZE", 256)
	v.SetDefault("EVENTS.WORKERS", 2)
	v.SetDefault("REDIS.ADDRESS", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.CHANNEL_PREFIX", "ledger:group:")
	v.SetDefault("REDIS.PUBLISH_TIMEOUT_SECONDS", 5)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"DATABASE.PATH", "DB_PATH"},
		{"AUTH.SECRET_KEY", "JWT_SECRET_KEY"},
		{"AUTH.ISSUER", "JWT_ISSUER"},
		{"AUTH.TOKEN_TTL_HOURS", "JWT_TOKEN_TTL_HOURS"},
		{"LEDGER.DEFAULT_CURRENCY", "DEFAULT_CURRENCY"},
		{"EVENTS.BUFFER_SIZE", "EVENTS_BUFFER_SIZE"},
		{"EVENTS.WORKERS", "EVENTS_WORKERS"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.CHANNEL_PREFIX", "REDIS_CHANNEL_PREFIX"},
		{"REDIS.PUBLISH_TIMEOUT_SECONDS", "REDIS_PUBLISH_TIMEOUT_SECONDS"},
		{"LOG_LEVEL", "LOG_LEVEL"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	cfg.Ledger.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.Ledger.DefaultCurrency))

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment %q", cfg.Server.Environment)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if cfg.Auth.SecretKey == "" && cfg.IsProduction() {
		return errors.New("JWT secret key is required in production")
	}
	if cfg.Auth.SecretKey != "" && len(cfg.Auth.SecretKey) < minJWTLength {
		return fmt.Errorf("JWT secret key must be at least %d characters", minJWTLength)
	}
	if cfg.Auth.TokenTTLHours < 1 {
		return fmt.Errorf("invalid token TTL %d hours", cfg.Auth.TokenTTLHours)
	}

	if !currencyPattern.MatchString(cfg.Ledger.DefaultCurrency) {
		return fmt.Errorf("invalid default currency %q", cfg.Ledger.DefaultCurrency)
	}
	if cfg.Events.BufferSize < 1 {
		return fmt.Errorf("events buffer size must be positive, got %d", cfg.Events.BufferSize)
	}
	if cfg.Events.Workers < 1 {
		return fmt.Errorf("events workers must be positive, got %d", cfg.Events.Workers)
	}
	if cfg.Redis.Enabled() && cfg.Redis.PublishTimeoutSeconds < 1 {
		return fmt.Errorf("redis publish timeout must be positive, got %d", cfg.Redis.PublishTimeoutSeconds)
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}
