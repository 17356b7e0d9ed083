// Package config provides application configuration management using Viper.
// Configuration is loaded from an optional .env file, a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Change feed drivers.
const (
	ChangesDriverPostgres = "postgres"
	ChangesDriverNATS     = "nats"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sync      SyncConfig      `mapstructure:"sync"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Changes   ChangesConfig   `mapstructure:"changes"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Source    SourceConfig    `mapstructure:"source"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Env         string `mapstructure:"env"` // development, staging, production
	Port        int    `mapstructure:"port"`
	Debug       bool   `mapstructure:"debug"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for caching and locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds snapshot caching settings.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// SyncConfig holds background import settings.
type SyncConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
	Timeout   time.Duration `mapstructure:"timeout"`
	BatchSize int           `mapstructure:"batch_size"`
}

// YouTubeConfig holds the YouTube Data API import settings.
type YouTubeConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	APIKey     string        `mapstructure:"api_key"`
	ChannelID  string        `mapstructure:"channel_id"`
	BaseURL    string        `mapstructure:"base_url"` // empty uses the public endpoint
	MaxResults int64         `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CB         CBConfig      `mapstructure:"circuit_breaker"`
}

// AssistantConfig holds the chat-completions endpoint used by the Q&A forwarder.
type AssistantConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CB          CBConfig      `mapstructure:"circuit_breaker"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// ChangesConfig selects how record changes reach the service.
type ChangesConfig struct {
	Driver   string        `mapstructure:"driver"` // postgres, nats
	Channel  string        `mapstructure:"channel"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Subject       string        `mapstructure:"subject"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	AllowSignup  bool          `mapstructure:"allow_signup"`
	BcryptCost   int           `mapstructure:"bcrypt_cost"`
}

// ScoringConfig holds engagement scoring knobs.
type ScoringConfig struct {
	Multipliers bool   `mapstructure:"multipliers"`
	Jitter      string `mapstructure:"jitter"`   // none, hashed
	Timezone    string `mapstructure:"timezone"` // IANA name used for hour buckets
}

// Location resolves Timezone, falling back to UTC.
func (c *ScoringConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}

	return loc, nil
}

// SourceConfig bounds reads from the record source.
type SourceConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// envFile is read before anything else when present.
const envFile = ".env"

// Load reads configuration from file and environment variables.
// Priority: env vars (.env included) > config file > defaults
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Changes.Driver {
	case ChangesDriverPostgres, ChangesDriverNATS:
	default:
		return fmt.Errorf("changes.driver must be %q or %q, got %q",
			ChangesDriverPostgres, ChangesDriverNATS, c.Changes.Driver)
	}

	switch strings.ToLower(c.Scoring.Jitter) {
	case "", "none", "hashed":
	default:
		return fmt.Errorf("scoring.jitter must be none or hashed, got %q", c.Scoring.Jitter)
	}

	if _, err := c.Scoring.Location(); err != nil {
		return err
	}

	if c.App.Env == "production" && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("auth.jwt_secret must be set in production")
	}

	return nil
}

const defaultJWTSecret = "change-me"

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "social-insights-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.cors_origins", "*")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "social_insights")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.snapshot_ttl", "5m")
	v.SetDefault("cache.key_prefix", "social-insights")

	// Sync defaults
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.interval", "30m")
	v.SetDefault("sync.on_startup", true)
	v.SetDefault("sync.timeout", "30s")
	v.SetDefault("sync.batch_size", 100)

	// YouTube defaults
	v.SetDefault("youtube.enabled", false)
	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.channel_id", "")
	v.SetDefault("youtube.base_url", "")
	v.SetDefault("youtube.max_results", 10)
	v.SetDefault("youtube.timeout", "10s")
	v.SetDefault("youtube.circuit_breaker.max_requests", 1)
	v.SetDefault("youtube.circuit_breaker.interval", "10m")
	v.SetDefault("youtube.circuit_breaker.timeout", "5m")
	v.SetDefault("youtube.circuit_breaker.failure_ratio", 0.5)

	// Assistant defaults
	v.SetDefault("assistant.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.model", "llama-3.1-8b-instant")
	v.SetDefault("assistant.temperature", 0.5)
	v.SetDefault("assistant.timeout", "30s")
	v.SetDefault("assistant.circuit_breaker.max_requests", 3)
	v.SetDefault("assistant.circuit_breaker.interval", "60s")
	v.SetDefault("assistant.circuit_breaker.timeout", "30s")
	v.SetDefault("assistant.circuit_breaker.failure_ratio", 0.5)

	// Change feed defaults
	v.SetDefault("changes.driver", ChangesDriverPostgres)
	v.SetDefault("changes.channel", "posts_changed")
	v.SetDefault("changes.debounce", "500ms")

	// NATS defaults
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "posts.changed")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.timeout", "5s")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.cookie_name", "session")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.allow_signup", true)
	v.SetDefault("auth.bcrypt_cost", 10)

	// Scoring defaults
	v.SetDefault("scoring.multipliers", true)
	v.SetDefault("scoring.jitter", "none")
	v.SetDefault("scoring.timezone", "UTC")

	// Source defaults
	v.SetDefault("source.timeout", "10s")
	v.SetDefault("source.retries", 1)
	v.SetDefault("source.retry_delay", "200ms")
	v.SetDefault("source.max_retry_delay", "1s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
