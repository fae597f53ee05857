package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Store    StoreConfig
	Cache    CacheConfig
	Oracle   OracleConfig
	Reminder ReminderConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name         string `envconfig:"APP_NAME" default:"bakerybot"`
	Environment  string `envconfig:"APP_ENV" default:"development"`
	Debug        bool   `envconfig:"APP_DEBUG" default:"false"`
	Version      string `envconfig:"APP_VERSION" default:"1.0.0"`
	Timezone     string `envconfig:"APP_TIMEZONE" default:"Local"`
	HistoryLimit int    `envconfig:"HISTORY_LIMIT" default:"500"`
}

// StoreConfig selects and configures the durable document store.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, mysql or memory
	Path string `envconfig:"STORE_PATH" default:"./data/bakerybot.db"`

	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"0"`
	Name     string `envconfig:"STORE_NAME" default:"bakerybot"`
	User     string `envconfig:"STORE_USER" default:"bakerybot"`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`
}

// CacheConfig holds document cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory, redis or none
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix     string `envconfig:"REDIS_KEY_PREFIX" default:"bakerybot:doc"`
}

// OracleConfig configures the language model that structures messages.
type OracleConfig struct {
	Provider string        `envconfig:"ORACLE_PROVIDER" default:"gemini"` // gemini or none
	APIKey   string        `envconfig:"ORACLE_API_KEY" default:""`
	Model    string        `envconfig:"ORACLE_MODEL" default:"gemini-2.0-flash"`
	Timeout  time.Duration `envconfig:"ORACLE_TIMEOUT" default:"20s"`
}

// ReminderConfig holds reminder polling settings.
type ReminderConfig struct {
	PollInterval time.Duration `envconfig:"REMINDER_POLL_INTERVAL" default:"15m"`
	TonightHour  int           `envconfig:"REMINDER_TONIGHT_HOUR" default:"20"`
}

// DSN returns the connection string for the configured SQL backend.
func (s *StoreConfig) DSN() string {
	switch s.Type {
	case "postgres", "postgresql":
		port := s.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			s.User, s.Password, s.Host, port, s.Name, s.SSLMode)
	case "mysql":
		port := s.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			s.User, s.Password, s.Host, port, s.Name)
	}
	return s.Path
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Location resolves the configured timezone used for "tonight" and the
// daily order counter.
func (a *AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Reminder.TonightHour < 0 || cfg.Reminder.TonightHour > 23 {
		return nil, fmt.Errorf("REMINDER_TONIGHT_HOUR must be 0-23, got %d", cfg.Reminder.TonightHour)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
