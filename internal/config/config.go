package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the server configuration.
type Config struct {
	Port        string `envconfig:"STORYTREE_PORT" default:"3000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Storage
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"badger"`
	StoreKey      string `envconfig:"STORE_KEY" default:"stories"`
	BadgerPath    string `envconfig:"BADGER_PATH" default:"./data/badger"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"./data/storytree.db"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Content generation
	AIProvider string        `envconfig:"AI_PROVIDER" default:"gemini"`
	AIModel    string        `envconfig:"AI_MODEL"`
	AIAPIKey   string        `envconfig:"AI_API_KEY"`
	AIBaseURL  string        `envconfig:"AI_BASE_URL"`
	AITimeout  time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load storytree config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)

	if cfg.AIAPIKey == "" {
		switch cfg.AIProvider {
		case ProviderGemini:
			cfg.AIAPIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			cfg.AIAPIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the selected driver and provider need.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverBadger, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AIProvider {
	case ProviderGemini:
		if c.AIAPIKey == "" {
			return errors.New("AI_API_KEY or GEMINI_API_KEY is required for gemini")
		}
	case ProviderOpenAI:
		if c.AIAPIKey == "" && c.AIBaseURL == "" {
			return errors.New("AI_API_KEY or AI_BASE_URL is required for openai")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}
	return nil
}
