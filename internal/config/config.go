package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	LogFormatJSON = "json"
	LogFormatText = "text"

	// DefaultRequiredLineup applies when game.required-lineup is not set.
	DefaultRequiredLineup = 6
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string    `yaml:"log-format" env:"LOG_FORMAT" env-default:"json"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage   Storage   `yaml:"storage"`
	Redis     Redis     `yaml:"redis"`
	Game      Game      `yaml:"game"`
	WebSocket WebSocket `yaml:"websocket"`
	RateLimit RateLimit `yaml:"rate-limit"`
	Sentry    Sentry    `yaml:"sentry"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"volleyball.db"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	// RequiredLineup is the roster size needed before stats are accepted.
	// Zero disables the check. The default is applied in Load so that an
	// explicit zero in the file survives.
	RequiredLineup int `yaml:"required-lineup" env:"GAME_REQUIRED_LINEUP"`
}

type WebSocket struct {
	WriteTimeout time.Duration `yaml:"write-timeout" env:"WS_WRITE_TIMEOUT" env-default:"5s"`
	// AllowedOrigins is checked on upgrade. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed-origins" env:"WS_ALLOWED_ORIGINS" env-separator:","`
}

type RateLimit struct {
	RefillPerSecond float64 `yaml:"refill-per-second" env:"RATE_LIMIT_REFILL_PER_SECOND" env-default:"5"`
	Burst           int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"20"`
}

type Sentry struct {
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
}

// Load reads the YAML file at path with environment overrides. A missing
// file is not an error; the environment and defaults are used instead.
func Load(path string) (*Config, error) {
	config := &Config{Game: Game{RequiredLineup: DefaultRequiredLineup}}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	if !slices.Contains([]string{StorageSQLite, StorageRedis}, that.Storage.Driver) {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, that.Storage.Driver)
	}

	if !slices.Contains([]string{LogFormatJSON, LogFormatText}, that.LogFormat) {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, that.LogFormat)
	}

	if that.Game.RequiredLineup < 0 || that.Game.RequiredLineup > 6 {
		return fmt.Errorf("%w: required lineup must be between 0 and 6, got %d", ErrInvalidConfig, that.Game.RequiredLineup)
	}

	if that.RateLimit.RefillPerSecond <= 0 || that.RateLimit.Burst <= 0 {
		return fmt.Errorf("%w: rate limit refill and burst must be positive", ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
