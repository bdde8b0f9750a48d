package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomiwa-dev/naijapulse/internal/errors"
)

// Config holds the full server configuration. Values come from the YAML file
// first, then environment variables override individual fields.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Feed    FeedConfig    `yaml:"feed"`
	Cache   CacheConfig   `yaml:"cache"`
	Auth    AuthConfig    `yaml:"auth"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Mode           string        `yaml:"mode"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type StorageConfig struct {
	DataDir          string        `yaml:"data_dir"`
	SessionRetention time.Duration `yaml:"session_retention"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type FeedConfig struct {
	Seed           int64 `yaml:"seed"`
	MentionsPerDay int   `yaml:"mentions_per_day"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			Mode:           "release",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RequestTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			DataDir:          "./data",
			SessionRetention: 30 * 24 * time.Hour,
		},
		Redis: RedisConfig{},
		Feed: FeedConfig{
			Seed:           1,
			MentionsPerDay: 40,
		},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			RefreshInterval: 15 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret: "dev-only-secret-change-me",
		},
	}
}

// Load reads the YAML file at path when it exists, applies environment
// overrides, and validates the result. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, errors.NewConfigurationError(
					fmt.Sprintf("failed to read config file %s", path), err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.NewConfigurationError(
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("FEED_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Feed.Seed = seed
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = ttl
		}
	}
}

// Validate checks values that would break startup or silently misbehave.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.NewConfigurationError(
			fmt.Sprintf("server port %d out of range", c.Server.Port), nil)
	}
	if c.Storage.DataDir == "" {
		return errors.NewConfigurationError("storage data_dir must not be empty", nil)
	}
	if c.Feed.MentionsPerDay < 1 {
		return errors.NewConfigurationError(
			fmt.Sprintf("feed mentions_per_day must be positive, got %d", c.Feed.MentionsPerDay), nil)
	}
	if c.Cache.TTL <= 0 {
		return errors.NewConfigurationError("cache ttl must be positive", nil)
	}
	if c.Auth.JWTSecret == "" {
		return errors.NewConfigurationError("auth jwt_secret must not be empty", nil)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
