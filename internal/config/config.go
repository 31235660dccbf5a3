// Package config loads settings for the API server and the CLI client.
// Values come from defaults, an optional YAML file, a .env file and
// INSIGHTHUB_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "INSIGHTHUB"

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	StaticDir       string        `mapstructure:"static_dir" yaml:"static_dir"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// Seed fills an empty store with the sample projects on start.
	Seed bool `mapstructure:"seed" yaml:"seed"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver"`
	SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// ClientConfig drives insighthubctl.
type ClientConfig struct {
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`
	Token            string        `mapstructure:"token" yaml:"token"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout" yaml:"open_timeout"`
	Cache            string        `mapstructure:"cache" yaml:"cache"`
	CacheDir         string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	RedisURL         string        `mapstructure:"redis_url" yaml:"redis_url"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	Profile          string        `mapstructure:"profile" yaml:"profile"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Client cache kinds.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "web/dist",
			AllowedOrigins:  []string{},
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			SQLitePath:    "data/insighthub.db",
			MongoDatabase: "insighthub",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Client: ClientConfig{
			BaseURL:          "http://localhost:8080",
			Timeout:          10 * time.Second,
			FailureThreshold: 3,
			OpenTimeout:      5 * time.Second,
			Cache:            CacheFile,
			CacheDir:         defaultCacheDir(),
			Profile:          "default",
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "insighthub")
	}
	return ".insighthub-cache"
}

// Load reads path when it is set, otherwise insighthub.yaml from the working
// directory or ~/.insighthub if present. Environment variables override the
// file: server.addr is INSIGHTHUB_SERVER_ADDR.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("insighthub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".insighthub"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.static_dir", cfg.Server.StaticDir)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.seed", cfg.Server.Seed)

	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)

	v.SetDefault("auth.jwt_secret", cfg.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", cfg.Auth.TokenTTL)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)

	v.SetDefault("client.base_url", cfg.Client.BaseURL)
	v.SetDefault("client.token", cfg.Client.Token)
	v.SetDefault("client.timeout", cfg.Client.Timeout)
	v.SetDefault("client.failure_threshold", cfg.Client.FailureThreshold)
	v.SetDefault("client.open_timeout", cfg.Client.OpenTimeout)
	v.SetDefault("client.cache", cfg.Client.Cache)
	v.SetDefault("client.cache_dir", cfg.Client.CacheDir)
	v.SetDefault("client.redis_url", cfg.Client.RedisURL)
	v.SetDefault("client.cache_ttl", cfg.Client.CacheTTL)
	v.SetDefault("client.profile", cfg.Client.Profile)
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for the mongo driver")
		}
		if c.Storage.MongoDatabase == "" {
			return errors.New("storage.mongo_database is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	switch c.Client.Cache {
	case CacheFile:
		if c.Client.CacheDir == "" {
			return errors.New("client.cache_dir is required for the file cache")
		}
	case CacheRedis:
		if c.Client.RedisURL == "" {
			return errors.New("client.redis_url is required for the redis cache")
		}
	case CacheMemory:
	default:
		return fmt.Errorf("unknown client cache %q", c.Client.Cache)
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}
