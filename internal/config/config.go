package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config global configuration (mirrors config/config.yaml)
type Config struct {
	Server ServerConfig `mapstructure:"server"` // HTTP server
	Cache  CacheConfig  `mapstructure:"cache"`  // local cache database
	Remote RemoteConfig `mapstructure:"remote"` // remote document backend selection
	Gist   GistConfig   `mapstructure:"gist"`   // GitHub gist backend
	Auth   AuthConfig   `mapstructure:"auth"`   // shared site passphrase
	Log    LogConfig    `mapstructure:"log"`    // logging
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port  int    `mapstructure:"port"`  // listen port
	Mode  string `mapstructure:"mode"`  // gin mode: debug/release/test
	Pprof bool   `mapstructure:"pprof"` // register /debug/pprof routes
}

// CacheConfig local cache database settings
type CacheConfig struct {
	Driver          string        `mapstructure:"driver"`            // sqlite or postgres
	DSN             string        `mapstructure:"dsn"`               // file path (sqlite) or URL (postgres)
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // pool size
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // idle connections
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // connection lifetime
}

// RemoteConfig remote store selection
type RemoteConfig struct {
	Backend string `mapstructure:"backend"` // registered backend name, "gist" by default
}

// GistConfig GitHub gist backend settings
type GistConfig struct {
	BaseURL     string `mapstructure:"base_url"`    // API base address
	Token       string `mapstructure:"token"`       // personal access token (prefer GITHUB_TOKEN)
	Description string `mapstructure:"description"` // description tag used to find the document
	FileName    string `mapstructure:"file_name"`   // file inside the gist holding the aggregate
	Timeout     int    `mapstructure:"timeout"`     // request timeout (seconds)
	Proxy       string `mapstructure:"proxy"`       // optional proxy URL
}

// AuthConfig site passphrase
type AuthConfig struct {
	SitePassword string `mapstructure:"site_password"` // default passphrase, overridden by saved settings
}

// LogConfig logging
type LogConfig struct {
	Level string `mapstructure:"level"` // logrus level name
}

// LoadConfig reads <dir>/config.yaml; secrets can be overridden from .env or the environment.
// A missing config file is not an error: defaults apply.
func LoadConfig(dir string) (*Config, error) {
	// 1. .env is optional, its values end up in the process environment
	_ = godotenv.Load()

	// 2. config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "./config"
	}
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	// 3. secrets: env > yaml
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.pprof", false)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.dsn", "./data/golf.db")
	v.SetDefault("cache.max_open_conns", 1)
	v.SetDefault("cache.max_idle_conns", 1)
	v.SetDefault("cache.conn_max_lifetime", time.Hour)
	v.SetDefault("remote.backend", "gist")
	v.SetDefault("gist.base_url", "https://api.github.com")
	v.SetDefault("gist.description", "Golf Competition Manager Data")
	v.SetDefault("gist.file_name", "golf-data.json")
	v.SetDefault("gist.timeout", 30)
	v.SetDefault("auth.site_password", "golf2025")
	v.SetDefault("log.level", "info")
}

// overrideFromEnv overrides sensitive settings from environment variables
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Gist.Token = v
	}
	if v := os.Getenv("GIST_PROXY"); v != "" {
		cfg.Gist.Proxy = v
	}
	if v := os.Getenv("SITE_PASSWORD"); v != "" {
		cfg.Auth.SitePassword = v
	}
	if v := os.Getenv("CACHE_DSN"); v != "" {
		cfg.Cache.DSN = v
	}
}
