package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultConfigFile is consulted when TASKLIST_CONFIG is unset.
	DefaultConfigFile = "tasklist.toml"

	DefaultListenAddr = ":8080"
	DefaultDBPath     = "tasklist.db"
	DefaultCacheTTL   = 5 * time.Minute
)

// Duration wraps time.Duration so TOML values like "30s" decode directly.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds process configuration.
type Config struct {
	ListenAddr            string   `toml:"listen_addr"`
	DBPath                string   `toml:"db_path"`
	RedisConnectionString string   `toml:"redis_connection_string"`
	CacheTTL              Duration `toml:"cache_ttl"`
	Debug                 bool     `toml:"debug"`
}

// Load builds configuration from sources in priority order: built-in
// defaults, then an optional TOML file, then environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: DefaultListenAddr,
		DBPath:     DefaultDBPath,
		CacheTTL:   Duration{DefaultCacheTTL},
	}

	path := os.Getenv("TASKLIST_CONFIG")
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("REDIS_CONNECTION_STRING"); v != "" {
		cfg.RedisConnectionString = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid CACHE_TTL: %q", v)
		}
		cfg.CacheTTL = Duration{d}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %q", v)
		}
		cfg.Debug = dbg
	}
	return nil
}
