package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/pelletier/go-toml/v2"

	"radar/internal/logging"
)

// Config holds every setting the application consumes. Environment
// variables use the bare field names (LOG_LEVEL, REDIS_HOST, ...).
type Config struct {
	Environment      string `toml:"environment"`
	LogLevel         string `toml:"log_level"`
	LogJSONFormat    bool   `toml:"log_json_format"`
	LogColors        string `toml:"log_colors"`
	RedisHost        string `toml:"redis_host"`
	RedisPort        int    `toml:"redis_port"`
	Workers          int    `toml:"workers"`
	ResultTTLSeconds int    `toml:"result_ttl_seconds"`
}

// Load builds the effective configuration. path names an optional TOML
// file; an empty path skips file loading unless the default file
// exists. A .env file in the working directory is folded into the
// environment before overrides are read.
func Load(path string) (*Config, error) {
	cfg := Default()

	candidate := path
	if candidate == "" {
		candidate = defaultConfigFile
	}
	data, err := os.ReadFile(candidate)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", candidate, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == "":
		// No default file is fine.
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", candidate, err)
	}

	// Matches the conventional .env loading of the settings layer;
	// missing files are ignored, existing env vars win.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("ENVIRONMENT"); ok {
		cfg.Environment = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("LOG_JSON_FORMAT"); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("LOG_JSON_FORMAT: %w", err)
		}
		cfg.LogJSONFormat = parsed
	}
	if v, ok := os.LookupEnv("LOG_COLORS"); ok {
		cfg.LogColors = v
	}
	if v, ok := os.LookupEnv("REDIS_HOST"); ok {
		cfg.RedisHost = v
	}
	if v, ok := os.LookupEnv("REDIS_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("REDIS_PORT: %w", err)
		}
		cfg.RedisPort = port
	}
	if v, ok := os.LookupEnv("WORKERS"); ok {
		workers, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("WORKERS: %w", err)
		}
		cfg.Workers = workers
	}
	if v, ok := os.LookupEnv("RESULT_TTL_SECONDS"); ok {
		ttl, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("RESULT_TTL_SECONDS: %w", err)
		}
		cfg.ResultTTLSeconds = ttl
	}
	return nil
}

func (c *Config) normalize() {
	c.Environment = strings.TrimSpace(c.Environment)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogColors = strings.ToLower(strings.TrimSpace(c.LogColors))
	c.RedisHost = strings.TrimSpace(c.RedisHost)
}

func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogColors {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("log colors: unsupported value %q", c.LogColors)
	}
	if c.RedisPort < 1 || c.RedisPort > 65535 {
		return fmt.Errorf("redis port: out of range %d", c.RedisPort)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", c.Workers)
	}
	if c.ResultTTLSeconds < 1 {
		return fmt.Errorf("result ttl: must be at least 1 second, got %d", c.ResultTTLSeconds)
	}
	return nil
}

// MinLevel returns the configured minimum log level. Load guarantees
// the value parses.
func (c *Config) MinLevel() logging.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

// ColorsEnabled resolves the tri-state color flag; "auto" follows
// whether stderr is a terminal.
func (c *Config) ColorsEnabled() bool {
	switch c.LogColors {
	case "on":
		return true
	case "off":
		return false
	default:
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// RedisAddr returns the host:port dial address for the task broker.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
