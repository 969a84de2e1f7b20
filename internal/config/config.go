// Package config loads settings for the projtrack server and CLI.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// the process environment (after loading a .env file if one exists).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP server that owns the project store.
type ServerConfig struct {
	Port   string `yaml:"port"`
	DBPath string `yaml:"db_path"`
}

// ClientConfig configures how the CLI reaches the server.
type ClientConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // per remote call, e.g. "15s"
	RPS     float64       `yaml:"rps"`     // 0 disables pacing
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:   "8080",
			DBPath: "./data/projtrack.db",
		},
		Client: ClientConfig{
			URL:     "http://localhost:8080",
			Timeout: 15 * time.Second,
			RPS:     20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.DBPath = getEnv("DB_PATH", c.Server.DBPath)
	c.Client.URL = getEnv("PROJTRACK_URL", c.Client.URL)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v, ok := os.LookupEnv("PROJTRACK_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PROJTRACK_TIMEOUT %q: %w", v, err)
		}
		c.Client.Timeout = d
	}
	if v, ok := os.LookupEnv("PROJTRACK_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PROJTRACK_RPS %q: %w", v, err)
		}
		c.Client.RPS = rps
	}
	if v, ok := os.LookupEnv("LOG_DEV"); ok {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_DEV %q: %w", v, err)
		}
		c.Log.Development = dev
	}

	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got %q", c.Server.Port))
	}
	if c.Server.DBPath == "" {
		errs = append(errs, errors.New("server db_path is required"))
	}

	if u, err := url.Parse(c.Client.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("client url must be an http(s) URL, got %q", c.Client.URL))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client timeout must be positive, got %s", c.Client.Timeout))
	}
	if c.Client.RPS < 0 {
		errs = append(errs, fmt.Errorf("client rps must not be negative, got %v", c.Client.RPS))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
