package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the config file.
const (
	EnvConfigPath   = "SCRAPER_CONFIG"
	EnvBaseURL      = "SCRAPER_BASE_URL"
	EnvPollInterval = "SCRAPER_POLL_INTERVAL"
	EnvLogLevel     = "SCRAPER_LOG_LEVEL"
)

type Config struct {
	// Scraping service
	API struct {
		BaseURL string `toml:"base_url"`
		Timeout int    `toml:"timeout"` // Request timeout in seconds
	} `toml:"api"`

	// Background refresh of the job monitor and document search
	Polling struct {
		Interval int `toml:"interval"` // Seconds between refreshes
	} `toml:"polling"`

	Log struct {
		Dir   string `toml:"dir"`
		Level string `toml:"level"` // debug, info, warn, error
	} `toml:"log"`

	// Local stub service (cmd/api)
	DevServer struct {
		Host        string `toml:"host"`
		Port        int    `toml:"port"`
		StepSeconds int    `toml:"step_seconds"` // How often stub jobs advance a status
	} `toml:"devserver"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = 30
	cfg.Polling.Interval = 60
	cfg.Log.Dir = "tmp"
	cfg.Log.Level = "info"
	cfg.DevServer.Host = "127.0.0.1"
	cfg.DevServer.Port = 8000
	cfg.DevServer.StepSeconds = 5
	return cfg
}

// Timeout is the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// PollInterval is the background refresh period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.Interval) * time.Second
}

// ConfigPath returns the path to the config file. SCRAPER_CONFIG wins over
// ~/.config/scrape-client/config.toml.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandHome(p)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "scrape-client")
	return filepath.Join(configDir, "config.toml"), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return strings.Replace(path, "~", homeDir, 1), nil
}

// LoadEnv loads KEY=value pairs from envFile into the process environment
// without overriding variables that are already set. A missing file is only
// an error when required is true.
func LoadEnv(envFile string, required bool) error {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}

// Load reads configuration from ConfigPath.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from path, creating the file with defaults if
// it doesn't exist. Environment overrides are applied last.
func LoadFrom(configPath string) (*Config, error) {
	configPath, err := expandHome(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveTo(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Merge with defaults for any missing values
	defaultCfg := DefaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultCfg.API.BaseURL
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = defaultCfg.API.Timeout
	}
	if cfg.Polling.Interval <= 0 {
		cfg.Polling.Interval = defaultCfg.Polling.Interval
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = defaultCfg.Log.Dir
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultCfg.Log.Level
	}
	if cfg.DevServer.Host == "" {
		cfg.DevServer.Host = defaultCfg.DevServer.Host
	}
	if cfg.DevServer.Port == 0 {
		cfg.DevServer.Port = defaultCfg.DevServer.Port
	}
	if cfg.DevServer.StepSeconds <= 0 {
		cfg.DevServer.StepSeconds = defaultCfg.DevServer.StepSeconds
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if interval := os.Getenv(EnvPollInterval); interval != "" {
		seconds, err := parseSeconds(interval)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollInterval, err)
		}
		c.Polling.Interval = seconds
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	return nil
}

// parseSeconds accepts a plain number of seconds or a duration such as "90s".
func parseSeconds(value string) (int, error) {
	if n, err := strconv.Atoi(value); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive: %d", n)
		}
		return n, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < time.Second {
		return 0, fmt.Errorf("must be at least one second: %s", d)
	}
	return int(d / time.Second), nil
}

// Set assigns a value by its "section.key" name.
func (c *Config) Set(keyPath, value string) error {
	parts := strings.Split(keyPath, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}
	section, key := parts[0], parts[1]

	switch section {
	case "api":
		switch key {
		case "base_url":
			c.API.BaseURL = value
		case "timeout":
			n, err := parseSeconds(value)
			if err != nil {
				return fmt.Errorf("invalid timeout value: %s", value)
			}
			c.API.Timeout = n
		default:
			return fmt.Errorf("unknown api key: %s", key)
		}
	case "polling":
		switch key {
		case "interval":
			n, err := parseSeconds(value)
			if err != nil {
				return fmt.Errorf("invalid interval value: %s", value)
			}
			c.Polling.Interval = n
		default:
			return fmt.Errorf("unknown polling key: %s", key)
		}
	case "log":
		switch key {
		case "dir":
			c.Log.Dir = value
		case "level":
			c.Log.Level = value
		default:
			return fmt.Errorf("unknown log key: %s", key)
		}
	case "devserver":
		switch key {
		case "host":
			c.DevServer.Host = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port <= 0 || port > 65535 {
				return fmt.Errorf("invalid port value: %s", value)
			}
			c.DevServer.Port = port
		case "step_seconds":
			n, err := parseSeconds(value)
			if err != nil {
				return fmt.Errorf("invalid step_seconds value: %s", value)
			}
			c.DevServer.StepSeconds = n
		default:
			return fmt.Errorf("unknown devserver key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
	return nil
}

// Save writes the configuration to ConfigPath.
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, configPath)
}

// SaveTo writes the configuration to configPath.
func SaveTo(cfg *Config, configPath string) error {
	configPath, err := expandHome(configPath)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
