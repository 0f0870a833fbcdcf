// Package config loads the service configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const envPrefix = "BANKPRED_"

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		Type  string `yaml:"type"`
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Display struct {
		Locale string `yaml:"locale"`
	} `yaml:"display"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Load reads path (a missing file is not an error), applies .env and
// BANKPRED_* overrides, then defaults, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(envPrefix + "HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_PORT: %w", envPrefix, err)
		}
		cfg.Http.Port = port
	}
	if v := getenv(envPrefix + "HTTP_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sHTTP_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Http.Timeout = timeout
	}
	if v := getenv(envPrefix + "ALLOWED_ORIGINS"); v != "" {
		cfg.Http.AllowedOrigins = strings.Split(v, ",")
	}
	if v := getenv(envPrefix + "MODEL_TYPE"); v != "" {
		cfg.Model.Type = v
	}
	if v := getenv(envPrefix + "MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := getenv(envPrefix + "MODEL_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMODEL_WATCH: %w", envPrefix, err)
		}
		cfg.Model.Watch = watch
	}
	if v := getenv(envPrefix + "CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_SIZE: %w", envPrefix, err)
		}
		cfg.Cache.Size = size
	}
	if v := getenv(envPrefix + "LOCALE"); v != "" {
		cfg.Display.Locale = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(envPrefix + "LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := getenv(envPrefix + "LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Http.Port == 0 {
		cfg.Http.Port = 8080
	}
	if cfg.Http.Timeout == 0 {
		cfg.Http.Timeout = 30 * time.Second
	}
	if len(cfg.Http.AllowedOrigins) == 0 {
		cfg.Http.AllowedOrigins = []string{"*"}
	}
	if cfg.Http.MaxBodyBytes == 0 {
		cfg.Http.MaxBodyBytes = 64 << 10
	}
	if cfg.Model.Type == "" {
		cfg.Model.Type = "decision_tree"
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "model.json"
	}
	if cfg.Display.Locale == "" {
		cfg.Display.Locale = "en"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 28
	}
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	if c.Http.MaxBodyBytes < 0 {
		return errors.New("http.max_body_bytes must not be negative")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not supported", c.Log.Format)
	}
	return nil
}
