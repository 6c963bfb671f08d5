// Package config loads courtside settings from defaults, an optional YAML
// file and COURTSIDE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "COURTSIDE"

// Config is the typed view over the loaded settings.
type Config struct {
	API      APIConfig
	Pager    PagerConfig
	Schedule ScheduleConfig
	BoxScore BoxScoreConfig
	Logging  LoggingConfig
	Export   ExportConfig

	// File is the config file that was read, empty when none was found.
	File string
}

type APIConfig struct {
	BaseURL string
	Prefix  string
	Key     string
	Timeout time.Duration
	PerPage int
}

type PagerConfig struct {
	MaxPages int
}

type ScheduleConfig struct {
	DaysBefore int
	DaysAfter  int
}

type BoxScoreConfig struct {
	TopN int
}

type LoggingConfig struct {
	Level string
	File  string
}

type ExportConfig struct {
	DSN      string
	RedisURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.balldontlie.io")
	v.SetDefault("api.prefix", "/nba/v1")
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.per_page", 100)
	v.SetDefault("pager.max_pages", 500)
	v.SetDefault("schedule.days_before", 2)
	v.SetDefault("schedule.days_after", 2)
	v.SetDefault("boxscore.top_n", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("export.dsn", "")
	v.SetDefault("export.redis_url", "")
}

// DefaultPath is ~/.config/courtside/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "courtside", "config.yaml")
}

// Load reads settings in increasing precedence: defaults, the YAML file at
// path (or DefaultPath when path is empty and the file exists), environment
// variables, then overrides. A missing explicit path is an error.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case explicit:
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
				path = ""
			default:
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.key", envPrefix+"_API_KEY", "BALLDONTLIE_API_KEY"); err != nil {
		return nil, err
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Prefix:  v.GetString("api.prefix"),
			Key:     v.GetString("api.key"),
			Timeout: v.GetDuration("api.timeout"),
			PerPage: v.GetInt("api.per_page"),
		},
		Pager:    PagerConfig{MaxPages: v.GetInt("pager.max_pages")},
		Schedule: ScheduleConfig{DaysBefore: v.GetInt("schedule.days_before"), DaysAfter: v.GetInt("schedule.days_after")},
		BoxScore: BoxScoreConfig{TopN: v.GetInt("boxscore.top_n")},
		Logging:  LoggingConfig{Level: v.GetString("logging.level"), File: v.GetString("logging.file")},
		Export:   ExportConfig{DSN: v.GetString("export.dsn"), RedisURL: v.GetString("export.redis_url")},
		File:     path,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the clients cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an http(s) URL", c.API.BaseURL)
	}
	if c.API.Prefix != "" && !strings.HasPrefix(c.API.Prefix, "/") {
		return fmt.Errorf("api.prefix %q must start with /", c.API.Prefix)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.PerPage <= 0 || c.API.PerPage > 100 {
		return fmt.Errorf("api.per_page must be between 1 and 100, got %d", c.API.PerPage)
	}
	if c.Pager.MaxPages <= 0 {
		return fmt.Errorf("pager.max_pages must be positive, got %d", c.Pager.MaxPages)
	}
	if c.Schedule.DaysBefore < 0 || c.Schedule.DaysAfter < 0 {
		return fmt.Errorf("schedule window cannot be negative")
	}
	if c.BoxScore.TopN <= 0 {
		return fmt.Errorf("boxscore.top_n must be positive, got %d", c.BoxScore.TopN)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
