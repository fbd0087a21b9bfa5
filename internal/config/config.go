package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`

	Port string `mapstructure:"port" yaml:"port"`
}

type DownloadConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	Workers        int    `mapstructure:"workers" yaml:"workers"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

type CatalogConfig struct {
	BaseURL string         `mapstructure:"base_url" yaml:"base_url"`
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
}

// SourceConfig is one scrapeable index page, e.g. a console directory
// listing on a mirror site.
type SourceConfig struct {
	Console string `mapstructure:"console" yaml:"console"`
	URL     string `mapstructure:"url" yaml:"url"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// PollInterval returns the progress poll interval as a duration.
func (d DownloadConfig) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("port", "8080")
	v.SetDefault("download.dir", defaultDownloadDir())
	v.SetDefault("download.workers", 4)
	v.SetDefault("download.poll_interval_ms", 150)
	v.SetDefault("store.sqlite_path", defaultStorePath())
	v.SetDefault("log.path", "goroms.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("catalog.base_url", "https://myrient.erista.me/")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// The config file is optional: every key has a default or an env
	// override, so a missing file is only an error when explicitly named.
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if path != "config.yaml" {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Support Environment Variables
	v.SetEnvPrefix("GOROMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.Workers <= 0 {
		c.Download.Workers = 4
	}

	if c.Download.PollIntervalMs <= 0 {
		c.Download.PollIntervalMs = 150
	}

	if c.Download.Dir == "" {
		c.Download.Dir = defaultDownloadDir()
	}

	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = defaultStorePath()
	}

	for i, s := range c.Catalog.Sources {
		if s.Console == "" {
			return fmt.Errorf("catalog.sources[%d]: console name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("catalog source %s: url is required", s.Console)
		}
	}

	return nil
}

// defaultDownloadDir is the hard fallback used when neither an override
// nor a persisted setting names a destination.
func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "downloads")
	}
	return filepath.Join(home, "Downloads", "Roms")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "goroms.db")
	}
	return filepath.Join(home, ".goroms", "games.db")
}
