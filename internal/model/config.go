package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// CategoryConfig defines one category tab. A task belongs to the category
// when its lower-cased title contains any keyword, or when it is assigned
// to one of RoleIDs.
type CategoryConfig struct {
	Name     string   `mapstructure:"name" yaml:"name"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	RoleIDs  []string `mapstructure:"role_ids" yaml:"role_ids"`
}

// DatabaseConfig locates the task store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// FeedConfig controls the change feed subscription.
type FeedConfig struct {
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// RosterConfig controls optimistic mutation behavior.
type RosterConfig struct {
	// CommitTimeoutSec bounds each remote commit. Zero waits indefinitely.
	CommitTimeoutSec int `mapstructure:"commit_timeout_sec" yaml:"commit_timeout_sec"`

	// RollbackOnFailure restores the pre-mutation values when a commit fails.
	RollbackOnFailure bool `mapstructure:"rollback_on_failure" yaml:"rollback_on_failure"`
}

// ScheduleConfig controls daily template generation.
type ScheduleConfig struct {
	GenerateCron string `mapstructure:"generate_cron" yaml:"generate_cron"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Feed       FeedConfig       `mapstructure:"feed" yaml:"feed"`
	Roster     RosterConfig     `mapstructure:"roster" yaml:"roster"`
	Schedule   ScheduleConfig   `mapstructure:"schedule" yaml:"schedule"`
	Categories []CategoryConfig `mapstructure:"categories" yaml:"categories"`
	Display    DisplayConfig    `mapstructure:"display" yaml:"display"`
}

// PollInterval returns the feed poll interval as a duration.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Feed.PollIntervalMs) * time.Millisecond
}

// CommitTimeout returns the commit timeout as a duration.
func (c *AppConfig) CommitTimeout() time.Duration {
	return time.Duration(c.Roster.CommitTimeoutSec) * time.Second
}

// DefaultCategories are the kitchen and front-of-house category tabs.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Name: "prep", Keywords: []string{"prep", "chop", "slice", "dice", "cut"}, RoleIDs: []string{"lead_prep_cook"}},
		{Name: "line", Keywords: []string{"line", "grill", "fryer", "station"}},
		{Name: "cleaning", Keywords: []string{"clean", "sanitize", "wash", "wipe"}},
		{Name: "front", Keywords: []string{"front", "counter", "register", "customer"}},
		{Name: "service", Keywords: []string{"service", "order", "delivery", "phone"}},
		{Name: "admin", Keywords: []string{"admin", "paperwork", "schedule", "report"}},
	}
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/kitchen-roster/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "kitchen-roster", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/kitchen-roster/roster.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "roster.db")
	}
	return filepath.Join(home, ".local", "share", "kitchen-roster", "roster.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database:   DatabaseConfig{Path: DefaultDatabasePath()},
		Feed:       FeedConfig{PollIntervalMs: 500},
		Schedule:   ScheduleConfig{GenerateCron: "0 5 * * *"},
		Categories: DefaultCategories(),
		Display:    DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("feed.poll_interval_ms", 500)
	v.SetDefault("roster.commit_timeout_sec", 0)
	v.SetDefault("roster.rollback_on_failure", false)
	v.SetDefault("schedule.generate_cron", "0 5 * * *")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	cfg.Categories = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if len(cfg.Categories) == 0 && !v.IsSet("categories") {
		cfg.Categories = DefaultCategories()
	}
	if cfg.Feed.PollIntervalMs <= 0 {
		cfg.Feed.PollIntervalMs = 500
	}
	if cfg.Roster.CommitTimeoutSec < 0 {
		return nil, fmt.Errorf("parsing config %s: roster.commit_timeout_sec must not be negative", path)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("feed", cfg.Feed)
	v.Set("roster", cfg.Roster)
	v.Set("schedule", cfg.Schedule)
	v.Set("categories", cfg.Categories)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
