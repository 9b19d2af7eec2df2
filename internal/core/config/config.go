package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/thosangs/revroll/internal/core/calendar"
	"github.com/thosangs/revroll/internal/core/summary"
)

// Config represents the top-level application config plus resolved summary profiles.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Rollup   RollupConfig   `koanf:"rollup"`

	// Profiles is populated by Load after parsing profile files.
	Profiles []summary.Profile `koanf:"-"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type RollupConfig struct {
	ProfileDir      string `koanf:"profile_dir"`
	RequireProfiles bool   `koanf:"require_profiles"`
	Enabled         bool   `koanf:"enabled"`
	CronInterval    string `koanf:"cron_interval"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Database.Type != "" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if strings.TrimSpace(c.Rollup.ProfileDir) == "" {
		return fmt.Errorf("rollup.profile_dir is required")
	}
	interval, err := time.ParseDuration(c.Rollup.CronInterval)
	if err != nil {
		return fmt.Errorf("invalid rollup.cron_interval %q: %w", c.Rollup.CronInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("rollup.cron_interval must be > 0")
	}

	return nil
}

// Load parses config from file + env, validates it, then loads and validates
// summary profiles (including their holiday calendar references).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"database.type":           "postgres",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"rollup.profile_dir":      "./config/profiles",
		"rollup.require_profiles": true,
		"rollup.enabled":          true,
		"rollup.cron_interval":    "2m",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("REVROLL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "REVROLL_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := summary.NewFileSystemProfileRepository(cfg.Rollup.ProfileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary profiles: %w", err)
	}
	profiles := repo.GetProfiles()
	if cfg.Rollup.Enabled && cfg.Rollup.RequireProfiles && len(profiles) == 0 {
		return nil, fmt.Errorf("no summary profiles found in %q", cfg.Rollup.ProfileDir)
	}

	for _, p := range profiles {
		if _, err := calendar.ByName(p.HolidayCalendar); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}

	cfg.Profiles = profiles
	return &cfg, nil
}
