/*
Package config holds the server configuration.

PURPOSE:
  Defaults for every setting, optionally overridden by a TOML file and then
  by command-line flags (see cmd/server).

EXAMPLE FILE:
  [server]
  port = 8080
  cors_origins = ["http://localhost:5173"]

  [store]
  path = "./data/periods.db"

  [session]
  secret = "change-me-32-bytes-of-randomness"

  [calendar]
  timezone = "Europe/London"
  fiscal_year_start = "04-06"
  view_range = "1M"

  [log]
  level = "debug"
  format = "json"
*/
package config

import (
	"errors"
	"fmt"
	"time"

	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/warp/period-engine/navigation"
	"github.com/warp/period-engine/observability"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Session  SessionConfig  `toml:"session"`
	Calendar CalendarConfig `toml:"calendar"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	ShutdownSeconds int      `toml:"shutdown_seconds"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type SessionConfig struct {
	Name   string `toml:"name"`
	Secret string `toml:"secret"`
	// MaxAgeDays bounds how long a selected custom range survives.
	MaxAgeDays int `toml:"max_age_days"`
}

// CalendarConfig holds the defaults for users without stored preferences.
type CalendarConfig struct {
	Timezone        string `toml:"timezone"`
	FiscalYearStart string `toml:"fiscal_year_start"`
	ViewRange       string `toml:"view_range"`
	Locale          string `toml:"locale"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
			ShutdownSeconds: 30,
		},
		Store:   StoreConfig{Path: "./data/periods.db"},
		Session: SessionConfig{Name: "period-engine", Secret: "dev-only-session-secret-change-me", MaxAgeDays: 30},
		Calendar: CalendarConfig{
			Timezone:  "UTC",
			ViewRange: navigation.DefaultViewRange,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if len(c.Session.Secret) < 16 {
		errs = append(errs, errors.New("session.secret must be at least 16 bytes"))
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("calendar.timezone: %w", err))
	}
	if c.Calendar.FiscalYearStart != "" {
		if _, err := navigation.ParseFiscalYearStart(c.Calendar.FiscalYearStart); err != nil {
			errs = append(errs, fmt.Errorf("calendar.fiscal_year_start: %w", err))
		}
	}
	if c.Calendar.ViewRange != "" {
		if _, err := navigation.ParseFrequency(c.Calendar.ViewRange); err != nil {
			errs = append(errs, fmt.Errorf("calendar.view_range: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Location returns the calendar timezone, UTC if it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Fiscal returns the default fiscal calendar.
func (c Config) Fiscal() navigation.FiscalCalendar {
	fc, err := navigation.ParseFiscalYearStart(c.Calendar.FiscalYearStart)
	if err != nil {
		return navigation.FiscalCalendar{}
	}
	return fc
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

func (c Config) SessionMaxAge() int {
	return c.Session.MaxAgeDays * 24 * 60 * 60
}

func (c Config) LogConfig() observability.LogConfig {
	return observability.LogConfig{Level: c.Log.Level, Format: c.Log.Format}
}
