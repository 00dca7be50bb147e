package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/period-engine/navigation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, navigation.FiscalCalendar{}, cfg.Fiscal())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9090

[calendar]
timezone = "Europe/London"
fiscal_year_start = "04-06"
view_range = "3M"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, Default().Server.CORSOrigins, cfg.Server.CORSOrigins, "unset keys keep their defaults")
	assert.Equal(t, "Europe/London", cfg.Location().String())
	assert.Equal(t, navigation.FiscalCalendar{Custom: true, StartMonth: time.April, StartDay: 6}, cfg.Fiscal())
	assert.Equal(t, "3M", cfg.Calendar.ViewRange)
	assert.Equal(t, "debug", cfg.LogConfig().Level)
	assert.Equal(t, "json", cfg.LogConfig().Format)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 0

[calendar]
fiscal_year_start = "02-30"
view_range = "fortnight"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, navigation.ErrInvalidFiscalYearStart)
	assert.ErrorIs(t, err, navigation.ErrUnsupportedFrequency)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = "))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
