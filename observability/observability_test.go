package observability

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var text bytes.Buffer
	NewLogger(&text, LogConfig{Level: "info", Format: "text"}).Info("hello", "code", "1M")
	assert.Contains(t, text.String(), "msg=hello")
	assert.Contains(t, text.String(), "code=1M")

	var js bytes.Buffer
	NewLogger(&js, LogConfig{Level: "info", Format: "json"}).Info("hello", "code", "1M")
	assert.Contains(t, js.String(), `"msg":"hello"`)
	assert.Contains(t, js.String(), `"code":"1M"`)
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "error"})

	logger.Debug("UpdateStartDate")
	logger.Info("request")
	assert.Empty(t, buf.String())

	logger.Error("cannot resolve frequency")
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.UnsupportedFrequencies.WithLabelValues("SubtractPeriod").Inc()
	m.Requests.WithLabelValues("/api/frequencies", "GET", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `period_engine_unsupported_frequency_total{operation="SubtractPeriod"} 1`)
	assert.Contains(t, rec.Body.String(), "period_engine_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
