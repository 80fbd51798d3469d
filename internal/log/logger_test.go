package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("garbage"))
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelInfo,
		Component: "api",
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	scoped := logger.WithComponent("wizard")
	scoped.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "component=wizard")
	assert.NotContains(t, out, "component=api")
}

func TestWithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelInfo,
		Component: "api",
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.With("project_id", "p-1").Info("created")
	assert.Contains(t, buf.String(), "project_id=p-1")
}
