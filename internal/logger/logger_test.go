package logger

import (
	"bytes"
	"class-seat-monitor/internal/config"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	log, err := New(config.Default().Log)
	require.NoError(t, err)
	log.Debug().Msg("dropped at info level")
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "loud"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_ExtraWriterAndFile(t *testing.T) {
	cfg := config.Default().Log
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "logs", "monitor.log")

	var buf bytes.Buffer
	log, err := New(cfg, &buf)
	require.NoError(t, err)

	probeLog := Component(log, "probe")
	probeLog.Info().Str("course", "CSE 1010 001").Msg("checked")

	assert.Contains(t, buf.String(), `"component":"probe"`)
	assert.Contains(t, buf.String(), `"course":"CSE 1010 001"`)

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"checked"`)
}

func TestNew_RedirectsStandardLog(t *testing.T) {
	cfg := config.Default().Log
	cfg.Format = "json"

	var buf bytes.Buffer
	_, err := New(cfg, &buf)
	require.NoError(t, err)
	defer stdlog.SetOutput(os.Stderr)

	stdlog.Print("driver says hello")
	assert.Contains(t, buf.String(), `"component":"stdlog"`)
	assert.Contains(t, buf.String(), "driver says hello")
}

func TestNew_RelativeFileUnderDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := config.Default().Log
	cfg.Format = "json"
	cfg.File = filepath.Join("logs", "monitor.log")

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info().Msg("stored")

	data, err := os.ReadFile(filepath.Join(config.DataDir(), "logs", "monitor.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"stored"`)
	assert.True(t, strings.HasPrefix(config.DataDir(), home))
}
