package logger

import (
	"class-seat-monitor/internal/config"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger from cfg. Console output goes to stderr;
// when cfg.File is set, records are also written to a rotated file. A
// relative cfg.File is placed under the per-user data directory. Extra
// writers receive the same records as the console.
func New(cfg config.LogConfig, extra ...io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", cfg.Level)
	}

	writers := []io.Writer{consoleWriter(cfg.Format, os.Stderr, false)}
	for _, w := range extra {
		writers = append(writers, consoleWriter(cfg.Format, w, true))
	}

	if cfg.File != "" {
		path := cfg.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.DataDir(), path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		// files always get JSON lines
		writers = append(writers, rotated)
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	// playwright and rod print through the standard logger
	stdlog.SetOutput(Component(log, "stdlog"))
	stdlog.SetFlags(0)

	return log, nil
}

func consoleWriter(format string, out io.Writer, noColor bool) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.DateTime,
	}
}

// Component derives a child logger tagged with the component name. Each
// package constructor tags its own logger, so pass callers the untagged one.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
