// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"dymm/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the standard logrus logger: JSON lines to stdout, plus a
// rotated file when cfg.File is set.
func Init(cfg config.LogConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	Configure(log, cfg, os.Stdout)
	return log
}

// Configure applies cfg to log. stdout is always written to; it is a
// parameter so tests can capture output.
func Configure(log *logrus.Logger, cfg config.LogConfig, stdout io.Writer) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})

	writers := []io.Writer{stdout}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			log.WithError(err).Warn("cannot create log directory")
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
			Compress:   true,
		})
	}
	log.SetOutput(io.MultiWriter(writers...))
}
