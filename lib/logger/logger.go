package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// --------------------------------------------------------------------------
// Logger Settings
// --------------------------------------------------------------------------

// Settings configures the application logger.
type Settings struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File is an optional log file path. When set, logs go to the file
	// (with rotation) in addition to stdout.
	File string
	// Rotation limits, only used when File is set. Zero values fall back
	// to defaults (100 MB, 3 backups, 28 days).
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// New creates a configured logrus logger. Components derive their own
// entries from it via WithField("component", ...).
func New(settings Settings) (*logrus.Logger, error) {
	level, err := parseLevel(settings.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if settings.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   settings.File,
			MaxSize:    orDefault(settings.MaxSizeMB, 100),
			MaxBackups: orDefault(settings.MaxBackups, 3),
			MaxAge:     orDefault(settings.MaxAgeDays, 28),
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	}

	return log, nil
}

// parseLevel converts a string level to a logrus.Level.
func parseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "warning", "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
