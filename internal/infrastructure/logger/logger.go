package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup creates and configures a new logger instance.
// This is an infrastructure component that provides logging functionality.
func Setup(level string, pretty bool) zerolog.Logger {
	var l zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stderr)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return out.Level(l).With().Timestamp().Logger()
}

// Logger creates a default JSON logger with info level.
func Logger() zerolog.Logger {
	return Setup("info", false)
}
