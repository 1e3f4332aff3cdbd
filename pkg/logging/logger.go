// Package logging provides structured logging for curator commands using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise, so batch
// runs under cron or CI produce machine-readable logs.
//
// Library code logs through the package helpers or FromContext:
//
//	logging.Warn().Str("faculty_id", id).Msg("No enrichment record; skipping update")
//
//	ctx = logging.WithWorkshop(ctx, "wog")
//	logging.FromContext(ctx).Info().Msg("Parsed roster")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the global logger instance.
var defaultLogger zerolog.Logger

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "auto"
	}
	defaultLogger = NewLoggerFromConfig(&Config{
		Level:      level,
		Format:     format,
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	})
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts a new info level log event.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a new warning level log event.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}
