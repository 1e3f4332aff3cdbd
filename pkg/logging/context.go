package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// tag returns ctx with a child logger carrying key=value.
func tag(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithRunID tags every line of one command invocation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return tag(ctx, "run_id", runID)
}

// WithOperation names the command being run.
func WithOperation(ctx context.Context, operation string) context.Context {
	return tag(ctx, "operation", operation)
}

// WithFaculty tags lines about one faculty member.
func WithFaculty(ctx context.Context, facultyID string) context.Context {
	return tag(ctx, "faculty_id", facultyID)
}

// WithWorkshop tags lines about one workshop roster.
func WithWorkshop(ctx context.Context, workshopID string) context.Context {
	return tag(ctx, "workshop_id", workshopID)
}

// WithFile tags lines about one input file.
func WithFile(ctx context.Context, path string) context.Context {
	return tag(ctx, "file", path)
}
