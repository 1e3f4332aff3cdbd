// Package alerts writes short status lines ("✓ Merged 12 mappings") for
// humans. Reports themselves go to stdout through the output package; alerts
// go to stderr so piped JSON stays clean.
package alerts

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Level is the severity of an alert.
type Level int

const (
	// LevelError indicates a failure.
	LevelError Level = iota
	// LevelWarning indicates something the operator should review.
	LevelWarning
	// LevelInfo is general information.
	LevelInfo
	// LevelSuccess marks a completed operation.
	LevelSuccess
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Icon returns the symbol printed before the message.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return "✗"
	case LevelWarning:
		return "!"
	case LevelSuccess:
		return "✓"
	default:
		return "i"
	}
}

func (l Level) color() string {
	switch l {
	case LevelError:
		return "\033[31m"
	case LevelWarning:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	default:
		return "\033[36m"
	}
}

const reset = "\033[0m"

// Alert is one status line with optional indented details.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates an alert.
func New(level Level, format string, args ...any) *Alert {
	return &Alert{Level: level, Message: fmt.Sprintf(format, args...)}
}

// Success creates a success alert.
func Success(format string, args ...any) *Alert { return New(LevelSuccess, format, args...) }

// Warning creates a warning alert.
func Warning(format string, args ...any) *Alert { return New(LevelWarning, format, args...) }

// Info creates an info alert.
func Info(format string, args ...any) *Alert { return New(LevelInfo, format, args...) }

// Error creates an error alert.
func Error(format string, args ...any) *Alert { return New(LevelError, format, args...) }

// WithDetails appends detail lines.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// WithError attaches the underlying error.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// String renders the first line without color.
func (a *Alert) String() string {
	msg := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		msg += ": " + a.Err.Error()
	}
	return msg
}

// Writer prints alerts.
type Writer struct {
	w        io.Writer
	color    bool
	quiet    bool
	maxLines int
}

// NewWriter creates a writer. Color is used only when w is a terminal and
// noColor is false.
func NewWriter(w io.Writer, noColor bool) *Writer {
	color := false
	if f, ok := w.(*os.File); ok && !noColor {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Writer{w: w, color: color, maxLines: 20}
}

// Quiet suppresses everything below warning.
func (aw *Writer) Quiet(quiet bool) *Writer {
	aw.quiet = quiet
	return aw
}

// Write prints a. Detail lists longer than the limit are cut with a count.
func (aw *Writer) Write(a *Alert) error {
	if aw.quiet && a.Level > LevelWarning {
		return nil
	}
	line := a.String()
	if aw.color {
		line = a.Level.color() + line + reset
	}
	if _, err := fmt.Fprintln(aw.w, line); err != nil {
		return err
	}
	for i, d := range a.Details {
		if i == aw.maxLines {
			_, err := fmt.Fprintf(aw.w, "   ... and %d more\n", len(a.Details)-i)
			return err
		}
		if _, err := fmt.Fprintf(aw.w, "   %s\n", d); err != nil {
			return err
		}
	}
	return nil
}
