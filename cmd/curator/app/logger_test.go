package app

import (
	"testing"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "default level when nothing is set",
			config:   &Config{},
			expected: "info",
		},
		{
			name:     "verbose flag sets debug",
			config:   &Config{Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet flag sets warn",
			config:   &Config{Quiet: true},
			expected: "warn",
		},
		{
			name:     "both verbose and quiet prefers quiet",
			config:   &Config{Verbose: true, Quiet: true},
			expected: "warn",
		},
		{
			name:     "log-level flag overrides verbose",
			config:   &Config{LogLevelFlag: "error", Verbose: true},
			expected: "error",
		},
		{
			name:     "log-level flag overrides quiet",
			config:   &Config{LogLevelFlag: "trace", Quiet: true},
			expected: "trace",
		},
		{
			name:     "LOG_LEVEL applies without flags",
			config:   &Config{LogLevel: "debug"},
			expected: "debug",
		},
		{
			name:     "verbose outranks LOG_LEVEL",
			config:   &Config{LogLevel: "error", Verbose: true},
			expected: "debug",
		},
		{
			name:     "quiet outranks LOG_LEVEL",
			config:   &Config{LogLevel: "trace", Quiet: true},
			expected: "warn",
		},
		{
			name:     "flag is case insensitive",
			config:   &Config{LogLevelFlag: "WARN"},
			expected: "warn",
		},
		{
			name:     "invalid flag falls back to info",
			config:   &Config{LogLevelFlag: "loud", Verbose: true},
			expected: "info",
		},
		{
			name:     "invalid LOG_LEVEL falls back to info",
			config:   &Config{LogLevel: "chatty"},
			expected: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.expected {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestNewLogger verifies the logger level follows the config.
func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Quiet: true, LogFormat: "json", LogOutput: "stderr"})
	if got := logger.GetLevel().String(); got != "warn" {
		t.Errorf("logger level = %s, want warn", got)
	}
}
