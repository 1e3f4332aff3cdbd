// Package app provides the application context and dependency management
// for the curator CLI: configuration, logging, and the lazily built
// workspace, backup stores and researcher that commands share.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/workshopdir/curator/internal/backup"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/mappings"
	"github.com/workshopdir/curator/pkg/research"
)

// App represents the curator application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	flags  rootFlags

	// Command output, nil for the process streams
	out    io.Writer
	errOut io.Writer

	// Workspace (lazy-initialized once flags are applied)
	mu        sync.Mutex
	workspace *workspace.Workspace
}

// New creates a new App with the given version information. Configuration
// is loaded from the default locations; --config reloads it once flags are
// parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format, or "" to auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Workshops returns the configured workshop registry.
func (a *App) Workshops() directory.Workshops {
	return a.config.Workshops
}

// Overrides loads the identity override table.
func (a *App) Overrides() (*identity.Overrides, error) {
	return identity.LoadOverrides(a.config.OverridesFile)
}

// KeywordBranches loads the keyword to branch table, or the defaults.
func (a *App) KeywordBranches() (mappings.KeywordBranches, error) {
	if a.config.BranchesFile == "" {
		return mappings.DefaultKeywordBranches(), nil
	}
	return mappings.LoadKeywordBranches(a.config.BranchesFile)
}

// Researcher creates the Gemini researcher. It fails when no API key is set.
func (a *App) Researcher(ctx context.Context) (research.Researcher, error) {
	return research.NewGeminiResearcher(ctx, a.config.Research.GeminiAPIKey, a.config.Research.GeminiModel)
}

// ResearchOptions returns the configured batch pacing.
func (a *App) ResearchOptions() research.BatchOptions {
	opts := research.DefaultBatchOptions()
	if a.config.Research.BatchSize > 0 {
		opts.Size = a.config.Research.BatchSize
	}
	if a.config.Research.BatchDelay >= 0 {
		opts.Delay = a.config.Research.BatchDelay
	}
	return opts
}

// DashboardURL returns the base for shareable links.
func (a *App) DashboardURL() string {
	return a.config.DashboardURL
}

// MetricsFile returns the configured Prometheus textfile path.
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}

// Workspace returns the data workspace, creating it on first use. This is
// thread-safe and ensures the backup stores are only built once.
func (a *App) Workspace(ctx context.Context) (*workspace.Workspace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.workspace != nil {
		return a.workspace, nil
	}

	paths := workspace.NewPaths(a.config.DataDir)
	opts := []workspace.Option{workspace.WithDryRun(a.config.DryRun)}
	manager, err := a.backups(ctx, paths)
	if err != nil {
		return nil, err
	}
	if manager != nil {
		opts = append(opts, workspace.WithBackups(manager))
	}

	a.workspace = workspace.New(paths, opts...)
	a.logger.Debug().
		Str("data_dir", paths.DataDir).
		Bool("dry_run", a.config.DryRun).
		Str("backup_driver", a.config.Backup.Driver).
		Msg("Workspace ready")
	return a.workspace, nil
}

// backups builds the backup manager for the configured driver.
func (a *App) backups(ctx context.Context, paths workspace.Paths) (*backup.Manager, error) {
	if a.config.Backup.Driver == BackupDriverNone {
		return nil, nil
	}
	dir := a.config.Backup.Dir
	if dir == "" {
		dir = paths.Backups
	}
	stores := []backup.Store{backup.NewFSStore(dir)}
	if a.config.Backup.Driver == BackupDriverS3 {
		s3Store, err := backup.NewS3Store(ctx, a.config.Backup.S3)
		if err != nil {
			return nil, errors.WrapResource("create", "backup store", "s3", err)
		}
		stores = append(stores, s3Store)
	}
	return backup.NewManager(stores...), nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output and alerts (useful for testing).
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) error {
		a.out = out
		a.errOut = errOut
		return nil
	}
}

// WithWorkspace sets a prepared workspace (useful for testing).
func WithWorkspace(ws *workspace.Workspace) Option {
	return func(a *App) error {
		a.workspace = ws
		return nil
	}
}
