// Package application provides the application interface for curator commands.
//
// The Application interface is the contract between the app layer and the
// command implementations. Commands accept it rather than the concrete App so
// they can be tested against a Mock:
//
//	mock := &application.Mock{
//	    WorkspaceFunc: func(context.Context) (*workspace.Workspace, error) {
//	        return workspace.New(workspace.NewPaths(t.TempDir())), nil
//	    },
//	}
//	cmd := ingest.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/mappings"
	"github.com/workshopdir/curator/pkg/research"
)

// Application provides what commands need from the app.
// The App struct from cmd/curator/app implements this interface.
type Application interface {
	// Workspace returns the data directory with the configured write policy
	// (dry run, backups). Building the backup stores may fail.
	Workspace(ctx context.Context) (*workspace.Workspace, error)

	// Workshops returns the configured workshop registry.
	Workshops() directory.Workshops

	// Overrides returns the identity override table, from the configured
	// file or the built-in defaults.
	Overrides() (*identity.Overrides, error)

	// KeywordBranches returns the keyword to taxonomy branch table used to
	// guess where a missing id belongs.
	KeywordBranches() (mappings.KeywordBranches, error)

	// Researcher returns the configured LLM researcher.
	Researcher(ctx context.Context) (research.Researcher, error)

	// ResearchOptions returns the batch size and pacing delay.
	ResearchOptions() research.BatchOptions

	// DashboardURL is the base URL shareable links are built on.
	DashboardURL() string

	// MetricsFile is the default Prometheus textfile path, or "".
	MetricsFile() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
