// Package application provides a configurable Application for command tests.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/mappings"
	"github.com/workshopdir/curator/pkg/research"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	WorkspaceFunc       func(ctx context.Context) (*workspace.Workspace, error)
	WorkshopsFunc       func() directory.Workshops
	OverridesFunc       func() (*identity.Overrides, error)
	KeywordBranchesFunc func() (mappings.KeywordBranches, error)
	ResearcherFunc      func(ctx context.Context) (research.Researcher, error)
	ResearchOptionsFunc func() research.BatchOptions
	DashboardURLFunc    func() string
	MetricsFileFunc     func() string
	LoggerFunc          func() *zerolog.Logger
	OutputFormatFunc    func() string
	VersionFunc         func() string
	CommitFunc          func() string
	DateFunc            func() string
	BuiltByFunc         func() string
}

// Workspace returns the mock workspace or one rooted at "data".
func (m *Mock) Workspace(ctx context.Context) (*workspace.Workspace, error) {
	if m.WorkspaceFunc != nil {
		return m.WorkspaceFunc(ctx)
	}
	return workspace.New(workspace.NewPaths("")), nil
}

// Workshops returns the mock registry or nil.
func (m *Mock) Workshops() directory.Workshops {
	if m.WorkshopsFunc != nil {
		return m.WorkshopsFunc()
	}
	return nil
}

// Overrides returns the mock table or the defaults.
func (m *Mock) Overrides() (*identity.Overrides, error) {
	if m.OverridesFunc != nil {
		return m.OverridesFunc()
	}
	return identity.DefaultOverrides(), nil
}

// KeywordBranches returns the mock table or the defaults.
func (m *Mock) KeywordBranches() (mappings.KeywordBranches, error) {
	if m.KeywordBranchesFunc != nil {
		return m.KeywordBranchesFunc()
	}
	return mappings.DefaultKeywordBranches(), nil
}

// Researcher returns the mock researcher or one that never finds anything.
func (m *Mock) Researcher(ctx context.Context) (research.Researcher, error) {
	if m.ResearcherFunc != nil {
		return m.ResearcherFunc(ctx)
	}
	return research.NewStaticResearcher(nil), nil
}

// ResearchOptions returns the mock options or no pacing at all.
func (m *Mock) ResearchOptions() research.BatchOptions {
	if m.ResearchOptionsFunc != nil {
		return m.ResearchOptionsFunc()
	}
	return research.BatchOptions{Size: 5}
}

// DashboardURL returns the mock URL or a test one.
func (m *Mock) DashboardURL() string {
	if m.DashboardURLFunc != nil {
		return m.DashboardURLFunc()
	}
	return "https://dashboard.example.org/"
}

// MetricsFile returns the mock path or "".
func (m *Mock) MetricsFile() string {
	if m.MetricsFileFunc != nil {
		return m.MetricsFileFunc()
	}
	return ""
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

var _ application.Application = (*Mock)(nil)
