// Package constants provides shared constants used throughout the curator codebase.
// This includes file permissions, default file names, ingestion limits and
// the pacing values used by research batches.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Ingestion constants
const (
	// MinYear is the first header value treated as a year column (inclusive)
	MinYear = 2001

	// MaxYear is the upper bound for year columns (exclusive)
	MaxYear = 2099

	// PresenceMarker marks attendance in a year column (compared case-insensitively)
	PresenceMarker = "x"

	// DefaultRole is the role recorded for every participation
	DefaultRole = "faculty"
)

// Research pacing constants
const (
	// DefaultBatchSize is the number of faculty researched per batch
	DefaultBatchSize = 5

	// DefaultBatchDelay is the fixed pause between research batches
	DefaultBatchDelay = 2 * time.Second

	// DefaultGeminiModel is the model used by the Gemini researcher
	DefaultGeminiModel = "gemini-2.5-flash"

	// ResearchTimeout bounds a single research lookup
	ResearchTimeout = 30 * time.Second
)

// Default file names inside the data directory
const (
	// DefaultDataDir is the directory holding the curated JSON files
	DefaultDataDir = "data"

	// FacultyFile holds the faculty list
	FacultyFile = "faculty.json"

	// ParticipationsFile holds the participation list
	ParticipationsFile = "participations.json"

	// EnrichmentFile holds enrichment records keyed by faculty id
	EnrichmentFile = "faculty-enrichment.json"

	// MappingsFile holds the canonical term-mapping table
	MappingsFile = "term-mappings.json"

	// TaxonomyFile holds the research topic taxonomy
	TaxonomyFile = "taxonomy.json"

	// BackupDir is where backups are written, relative to the data directory
	BackupDir = "backups"

	// ConfigName is the config file name searched in $HOME and the working directory
	ConfigName = ".curator"
)

// Format constants
const (
	// DateFormat is used for enrichment lastUpdated stamps
	DateFormat = "2006-01-02"

	// TimeFormatFilename is the format used in backup file names
	TimeFormatFilename = "20060102T150405Z"
)

// Source labels recorded in enrichment profiles
const (
	// SourceFacultySubmitted marks data submitted by the faculty member
	SourceFacultySubmitted = "faculty-submitted"

	// SourceManualResearch marks data gathered by hand
	SourceManualResearch = "manual-research"

	// SourceGemini marks data proposed by the Gemini researcher
	SourceGemini = "gemini-research"
)
