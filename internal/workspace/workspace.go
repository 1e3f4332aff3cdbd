// Package workspace loads and saves the curated data files of one data
// directory. Saves are guarded by the snapshot taken at load time, honor dry
// run, and back the previous file up before it is replaced.
package workspace

import (
	"context"
	"path/filepath"

	"github.com/workshopdir/curator/internal/backup"
	"github.com/workshopdir/curator/internal/store"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/mappings"
	"github.com/workshopdir/curator/pkg/taxonomy"
)

// Paths locates the data files.
type Paths struct {
	DataDir        string `json:"dataDir"`
	Faculty        string `json:"faculty"`
	Participations string `json:"participations"`
	Enrichment     string `json:"enrichment"`
	Mappings       string `json:"mappings"`
	Taxonomy       string `json:"taxonomy"`
	Backups        string `json:"backups"`
}

// NewPaths returns the default file layout under dataDir.
func NewPaths(dataDir string) Paths {
	if dataDir == "" {
		dataDir = constants.DefaultDataDir
	}
	return Paths{
		DataDir:        dataDir,
		Faculty:        filepath.Join(dataDir, constants.FacultyFile),
		Participations: filepath.Join(dataDir, constants.ParticipationsFile),
		Enrichment:     filepath.Join(dataDir, constants.EnrichmentFile),
		Mappings:       filepath.Join(dataDir, constants.MappingsFile),
		Taxonomy:       filepath.Join(dataDir, constants.TaxonomyFile),
		Backups:        filepath.Join(dataDir, constants.BackupDir),
	}
}

// Workspace is a data directory plus the write policy applied to it.
type Workspace struct {
	paths   Paths
	dryRun  bool
	backups *backup.Manager
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithDryRun makes every save a no-op that only logs.
func WithDryRun(dryRun bool) Option {
	return func(w *Workspace) {
		w.dryRun = dryRun
	}
}

// WithBackups backs files up through m before they are overwritten.
func WithBackups(m *backup.Manager) Option {
	return func(w *Workspace) {
		w.backups = m
	}
}

// New creates a workspace over paths.
func New(paths Paths, opts ...Option) *Workspace {
	w := &Workspace{paths: paths}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Paths returns the file layout.
func (w *Workspace) Paths() Paths {
	return w.paths
}

// DryRun reports whether saves are suppressed.
func (w *Workspace) DryRun() bool {
	return w.dryRun
}

// save writes v over snap's file and advances snap to the new content.
func (w *Workspace) save(ctx context.Context, v any, snap *store.Snapshot, version string) error {
	data, err := store.Marshal(v)
	if err != nil {
		return err
	}
	opts := []store.Option{store.WithSnapshot(*snap), store.WithDryRun(w.dryRun)}
	if w.backups != nil {
		opts = append(opts, w.backups.Hook(ctx, version))
	}
	if err := store.WriteFile(snap.Path, data, opts...); err != nil {
		return err
	}
	if !w.dryRun {
		*snap = store.Snapshot{Path: snap.Path, Sum: store.Checksum(data)}
	}
	return nil
}

// Directory is the faculty set as loaded from disk.
type Directory struct {
	*directory.Set

	faculty        store.Snapshot
	participations store.Snapshot
}

// LoadDirectory reads the faculty and participation files. Missing files
// yield an empty set.
func (w *Workspace) LoadDirectory() (*Directory, error) {
	var faculty []directory.Faculty
	fSnap, _, err := store.Load(w.paths.Faculty, &faculty)
	if err != nil {
		return nil, err
	}
	var participations []directory.Participation
	pSnap, _, err := store.Load(w.paths.Participations, &participations)
	if err != nil {
		return nil, err
	}
	return &Directory{
		Set:            directory.NewSet(faculty, participations),
		faculty:        fSnap,
		participations: pSnap,
	}, nil
}

// SaveDirectory normalizes d and writes both files.
func (w *Workspace) SaveDirectory(ctx context.Context, d *Directory) error {
	d.Normalize()
	faculty := d.List()
	if faculty == nil {
		faculty = []directory.Faculty{}
	}
	participations := d.Participations()
	if participations == nil {
		participations = []directory.Participation{}
	}
	// Check both before writing either so a stale file leaves the pair intact.
	for _, snap := range []store.Snapshot{d.faculty, d.participations} {
		if err := snap.Verify(); err != nil {
			return err
		}
	}
	if err := w.save(ctx, faculty, &d.faculty, ""); err != nil {
		return errors.WrapResource("save", "faculty", "", err)
	}
	if err := w.save(ctx, participations, &d.participations, ""); err != nil {
		return errors.WrapResource("save", "participations", "", err)
	}
	return nil
}

// Enrichment is the enrichment table as loaded from disk.
type Enrichment struct {
	Table enrichment.Table

	snap store.Snapshot
}

// LoadEnrichment reads the enrichment file. A missing file yields an empty
// table.
func (w *Workspace) LoadEnrichment() (*Enrichment, error) {
	data, snap, err := store.Read(w.paths.Enrichment)
	if err != nil {
		return nil, err
	}
	if snap.Missing {
		return &Enrichment{Table: make(enrichment.Table), snap: snap}, nil
	}
	t, err := enrichment.Parse(data, w.paths.Enrichment)
	if err != nil {
		return nil, err
	}
	return &Enrichment{Table: t, snap: snap}, nil
}

// SaveEnrichment writes the enrichment table.
func (w *Workspace) SaveEnrichment(ctx context.Context, e *Enrichment) error {
	if err := w.save(ctx, e.Table, &e.snap, ""); err != nil {
		return errors.WrapResource("save", "enrichment", "", err)
	}
	return nil
}

// Mappings is the term-mapping table as loaded from disk.
type Mappings struct {
	Table *mappings.Table

	snap store.Snapshot
}

// LoadMappings reads the mapping table. A missing file yields an empty
// table at version 1.0.
func (w *Workspace) LoadMappings() (*Mappings, error) {
	data, snap, err := store.Read(w.paths.Mappings)
	if err != nil {
		return nil, err
	}
	if snap.Missing {
		return &Mappings{Table: mappings.NewTable(), snap: snap}, nil
	}
	t, err := mappings.Parse(data, w.paths.Mappings)
	if err != nil {
		return nil, err
	}
	return &Mappings{Table: t, snap: snap}, nil
}

// SaveMappings replaces the mapping file with t. The backup of the previous
// file is tagged with previousVersion.
func (w *Workspace) SaveMappings(ctx context.Context, m *Mappings, t *mappings.Table, previousVersion string) error {
	if err := w.save(ctx, t, &m.snap, previousVersion); err != nil {
		return errors.WrapResource("save", "mappings", "", err)
	}
	m.Table = t
	return nil
}

// LoadTaxonomy reads the taxonomy. Unlike the other files it must exist.
func (w *Workspace) LoadTaxonomy() (*taxonomy.Taxonomy, error) {
	data, snap, err := store.Read(w.paths.Taxonomy)
	if err != nil {
		return nil, err
	}
	if snap.Missing {
		return nil, errors.NewNotFoundError("taxonomy", w.paths.Taxonomy)
	}
	return taxonomy.Parse(data, w.paths.Taxonomy)
}
