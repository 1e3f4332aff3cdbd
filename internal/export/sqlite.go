package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/mappings"
)

// Dataset is everything exported to the dashboard database.
type Dataset struct {
	Faculty        []directory.Faculty
	Participations []directory.Participation
	Enrichment     enrichment.Table
	Mappings       *mappings.Table
}

// Summary counts the rows written per table.
type Summary struct {
	Path           string `json:"path"`
	Faculty        int    `json:"faculty"`
	Participations int    `json:"participations"`
	Enrichment     int    `json:"enrichment"`
	ResearchAreas  int    `json:"researchAreas"`
	Mappings       int    `json:"mappings"`
}

var schema = []string{
	`DROP TABLE IF EXISTS research_areas`,
	`DROP TABLE IF EXISTS enrichment`,
	`DROP TABLE IF EXISTS participations`,
	`DROP TABLE IF EXISTS faculty`,
	`DROP TABLE IF EXISTS term_mappings`,
	`CREATE TABLE faculty (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL
	)`,
	`CREATE TABLE participations (
		faculty_id TEXT NOT NULL REFERENCES faculty(id),
		workshop_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (faculty_id, workshop_id, year)
	)`,
	`CREATE TABLE enrichment (
		faculty_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		confidence TEXT NOT NULL,
		last_updated TEXT,
		title TEXT,
		affiliation TEXT,
		department TEXT,
		lab_website TEXT,
		orcid TEXT,
		short_bio TEXT,
		source TEXT
	)`,
	`CREATE TABLE research_areas (
		faculty_id TEXT NOT NULL,
		area TEXT NOT NULL,
		PRIMARY KEY (faculty_id, area)
	)`,
	`CREATE TABLE term_mappings (
		term TEXT PRIMARY KEY,
		standardized_id TEXT NOT NULL,
		confidence TEXT NOT NULL,
		notes TEXT
	)`,
	`CREATE INDEX participations_workshop_year ON participations(workshop_id, year)`,
}

// WriteSQLite replaces the tables in the database at path with ds. The
// whole export runs in one transaction.
func WriteSQLite(ctx context.Context, path string, ds Dataset) (sum Summary, retErr error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return sum, errors.WrapIO("create", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return sum, errors.WrapResource("open", "sqlite", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return sum, errors.WrapResource("begin", "sqlite", path, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return sum, errors.WrapResource("create", "schema", "", err)
		}
	}

	sum.Path = path
	for _, f := range ds.Faculty {
		if _, err := tx.ExecContext(ctx, `INSERT INTO faculty(id, first_name, last_name) VALUES(?, ?, ?)`,
			f.ID, f.FirstName, f.LastName); err != nil {
			return sum, errors.WrapResource("export", "faculty", f.ID, err)
		}
		sum.Faculty++
	}
	for _, p := range ds.Participations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO participations(faculty_id, workshop_id, year, role) VALUES(?, ?, ?, ?)`,
			p.FacultyID, p.WorkshopID, p.Year, p.Role); err != nil {
			return sum, errors.WrapResource("export", "participation", p.FacultyID, err)
		}
		sum.Participations++
	}
	for _, id := range ds.Enrichment.IDs() {
		r := ds.Enrichment[id]
		d := r.Enrichment
		var updated any
		if !d.LastUpdated.IsZero() {
			updated = d.LastUpdated.Time.UTC().Format(time.RFC3339)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO enrichment(faculty_id, name, confidence, last_updated, title, affiliation, department, lab_website, orcid, short_bio, source)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, r.Name, string(d.Confidence), updated,
			d.Professional.Title, d.Professional.Affiliation, d.Professional.Department, d.Professional.LabWebsite,
			d.Academic.ORCID, d.Profile.ShortBio, d.Profile.Source); err != nil {
			return sum, errors.WrapResource("export", "enrichment", id, err)
		}
		sum.Enrichment++
		for _, area := range enrichment.UnionAreas(d.Academic.ResearchAreas, nil) {
			if _, err := tx.ExecContext(ctx, `INSERT INTO research_areas(faculty_id, area) VALUES(?, ?)`, id, area); err != nil {
				return sum, errors.WrapResource("export", "research area", id, err)
			}
			sum.ResearchAreas++
		}
	}
	if ds.Mappings != nil {
		for term, m := range ds.Mappings.Mappings {
			if _, err := tx.ExecContext(ctx, `INSERT INTO term_mappings(term, standardized_id, confidence, notes) VALUES(?, ?, ?, ?)`,
				term, m.StandardizedID, string(m.Confidence), m.Notes); err != nil {
				return sum, errors.WrapResource("export", "mapping", term, err)
			}
			sum.Mappings++
		}
	}

	if err := tx.Commit(); err != nil {
		return sum, errors.WrapResource("commit", "sqlite", path, err)
	}
	return sum, nil
}
