// Package attendance turns workshop attendance rosters into faculty and
// participation records.
//
// A roster is a CSV table with one person per row. The first two columns
// are last name and first name; every column whose header is a year in
// [2001, 2099) holds an "x" when the person taught that year.
package attendance

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	pkgerrors "github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/logging"
)

// YearColumn is a header position holding presence markers for one year.
type YearColumn struct {
	Index int
	Year  int
}

// SkippedRow records a data row that produced no records.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Roster is the parsed content of one workshop's attendance table.
type Roster struct {
	WorkshopID     string                    `json:"workshopId"`
	Source         string                    `json:"source,omitempty"`
	Encoding       string                    `json:"encoding"`
	Years          []int                     `json:"years"`
	Faculty        []directory.Faculty       `json:"faculty"`
	Participations []directory.Participation `json:"participations"`
	Skipped        []SkippedRow              `json:"skipped,omitempty"`
	Corrected      int                       `json:"corrected"`
}

type options struct {
	corrections identity.Corrections
	source      string
}

// Option configures ParseRoster.
type Option func(*options)

// WithCorrections sets the spelling corrections applied to raw names
// before the identity key is derived.
func WithCorrections(c identity.Corrections) Option {
	return func(o *options) { o.corrections = c }
}

// WithSource labels the roster with the file it came from.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

// YearColumns returns the header positions that parse as a year in
// [constants.MinYear, constants.MaxYear).
func YearColumns(header []string) []YearColumn {
	var cols []YearColumn
	for i, h := range header {
		year, err := strconv.Atoi(strings.TrimSpace(h))
		if err != nil || year < constants.MinYear || year >= constants.MaxYear {
			continue
		}
		cols = append(cols, YearColumn{Index: i, Year: year})
	}
	return cols
}

// ParseRoster reads one attendance table. Rows missing a last or first
// name, or rows the CSV reader cannot parse, are skipped and listed in
// Roster.Skipped; they never fail the parse. Only an unreadable or empty
// input is an error.
func ParseRoster(r io.Reader, workshopID string, opts ...Option) (*Roster, error) {
	o := options{corrections: identity.Corrections{}}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.WrapIO("read", o.source, err)
	}
	data, enc, err := decode(raw)
	if err != nil {
		return nil, pkgerrors.NewParseError("csv", o.source, "cannot decode roster", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, pkgerrors.NewParseError("csv", o.source, "empty file: no header row found", err)
	}
	if err != nil {
		return nil, pkgerrors.NewParseError("csv", o.source, "cannot read header row", err)
	}

	roster := &Roster{WorkshopID: workshopID, Source: o.source, Encoding: enc}
	years := YearColumns(header)
	for _, c := range years {
		roster.Years = append(roster.Years, c.Year)
	}

	faculty := make(map[string]directory.Faculty)
	var order []string
	seen := make(map[directory.ParticipationKey]struct{})

	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			roster.Skipped = append(roster.Skipped, SkippedRow{Row: row, Reason: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		// pad short rows so year lookups never go out of range
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}

		lastName, firstName := cleanName(field(record, 0)), cleanName(field(record, 1))
		if lastName == "" || firstName == "" {
			roster.Skipped = append(roster.Skipped, SkippedRow{Row: row, Reason: "missing name"})
			continue
		}
		if fixed := o.corrections.Apply(lastName); fixed != lastName {
			lastName = fixed
			roster.Corrected++
		}
		if fixed := o.corrections.Apply(firstName); fixed != firstName {
			firstName = fixed
			roster.Corrected++
		}

		f := directory.NewFaculty(lastName, firstName)
		if _, ok := faculty[f.ID]; !ok {
			order = append(order, f.ID)
		}
		faculty[f.ID] = f

		for _, col := range years {
			if !strings.EqualFold(strings.TrimSpace(record[col.Index]), constants.PresenceMarker) {
				continue
			}
			p := directory.Participation{
				FacultyID:  f.ID,
				WorkshopID: workshopID,
				Year:       col.Year,
				Role:       constants.DefaultRole,
			}
			if _, dup := seen[p.Key()]; dup {
				continue
			}
			seen[p.Key()] = struct{}{}
			roster.Participations = append(roster.Participations, p)
		}
	}

	for _, id := range order {
		roster.Faculty = append(roster.Faculty, faculty[id])
	}

	logging.Debug().
		Str("workshop_id", workshopID).
		Str("encoding", enc).
		Int("faculty", len(roster.Faculty)).
		Int("participations", len(roster.Participations)).
		Int("skipped", len(roster.Skipped)).
		Msg("Parsed roster")

	return roster, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// cleanName trims whitespace and any stray quoting left by lazy parsing.
func cleanName(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}
