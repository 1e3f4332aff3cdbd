// Package updates processes the spreadsheet of profile updates that
// faculty submit about themselves.
package updates

import (
	"encoding/csv"
	"errors"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/workshopdir/curator/internal/utils/ptr"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	pkgerrors "github.com/workshopdir/curator/pkg/errors"
)

// Column headers, matched case-insensitively.
const (
	ColFullName      = "full name"
	ColTitle         = "title"
	ColAffiliation   = "affiliation"
	ColDepartment    = "department"
	ColLabWebsite    = "lab website"
	ColORCID         = "orcid"
	ColResearchAreas = "research areas"
	ColBio           = "bio"
)

// Submission is one row of the update spreadsheet.
type Submission struct {
	Row           int      `json:"row"`
	FullName      string   `json:"fullName"`
	Title         string   `json:"title,omitempty"`
	Affiliation   string   `json:"affiliation,omitempty"`
	Department    string   `json:"department,omitempty"`
	LabWebsite    string   `json:"labWebsite,omitempty"`
	ORCID         string   `json:"orcid,omitempty"`
	ResearchAreas []string `json:"researchAreas,omitempty"`
	Bio           string   `json:"bio,omitempty"`
}

// Parse reads the update spreadsheet. A missing Full Name column or a
// malformed CSV is an error; rows with a blank name are ignored.
func Parse(r io.Reader) ([]Submission, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, pkgerrors.NewParseError("csv", "", "empty file: no header row found", err)
	}
	if err != nil {
		return nil, pkgerrors.WrapParse("csv", "", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	if _, ok := cols[ColFullName]; !ok {
		return nil, pkgerrors.NewParseError("csv", "", `missing required column "Full Name"`, nil)
	}

	get := func(record []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var subs []Submission
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &pkgerrors.ParseError{Format: "csv", Line: row, Message: err.Error(), Err: err}
		}
		name := get(record, ColFullName)
		if name == "" {
			continue
		}
		subs = append(subs, Submission{
			Row:           row,
			FullName:      name,
			Title:         get(record, ColTitle),
			Affiliation:   get(record, ColAffiliation),
			Department:    get(record, ColDepartment),
			LabWebsite:    get(record, ColLabWebsite),
			ORCID:         enrichment.NormalizeORCID(get(record, ColORCID)),
			ResearchAreas: splitAreas(get(record, ColResearchAreas)),
			Bio:           get(record, ColBio),
		})
	}
	return subs, nil
}

// splitAreas accepts comma or semicolon separated research areas.
func splitAreas(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Unmatched is a submission whose name matched no faculty.
type Unmatched struct {
	Row      int    `json:"row"`
	FullName string `json:"fullName"`
}

// Resolution is the outcome of matching submissions to faculty.
type Resolution struct {
	Batch     enrichment.Batch  `json:"batch"`
	Matched   map[string]string `json:"matched"`
	Unmatched []Unmatched       `json:"unmatched,omitempty"`
	Invalid   []string          `json:"invalid,omitempty"`
}

// MatchedIDs returns the matched faculty ids in order.
func (r *Resolution) MatchedIDs() []string {
	return slices.Sorted(maps.Keys(r.Matched))
}

// Resolve matches each submission to a faculty id, first by the id derived
// from the name split on its last space, then by exact display name
// (case-insensitive). A later submission for the same person replaces an
// earlier one. Matched rows become high-confidence faculty-submitted updates.
func Resolve(subs []Submission, faculty []directory.Faculty) *Resolution {
	byID := make(map[string]directory.Faculty, len(faculty))
	byName := make(map[string]string, len(faculty))
	for _, f := range faculty {
		byID[f.ID] = f
		byName[strings.ToLower(f.FullName())] = f.ID
	}

	res := &Resolution{Batch: make(enrichment.Batch), Matched: make(map[string]string)}
	for _, s := range subs {
		id := directory.DeriveIDFromFullName(s.FullName)
		if _, ok := byID[id]; !ok {
			id, ok = byName[strings.ToLower(strings.Join(strings.Fields(s.FullName), " "))]
			if !ok {
				res.Unmatched = append(res.Unmatched, Unmatched{Row: s.Row, FullName: s.FullName})
				continue
			}
		}
		if s.ORCID != "" && !enrichment.ValidORCID(s.ORCID) {
			res.Invalid = append(res.Invalid, s.FullName+": "+s.ORCID)
			s.ORCID = ""
		}
		res.Matched[id] = s.FullName
		res.Batch[id] = s.update()
	}
	return res
}

func (s Submission) update() enrichment.Update {
	u := enrichment.Update{
		Professional: &enrichment.ProfessionalUpdate{
			Title:       ptr.NonEmpty(s.Title),
			Affiliation: ptr.NonEmpty(s.Affiliation),
			Department:  ptr.NonEmpty(s.Department),
			LabWebsite:  ptr.NonEmpty(s.LabWebsite),
		},
		Academic: &enrichment.AcademicUpdate{
			ORCID:         ptr.NonEmpty(s.ORCID),
			ResearchAreas: s.ResearchAreas,
		},
		Confidence: enrichment.ConfidenceHigh,
		Source:     constants.SourceFacultySubmitted,
	}
	if s.Bio != "" {
		u.Profile = &enrichment.ProfileUpdate{
			ShortBio: ptr.NonEmpty(s.Bio),
			Source:   ptr.To(constants.SourceFacultySubmitted),
		}
	}
	return u
}
