package enrichment

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// ProfessionalUpdate sets employment fields. Nil fields are left alone.
type ProfessionalUpdate struct {
	Title       *string `json:"title,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
	Department  *string `json:"department,omitempty"`
	LabWebsite  *string `json:"labWebsite,omitempty"`
}

// AcademicUpdate sets the ORCID id and adds research areas.
type AcademicUpdate struct {
	ORCID         *string  `json:"orcid,omitempty"`
	ResearchAreas []string `json:"researchAreas,omitempty"`
}

// ProfileUpdate sets the biography and its source.
type ProfileUpdate struct {
	ShortBio *string `json:"shortBio,omitempty"`
	Source   *string `json:"source,omitempty"`
}

// Update is a partial change to one record.
type Update struct {
	Professional *ProfessionalUpdate `json:"professional,omitempty"`
	Academic     *AcademicUpdate     `json:"academic,omitempty"`
	Profile      *ProfileUpdate      `json:"profile,omitempty"`
	Confidence   Confidence          `json:"confidence,omitempty"`
	// Source labels where the update came from. It is reported, not stored.
	Source string `json:"source,omitempty"`
}

// Batch maps faculty ids to updates.
type Batch map[string]Update

// ParseBatch decodes a hand-authored update batch.
func ParseBatch(data []byte, name string) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	for id, u := range b {
		if u.Confidence != "" && !u.Confidence.Valid() {
			return nil, errors.NewValidationError("confidence", u.Confidence, "unknown confidence for "+id)
		}
	}
	return b, nil
}

// Status of one batch entry.
type Status string

// Entry outcomes.
const (
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
)

// Entry reports the outcome for one faculty id.
type Entry struct {
	ID             string     `json:"id"`
	Status         Status     `json:"status"`
	Fields         []string   `json:"fields,omitempty"`
	ConfidenceFrom Confidence `json:"confidenceFrom,omitempty"`
	ConfidenceTo   Confidence `json:"confidenceTo,omitempty"`
	Source         string     `json:"source,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// ApplyReport summarizes a batch.
type ApplyReport struct {
	Updated int     `json:"updated"`
	Skipped int     `json:"skipped"`
	Entries []Entry `json:"entries"`
}

// Apply writes batch into table in id order. Unknown ids are reported
// as skipped and logged; Apply never fails. Confidence is only ever raised.
func Apply(table Table, batch Batch, now time.Time) *ApplyReport {
	report := &ApplyReport{}
	stamp := utc.New(now)

	for _, id := range slices.Sorted(maps.Keys(batch)) {
		u := batch[id]
		rec, ok := table[id]
		if !ok {
			logging.Warn().Str("faculty_id", id).Msg("No enrichment record; skipping update")
			report.Skipped++
			report.Entries = append(report.Entries, Entry{ID: id, Status: StatusSkipped, Source: u.Source, Reason: "faculty id not found"})
			continue
		}

		entry := Entry{ID: id, Status: StatusUpdated, Source: u.Source, ConfidenceFrom: rec.Enrichment.Confidence}
		entry.Fields = applyFields(&rec.Enrichment, u)
		if raise(&rec.Enrichment, u.Confidence) {
			entry.Fields = append(entry.Fields, "confidence")
		}
		entry.ConfidenceTo = rec.Enrichment.Confidence
		rec.Enrichment.LastUpdated = stamp

		logging.Debug().
			Str("faculty_id", id).
			Strs("fields", entry.Fields).
			Str("confidence", string(entry.ConfidenceTo)).
			Msg("Applied enrichment update")

		report.Updated++
		report.Entries = append(report.Entries, entry)
	}
	return report
}

func applyFields(d *Details, u Update) []string {
	var fields []string
	set := func(name string, dst *string, src *string) {
		if src == nil || *dst == *src {
			return
		}
		*dst = *src
		fields = append(fields, name)
	}

	if p := u.Professional; p != nil {
		set("title", &d.Professional.Title, p.Title)
		set("affiliation", &d.Professional.Affiliation, p.Affiliation)
		set("department", &d.Professional.Department, p.Department)
		set("labWebsite", &d.Professional.LabWebsite, p.LabWebsite)
	}
	if a := u.Academic; a != nil {
		set("orcid", &d.Academic.ORCID, a.ORCID)
		areas := UnionAreas(d.Academic.ResearchAreas, a.ResearchAreas)
		if !slices.Equal(areas, d.Academic.ResearchAreas) {
			fields = append(fields, "researchAreas")
		}
		d.Academic.ResearchAreas = areas
	}
	if p := u.Profile; p != nil {
		set("shortBio", &d.Profile.ShortBio, p.ShortBio)
		set("source", &d.Profile.Source, p.Source)
	}
	return fields
}

func raise(d *Details, c Confidence) bool {
	if c == "" || c.Rank() <= d.Confidence.Rank() {
		return false
	}
	d.Confidence = c
	return true
}

// UnionAreas lowercases and trims both lists and returns existing followed
// by the new areas it did not already contain. Blank entries are dropped.
func UnionAreas(existing, add []string) []string {
	out := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]struct{}, len(existing)+len(add))
	for _, list := range [][]string{existing, add} {
		for _, a := range list {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
