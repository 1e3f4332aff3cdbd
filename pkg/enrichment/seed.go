package enrichment

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/directory"
)

// Seed creates a pending record for every faculty member without one and
// returns the ids it created.
func Seed(t Table, faculty []directory.Faculty, now time.Time) []string {
	var created []string
	for _, f := range faculty {
		if _, ok := t[f.ID]; ok {
			continue
		}
		t[f.ID] = &Record{
			ID:   f.ID,
			Name: f.FullName(),
			Enrichment: Details{
				LastUpdated: utc.New(now),
				Confidence:  ConfidencePending,
				Academic:    Academic{ResearchAreas: []string{}},
			},
		}
		created = append(created, f.ID)
	}
	return created
}

// Rekey moves the record of an obsolete faculty id to its canonical id
// after an identity merge. When both ids have records the canonical one
// keeps its values, empty fields are filled from the obsolete record,
// research areas are unioned and the higher confidence wins. It reports
// whether the obsolete record existed.
func Rekey(t Table, obsoleteID, canonicalID, name string) bool {
	old, ok := t[obsoleteID]
	if !ok || obsoleteID == canonicalID {
		return false
	}
	delete(t, obsoleteID)

	rec, exists := t[canonicalID]
	if !exists {
		old.ID = canonicalID
		if name != "" {
			old.Name = name
		}
		t[canonicalID] = old
		return true
	}

	if name != "" {
		rec.Name = name
	}
	d, o := &rec.Enrichment, old.Enrichment
	fill(&d.Professional.Title, o.Professional.Title)
	fill(&d.Professional.Affiliation, o.Professional.Affiliation)
	fill(&d.Professional.Department, o.Professional.Department)
	fill(&d.Professional.LabWebsite, o.Professional.LabWebsite)
	fill(&d.Academic.ORCID, o.Academic.ORCID)
	fill(&d.Profile.ShortBio, o.Profile.ShortBio)
	fill(&d.Profile.Source, o.Profile.Source)
	d.Academic.ResearchAreas = UnionAreas(d.Academic.ResearchAreas, o.Academic.ResearchAreas)
	raise(d, o.Confidence)
	if o.LastUpdated.Time.After(d.LastUpdated.Time) {
		d.LastUpdated = o.LastUpdated
	}
	return true
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
