package directory

import "slices"

// Orphans lists records that no longer connect to the rest of the directory.
type Orphans struct {
	// Faculty without any participation.
	Faculty []string `json:"faculty"`
	// Enrichment ids without a faculty record.
	Enrichment []string `json:"enrichment"`
}

// Empty reports whether nothing was found.
func (o Orphans) Empty() bool {
	return len(o.Faculty) == 0 && len(o.Enrichment) == 0
}

// IDs returns every orphaned id, sorted and deduplicated.
func (o Orphans) IDs() []string {
	ids := append(slices.Clone(o.Faculty), o.Enrichment...)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// FindOrphans compares the faculty table with its participations and with
// the ids present in the enrichment table.
func FindOrphans(s *Set, enrichmentIDs []string) Orphans {
	counts := s.ParticipationCounts()
	var o Orphans
	for _, f := range s.List() {
		if counts[f.ID] == 0 {
			o.Faculty = append(o.Faculty, f.ID)
		}
	}
	for _, id := range enrichmentIDs {
		if !s.Exists(id) {
			o.Enrichment = append(o.Enrichment, id)
		}
	}
	slices.Sort(o.Enrichment)
	return o
}
