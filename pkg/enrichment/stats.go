package enrichment

// Stats is the coverage summary printed after every update.
type Stats struct {
	Total             int                `json:"total"`
	WithORCID         int                `json:"withOrcid"`
	WithAffiliation   int                `json:"withAffiliation"`
	WithResearchAreas int                `json:"withResearchAreas"`
	WithBio           int                `json:"withBio"`
	Confidence        map[Confidence]int `json:"confidence"`
}

// Coverage is a fraction of Total, zero for an empty table.
func (s Stats) Coverage(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total)
}

// Fields returns the per-field counts in display order.
func (s Stats) Fields() []FieldCoverage {
	return []FieldCoverage{
		{Field: "orcid", Count: s.WithORCID, Ratio: s.Coverage(s.WithORCID)},
		{Field: "affiliation", Count: s.WithAffiliation, Ratio: s.Coverage(s.WithAffiliation)},
		{Field: "researchAreas", Count: s.WithResearchAreas, Ratio: s.Coverage(s.WithResearchAreas)},
		{Field: "bio", Count: s.WithBio, Ratio: s.Coverage(s.WithBio)},
	}
}

// FieldCoverage is one row of the coverage report.
type FieldCoverage struct {
	Field string  `json:"field"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// ComputeStats counts populated fields across the table.
func ComputeStats(t Table) Stats {
	s := Stats{Total: len(t), Confidence: make(map[Confidence]int, len(Levels))}
	for _, level := range Levels {
		s.Confidence[level] = 0
	}
	for _, r := range t {
		d := r.Enrichment
		if d.Academic.ORCID != "" {
			s.WithORCID++
		}
		if d.Professional.Affiliation != "" {
			s.WithAffiliation++
		}
		if len(d.Academic.ResearchAreas) > 0 {
			s.WithResearchAreas++
		}
		if d.Profile.ShortBio != "" {
			s.WithBio++
		}
		s.Confidence[d.Confidence]++
	}
	return s
}
