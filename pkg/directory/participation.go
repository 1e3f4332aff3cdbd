package directory

import (
	"cmp"
	"slices"
)

// Participation is one faculty member teaching at one workshop in one year.
type Participation struct {
	FacultyID  string `json:"facultyId" yaml:"facultyId"`
	WorkshopID string `json:"workshopId" yaml:"workshopId"`
	Year       int    `json:"year" yaml:"year"`
	Role       string `json:"role" yaml:"role"`
}

// ParticipationKey is the uniqueness triple of a participation.
type ParticipationKey struct {
	FacultyID  string
	WorkshopID string
	Year       int
}

// Key returns the uniqueness triple.
func (p Participation) Key() ParticipationKey {
	return ParticipationKey{FacultyID: p.FacultyID, WorkshopID: p.WorkshopID, Year: p.Year}
}

// SortParticipations orders by faculty id, then year, then workshop id.
func SortParticipations(ps []Participation) {
	slices.SortStableFunc(ps, func(a, b Participation) int {
		if c := cmp.Compare(a.FacultyID, b.FacultyID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.WorkshopID, b.WorkshopID)
	})
}

// DedupeParticipations drops repeated triples, keeping the first occurrence.
// The input order is preserved.
func DedupeParticipations(ps []Participation) []Participation {
	seen := make(map[ParticipationKey]struct{}, len(ps))
	out := make([]Participation, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.Key()]; ok {
			continue
		}
		seen[p.Key()] = struct{}{}
		out = append(out, p)
	}
	return out
}
