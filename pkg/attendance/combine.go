package attendance

import (
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/logging"
)

// FieldConflict records two rosters disagreeing on a display field of the
// same identity key. The later roster's value is kept. Which spelling is
// correct is not decided here; conflicts are surfaced for a human to
// resolve with a correction or merge override.
type FieldConflict struct {
	FacultyID string `json:"facultyId"`
	Field     string `json:"field"`
	Kept      string `json:"kept"`
	Replaced  string `json:"replaced"`
	Source    string `json:"source"`
}

// Result is the cross-roster union.
type Result struct {
	Faculty        []directory.Faculty       `json:"faculty"`
	Participations []directory.Participation `json:"participations"`
	Conflicts      []FieldConflict           `json:"conflicts,omitempty"`
	Skipped        int                       `json:"skipped"`
}

// Set returns the result as a directory set.
func (r *Result) Set() *directory.Set {
	return directory.NewSet(r.Faculty, r.Participations)
}

// Combine merges rosters in the order given. Faculty are unioned by id with
// later rosters overwriting field values; participations are concatenated,
// deduplicated by (faculty, workshop, year) and sorted by faculty id then year.
func Combine(rosters ...*Roster) *Result {
	set := directory.NewSet(nil, nil)
	res := &Result{}

	for _, r := range rosters {
		if r == nil {
			continue
		}
		source := r.Source
		if source == "" {
			source = r.WorkshopID
		}
		for _, f := range r.Faculty {
			if prev, ok := set.Get(f.ID); ok {
				res.Conflicts = append(res.Conflicts, diff(prev, f, source)...)
			}
			if err := set.Put(f); err != nil {
				logging.Warn().Err(err).Str("source", source).Msg("Skipping faculty without id")
			}
		}
		set.AddParticipations(r.Participations...)
		res.Skipped += len(r.Skipped)
	}
	set.Normalize()

	for _, c := range res.Conflicts {
		logging.Warn().
			Str("faculty_id", c.FacultyID).
			Str("field", c.Field).
			Str("kept", c.Kept).
			Str("replaced", c.Replaced).
			Str("source", c.Source).
			Msg("Rosters disagree on faculty name; later roster wins")
	}

	res.Faculty = set.List()
	res.Participations = set.Participations()
	return res
}

func diff(prev, next directory.Faculty, source string) []FieldConflict {
	var out []FieldConflict
	if prev.FirstName != next.FirstName {
		out = append(out, FieldConflict{FacultyID: next.ID, Field: "firstName", Kept: next.FirstName, Replaced: prev.FirstName, Source: source})
	}
	if prev.LastName != next.LastName {
		out = append(out, FieldConflict{FacultyID: next.ID, Field: "lastName", Kept: next.LastName, Replaced: prev.LastName, Source: source})
	}
	return out
}
