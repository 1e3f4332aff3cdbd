package mappings

import (
	"maps"
	"slices"

	"github.com/workshopdir/curator/pkg/taxonomy"
)

// MissingID is a standardized id referenced by mappings but absent from the taxonomy.
type MissingID struct {
	ID            string   `json:"id"`
	Terms         []string `json:"terms"`
	GuessedBranch string   `json:"guessedBranch,omitempty"`
}

// ValidationReport is advisory output of Validate.
type ValidationReport struct {
	Referenced        int         `json:"referenced"`
	Defined           int         `json:"defined"`
	Missing           []MissingID `json:"missing,omitempty"`
	InvalidConfidence []string    `json:"invalidConfidence,omitempty"`
	EmptyTarget       []string    `json:"emptyTarget,omitempty"`
}

// OK reports whether every referenced id is defined.
func (r *ValidationReport) OK() bool {
	return len(r.Missing) == 0 && len(r.EmptyTarget) == 0
}

// Validate compares the ids referenced by table against those defined in tx.
// It never modifies either input.
func Validate(table *Table, tx *taxonomy.Taxonomy, branches KeywordBranches) *ValidationReport {
	defined := tx.IDs()
	report := &ValidationReport{Defined: len(defined)}

	referenced := make(map[string][]string)
	for _, term := range slices.Sorted(maps.Keys(table.Mappings)) {
		m := table.Mappings[term]
		if m.StandardizedID == "" {
			report.EmptyTarget = append(report.EmptyTarget, term)
			continue
		}
		if !m.Confidence.Valid() {
			report.InvalidConfidence = append(report.InvalidConfidence, term)
		}
		referenced[m.StandardizedID] = append(referenced[m.StandardizedID], term)
	}
	report.Referenced = len(referenced)

	for _, id := range slices.Sorted(maps.Keys(referenced)) {
		if _, ok := defined[id]; ok {
			continue
		}
		missing := MissingID{ID: id, Terms: referenced[id]}
		if branch, ok := branches.Guess(id); ok {
			missing.GuessedBranch = branch
		}
		report.Missing = append(report.Missing, missing)
	}
	return report
}
