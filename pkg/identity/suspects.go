package identity

import (
	"slices"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/workshopdir/curator/pkg/directory"
)

// SuspectGroup is a set of faculty ids whose names only differ by accents.
type SuspectGroup struct {
	FoldedID string   `json:"foldedId"`
	IDs      []string `json:"ids"`
	Names    []string `json:"names"`
}

// Fold strips combining marks so "Fernández" and "Fernandez" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Suspects groups faculty whose accent-folded identity keys collide while
// their stored ids differ. The result is advisory: a human still decides
// which pairs become Fix entries.
func Suspects(faculty []directory.Faculty) []SuspectGroup {
	groups := make(map[string]*SuspectGroup)
	var order []string
	for _, f := range faculty {
		key := directory.DeriveID(Fold(f.LastName), Fold(f.FirstName))
		g, ok := groups[key]
		if !ok {
			g = &SuspectGroup{FoldedID: key}
			groups[key] = g
			order = append(order, key)
		}
		if !slices.Contains(g.IDs, f.ID) {
			g.IDs = append(g.IDs, f.ID)
			g.Names = append(g.Names, f.FullName())
		}
	}

	slices.Sort(order)
	var out []SuspectGroup
	for _, key := range order {
		if g := groups[key]; len(g.IDs) > 1 {
			out = append(out, *g)
		}
	}
	return out
}
