package mappings

import (
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// Conflict is a term that a later source tried to redefine. The earlier
// value is kept and the later one dropped.
type Conflict struct {
	Term    string  `json:"term"`
	Source  string  `json:"source"`
	Kept    Mapping `json:"kept"`
	Dropped Mapping `json:"dropped"`
}

// Identical reports whether the dropped value equals the kept one.
func (c Conflict) Identical() bool {
	return c.Kept == c.Dropped
}

// MergeResult is the outcome of Merge.
type MergeResult struct {
	Table           *Table         `json:"table"`
	PreviousVersion string         `json:"previousVersion"`
	Added           map[string]int `json:"added"`
	Conflicts       []Conflict     `json:"conflicts,omitempty"`
}

// TotalAdded sums the new terms across sources.
func (r *MergeResult) TotalAdded() int {
	n := 0
	for _, v := range r.Added {
		n += v
	}
	return n
}

// ConflictErr returns a ConflictError naming the terms whose dropped value
// differs from the kept one, or nil when every conflict was identical.
func (r *MergeResult) ConflictErr() error {
	var terms, sources []string
	for _, c := range r.Conflicts {
		if c.Identical() {
			continue
		}
		terms = append(terms, c.Term)
		if !slices.Contains(sources, c.Source) {
			sources = append(sources, c.Source)
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return errors.NewConflictError(strings.Join(sources, ", "), "mapping table v"+r.PreviousVersion, terms)
}

// Merge unions additions into a copy of base. A term already present,
// in base or in an earlier addition, keeps its existing value and the
// redefinition is reported as a conflict. Metadata is recomputed from the
// merged mappings and the minor version bumped. base is not modified.
func Merge(base *Table, additions ...Source) *MergeResult {
	if base == nil {
		base = NewTable()
	}
	merged := &Table{
		Metadata: base.Metadata,
		Mappings: maps.Clone(base.Mappings),
	}
	if merged.Mappings == nil {
		merged.Mappings = make(map[string]Mapping)
	}

	res := &MergeResult{
		Table:           merged,
		PreviousVersion: base.Metadata.Version,
		Added:           make(map[string]int, len(additions)),
	}

	for _, src := range additions {
		if _, ok := res.Added[src.Name]; !ok {
			res.Added[src.Name] = 0
		}
		for _, term := range slices.Sorted(maps.Keys(src.Mappings)) {
			m := src.Mappings[term]
			if existing, ok := merged.Mappings[term]; ok {
				res.Conflicts = append(res.Conflicts, Conflict{Term: term, Source: src.Name, Kept: existing, Dropped: m})
				continue
			}
			merged.Mappings[term] = m
			res.Added[src.Name]++
		}
	}

	merged.Metadata.Version = BumpVersion(base.Metadata.Version)
	merged.Recompute(utc.Now())

	for _, c := range res.Conflicts {
		if c.Identical() {
			continue
		}
		logging.Warn().
			Str("term", c.Term).
			Str("source", c.Source).
			Str("kept", c.Kept.StandardizedID).
			Str("dropped", c.Dropped.StandardizedID).
			Msg("Mapping conflict; keeping existing value")
	}
	logging.Info().
		Str("version", merged.Metadata.Version).
		Int("total", merged.Metadata.TotalMappings).
		Int("added", res.TotalAdded()).
		Int("conflicts", len(res.Conflicts)).
		Msg("Merged term mappings")

	return res
}
