// Package enrichment holds the supplementary faculty metadata (affiliation,
// ORCID, research areas, biography) and the batch updates applied to it.
package enrichment

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/errors"
)

// Confidence is the trust level of an enrichment record.
type Confidence string

// Confidence levels in increasing order of trust.
const (
	ConfidencePending Confidence = "pending"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// Levels lists every confidence level from lowest to highest.
var Levels = []Confidence{ConfidencePending, ConfidenceLow, ConfidenceMedium, ConfidenceHigh}

// Rank orders confidence levels. Unknown levels rank below pending.
func (c Confidence) Rank() int {
	return slices.Index(Levels, c)
}

// Valid reports whether c is a known level.
func (c Confidence) Valid() bool {
	return c.Rank() >= 0
}

// ParseConfidence accepts a level name in any case.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", errors.NewValidationError("confidence", s, "must be one of pending, low, medium, high")
	}
	return c, nil
}

// Professional holds employment details.
type Professional struct {
	Title       string `json:"title"`
	Affiliation string `json:"affiliation"`
	Department  string `json:"department"`
	LabWebsite  string `json:"labWebsite"`
}

// Academic holds scholarly identifiers and interests.
type Academic struct {
	ORCID         string   `json:"orcid"`
	ResearchAreas []string `json:"researchAreas"`
}

// Profile holds the short biography and where it came from.
type Profile struct {
	ShortBio string `json:"shortBio"`
	Source   string `json:"source"`
}

// Details is the enrichment payload of a record.
type Details struct {
	LastUpdated  utc.Time     `json:"lastUpdated"`
	Confidence   Confidence   `json:"confidence"`
	Professional Professional `json:"professional"`
	Academic     Academic     `json:"academic"`
	Profile      Profile      `json:"profile"`
}

// Record is the enrichment entry of one faculty member.
type Record struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Enrichment Details `json:"enrichment"`
}

// Table is the enrichment file: records keyed by faculty id.
type Table map[string]*Record

// Parse decodes an enrichment file.
func Parse(data []byte, name string) (Table, error) {
	t := make(Table)
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	for id, r := range t {
		if r == nil {
			delete(t, id)
			continue
		}
		if r.ID == "" {
			r.ID = id
		}
	}
	return t, nil
}

// IDs returns the record keys, sorted.
func (t Table) IDs() []string {
	return slices.Sorted(maps.Keys(t))
}

// Remove deletes the given ids and returns how many were present.
func (t Table) Remove(ids ...string) int {
	n := 0
	for _, id := range ids {
		if _, ok := t[id]; ok {
			delete(t, id)
			n++
		}
	}
	return n
}
