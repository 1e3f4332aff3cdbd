// Package mappings maintains the term-mapping table: free-text research
// area phrases mapped to standardized taxonomy ids.
package mappings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/errors"
)

// Confidence is the trust level of one mapping.
type Confidence string

// Mapping confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is a known level.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Mapping points a source term at a taxonomy node.
type Mapping struct {
	StandardizedID string     `json:"standardizedId"`
	Confidence     Confidence `json:"confidence"`
	Notes          string     `json:"notes,omitempty"`
}

// ConfidenceCounts tallies mappings per confidence level.
type ConfidenceCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Metadata is derived from the mappings and never trusted from input.
type Metadata struct {
	Version       string           `json:"version"`
	LastUpdated   utc.Time         `json:"lastUpdated"`
	TotalMappings int              `json:"totalMappings"`
	Confidence    ConfidenceCounts `json:"confidence"`
}

// Table is the canonical term-mapping document.
type Table struct {
	Metadata Metadata           `json:"metadata"`
	Mappings map[string]Mapping `json:"mappings"`
}

// NewTable returns an empty table at version 1.0.
func NewTable() *Table {
	return &Table{
		Metadata: Metadata{Version: "1.0"},
		Mappings: make(map[string]Mapping),
	}
}

// Parse decodes a table document.
func Parse(data []byte, name string) (*Table, error) {
	t := NewTable()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	if t.Mappings == nil {
		t.Mappings = make(map[string]Mapping)
	}
	return t, nil
}

// Recompute rebuilds the totals from the mappings and stamps lastUpdated.
// The version is left alone.
func (t *Table) Recompute(now utc.Time) {
	var counts ConfidenceCounts
	for _, m := range t.Mappings {
		switch m.Confidence {
		case ConfidenceHigh:
			counts.High++
		case ConfidenceMedium:
			counts.Medium++
		case ConfidenceLow:
			counts.Low++
		}
	}
	t.Metadata.TotalMappings = len(t.Mappings)
	t.Metadata.Confidence = counts
	t.Metadata.LastUpdated = now
}

// BumpVersion increments the minor component of a MAJOR.MINOR version.
// An empty or unreadable version restarts at 1.0.
func BumpVersion(version string) string {
	parts := strings.SplitN(strings.TrimPrefix(strings.TrimSpace(version), "v"), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return "1.0"
	}
	minor := 0
	if len(parts) > 1 {
		if minor, err = strconv.Atoi(parts[1]); err != nil {
			return "1.0"
		}
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}
