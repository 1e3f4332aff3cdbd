package mappings

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/workshopdir/curator/pkg/errors"
)

// Source is one incrementally authored batch of mappings.
type Source struct {
	Name     string
	Mappings map[string]Mapping
}

// ParseSource decodes an additions file. Both a bare {term: mapping}
// object and a table document (an object with a "mappings" key, metadata
// optional) are accepted. Entries must name a taxonomy id and a known
// confidence level.
func ParseSource(data []byte, path string) (Source, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Source{}, errors.WrapParse("json", path, err)
	}

	body := data
	if raw, ok := doc["mappings"]; ok {
		body = raw
	}
	var m map[string]Mapping
	if err := json.Unmarshal(body, &m); err != nil {
		return Source{}, errors.WrapParse("json", path, err)
	}
	if m == nil {
		m = make(map[string]Mapping)
	}

	src := Source{Name: name, Mappings: m}
	if err := src.Validate(); err != nil {
		return Source{}, errors.NewParseError("json", path, err.Error(), err)
	}
	return src, nil
}

// Validate checks that every entry has a standardized id and a valid
// confidence. All offending terms are listed in the error.
func (s Source) Validate() error {
	var problems []string
	for _, term := range slices.Sorted(maps.Keys(s.Mappings)) {
		m := s.Mappings[term]
		if strings.TrimSpace(term) == "" {
			problems = append(problems, "empty term")
			continue
		}
		if strings.TrimSpace(m.StandardizedID) == "" {
			problems = append(problems, fmt.Sprintf("%q: missing standardizedId", term))
		}
		if !m.Confidence.Valid() {
			problems = append(problems, fmt.Sprintf("%q: invalid confidence %q", term, m.Confidence))
		}
	}
	if len(problems) > 0 {
		return errors.NewValidationError("mappings", s.Name, strings.Join(problems, "; "))
	}
	return nil
}
