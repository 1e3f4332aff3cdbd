// Package identity holds the manual override tables that keep faculty
// identity keys stable: spelling corrections applied before an id is
// derived, and duplicate merges applied after ingestion.
package identity

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/workshopdir/curator/pkg/errors"
)

// Corrections maps a raw name as it appears in a roster to its corrected
// spelling. Lookups are exact string matches.
type Corrections map[string]string

// Apply returns the corrected spelling of name, or name unchanged.
func (c Corrections) Apply(name string) string {
	if fixed, ok := c[name]; ok {
		return fixed
	}
	return name
}

// Fix folds an obsolete faculty id into a canonical one.
type Fix struct {
	CanonicalID string `yaml:"canonical" json:"canonical"`
	ObsoleteID  string `yaml:"obsolete" json:"obsolete"`
	FirstName   string `yaml:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string `yaml:"lastName,omitempty" json:"lastName,omitempty"`
}

// Validate checks that a fix names two different ids.
func (f Fix) Validate() error {
	if f.CanonicalID == "" {
		return errors.NewValidationError("canonical", f.CanonicalID, "canonical id is required")
	}
	if f.ObsoleteID == "" {
		return errors.NewValidationError("obsolete", f.ObsoleteID, "obsolete id is required")
	}
	if f.CanonicalID == f.ObsoleteID {
		return errors.NewValidationError("obsolete", f.ObsoleteID, "obsolete id must differ from canonical id")
	}
	return nil
}

// Overrides is the auditable table of every manual identity fixup.
type Overrides struct {
	Corrections Corrections `yaml:"corrections"`
	Merges      []Fix       `yaml:"merges"`
}

// DefaultOverrides returns the fixups known to be needed for the current rosters.
func DefaultOverrides() *Overrides {
	return &Overrides{
		Corrections: Corrections{
			"Handely": "Handley",
		},
		Merges: []Fix{
			{CanonicalID: "fernandez-rosa", ObsoleteID: "fernndez-rosa", FirstName: "Rosa", LastName: "Fernández"},
		},
	}
}

// LoadOverrides reads an overrides YAML file. An empty path returns the defaults.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return DefaultOverrides(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseOverrides(data, path)
}

// ParseOverrides decodes an overrides document and validates its merges.
func ParseOverrides(data []byte, name string) (*Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if o.Corrections == nil {
		o.Corrections = Corrections{}
	}
	for _, fix := range o.Merges {
		if err := fix.Validate(); err != nil {
			return nil, errors.NewConfigError("identity overrides", name, err)
		}
	}
	return &o, nil
}
