package directory

import (
	"fmt"
	"slices"
)

// Workshop is one workshop series. Roster is the attendance sheet the
// series is ingested from, when configured.
type Workshop struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Name   string `json:"name" yaml:"name" mapstructure:"name"`
	Roster string `json:"roster,omitempty" yaml:"roster,omitempty" mapstructure:"roster"`
}

// Workshops is the workshop registry.
type Workshops []Workshop

// Get returns the workshop with the given id.
func (ws Workshops) Get(id string) (Workshop, bool) {
	i := slices.IndexFunc(ws, func(w Workshop) bool { return w.ID == id })
	if i < 0 {
		return Workshop{}, false
	}
	return ws[i], true
}

// Validate checks that ids are present and unique.
func (ws Workshops) Validate() error {
	seen := make(map[string]struct{}, len(ws))
	for i, w := range ws {
		if w.ID == "" {
			return fmt.Errorf("workshop %d: id is required", i)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("workshop %q listed twice", w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	return nil
}
