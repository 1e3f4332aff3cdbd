// Package taxonomy models the controlled vocabulary of research topics that
// term mappings point into.
package taxonomy

import (
	"encoding/json"
	"slices"

	"github.com/agentstation/utc"

	"github.com/workshopdir/curator/pkg/errors"
)

// Metadata describes one revision of the taxonomy.
type Metadata struct {
	Version     string   `json:"version"`
	LastUpdated utc.Time `json:"lastUpdated"`
}

// Topic is a node of the topic tree.
type Topic struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Children []Topic `json:"children,omitempty"`
}

// Taxonomy is the topic tree. Top-level topics are branches.
type Taxonomy struct {
	Metadata Metadata `json:"metadata"`
	Topics   []Topic  `json:"topics"`
}

// Parse decodes a taxonomy document.
func Parse(data []byte, name string) (*Taxonomy, error) {
	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	return &t, nil
}

// Branches returns the ids of the top-level topics in document order.
func (t *Taxonomy) Branches() []string {
	ids := make([]string, 0, len(t.Topics))
	for _, topic := range t.Topics {
		ids = append(ids, topic.ID)
	}
	return ids
}

// Walk calls fn for every topic, depth first. branch is the id of the
// top-level topic the node lives under.
func (t *Taxonomy) Walk(fn func(branch string, topic Topic)) {
	for _, top := range t.Topics {
		walk(top.ID, top, fn)
	}
}

func walk(branch string, topic Topic, fn func(string, Topic)) {
	fn(branch, topic)
	for _, child := range topic.Children {
		walk(branch, child, fn)
	}
}

// IDs returns the set of every id defined anywhere in the tree.
func (t *Taxonomy) IDs() map[string]struct{} {
	ids := make(map[string]struct{})
	t.Walk(func(_ string, topic Topic) {
		ids[topic.ID] = struct{}{}
	})
	return ids
}

// Has reports whether id is defined in the tree.
func (t *Taxonomy) Has(id string) bool {
	_, ok := t.IDs()[id]
	return ok
}

// BranchOf returns the branch a defined id belongs to.
func (t *Taxonomy) BranchOf(id string) (string, bool) {
	var found string
	t.Walk(func(branch string, topic Topic) {
		if found == "" && topic.ID == id {
			found = branch
		}
	})
	return found, found != ""
}

// Duplicates returns ids defined more than once, sorted.
func (t *Taxonomy) Duplicates() []string {
	counts := make(map[string]int)
	t.Walk(func(_ string, topic Topic) {
		counts[topic.ID]++
	})
	var dups []string
	for id, n := range counts {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	slices.Sort(dups)
	return dups
}
