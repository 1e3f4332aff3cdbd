package mappings

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/workshopdir/curator/pkg/errors"
)

// KeywordBranch guesses that ids containing Keyword belong under Branch.
type KeywordBranch struct {
	Keyword string `yaml:"keyword"`
	Branch  string `yaml:"branch"`
}

// KeywordBranches is an ordered keyword table. The first matching keyword wins.
type KeywordBranches []KeywordBranch

// DefaultKeywordBranches is the built-in guess table.
func DefaultKeywordBranches() KeywordBranches {
	return KeywordBranches{
		{Keyword: "genom", Branch: "genomics-omics"},
		{Keyword: "transcript", Branch: "genomics-omics"},
		{Keyword: "proteom", Branch: "genomics-omics"},
		{Keyword: "epigen", Branch: "genomics-omics"},
		{Keyword: "bioinform", Branch: "computational-biology"},
		{Keyword: "comput", Branch: "computational-biology"},
		{Keyword: "model", Branch: "computational-biology"},
		{Keyword: "phylo", Branch: "evolution"},
		{Keyword: "evol", Branch: "evolution"},
		{Keyword: "popul", Branch: "population-genetics"},
		{Keyword: "ecolog", Branch: "ecology"},
		{Keyword: "microb", Branch: "microbiology"},
		{Keyword: "immun", Branch: "immunology"},
		{Keyword: "neuro", Branch: "neuroscience"},
		{Keyword: "develop", Branch: "developmental-biology"},
		{Keyword: "cell", Branch: "cell-biology"},
		{Keyword: "struct", Branch: "structural-biology"},
		{Keyword: "plant", Branch: "plant-biology"},
	}
}

// Guess returns the branch of the first keyword contained in id.
func (kb KeywordBranches) Guess(id string) (string, bool) {
	lower := strings.ToLower(id)
	for _, k := range kb {
		if k.Keyword != "" && strings.Contains(lower, strings.ToLower(k.Keyword)) {
			return k.Branch, true
		}
	}
	return "", false
}

// LoadKeywordBranches reads a YAML keyword table. An empty path yields the
// built-in table.
func LoadKeywordBranches(path string) (KeywordBranches, error) {
	if path == "" {
		return DefaultKeywordBranches(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var kb KeywordBranches
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	for i, k := range kb {
		if k.Keyword == "" || k.Branch == "" {
			return nil, errors.NewConfigError("branches", path,
				errors.NewValidationError("branches", i, "every entry needs a keyword and a branch"))
		}
	}
	return kb, nil
}
