package enrichment

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/workshopdir/curator/pkg/errors"
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// ORCIDEntry is one line of an ORCID batch file.
type ORCIDEntry struct {
	ORCID      string     `json:"orcid"`
	Confidence Confidence `json:"confidence"`
	Source     string     `json:"source"`
}

// ORCIDBatch maps faculty ids to ORCID identifiers.
type ORCIDBatch map[string]ORCIDEntry

// NormalizeORCID strips a URL prefix and whitespace and upper-cases the
// checksum character.
func NormalizeORCID(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://orcid.org/", "http://orcid.org/", "orcid.org/"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return strings.ToUpper(s)
}

// ValidORCID reports whether s has the 16-digit ORCID shape.
func ValidORCID(s string) bool {
	return orcidPattern.MatchString(s)
}

// ParseORCIDBatch decodes and validates an ORCID batch file.
func ParseORCIDBatch(data []byte, name string) (ORCIDBatch, error) {
	var b ORCIDBatch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	for id, e := range b {
		e.ORCID = NormalizeORCID(e.ORCID)
		if !ValidORCID(e.ORCID) {
			return nil, errors.NewValidationError("orcid", e.ORCID, "malformed ORCID for "+id)
		}
		if e.Confidence != "" && !e.Confidence.Valid() {
			return nil, errors.NewValidationError("confidence", e.Confidence, "unknown confidence for "+id)
		}
		b[id] = e
	}
	return b, nil
}

// Batch converts the ORCID entries to generic updates.
func (b ORCIDBatch) Batch() Batch {
	out := make(Batch, len(b))
	for id, e := range b {
		orcid := e.ORCID
		out[id] = Update{
			Academic:   &AcademicUpdate{ORCID: &orcid},
			Confidence: e.Confidence,
			Source:     e.Source,
		}
	}
	return out
}
