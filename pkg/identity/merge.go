package identity

import (
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
)

// MergeReport describes what a single Fix changed.
type MergeReport struct {
	CanonicalID       string `json:"canonicalId"`
	ObsoleteID        string `json:"obsoleteId"`
	Repointed         int    `json:"repointed"`
	DuplicatesDropped int    `json:"duplicatesDropped"`
	ObsoleteRemoved   bool   `json:"obsoleteRemoved"`
	Skipped           bool   `json:"skipped,omitempty"`
}

// MergeDuplicate folds fix.ObsoleteID into fix.CanonicalID: the canonical
// record takes the corrected display fields, every participation of the
// obsolete id is repointed, the obsolete record is deleted and the
// participation table is deduplicated and re-sorted.
//
// When only the obsolete record exists it is renamed to the canonical id.
// When neither exists a NotFoundError is returned.
func MergeDuplicate(set *directory.Set, fix Fix) (*MergeReport, error) {
	if err := fix.Validate(); err != nil {
		return nil, err
	}

	canonical, hasCanonical := set.Get(fix.CanonicalID)
	obsolete, hasObsolete := set.Get(fix.ObsoleteID)
	if !hasCanonical && !hasObsolete {
		return nil, errors.NewNotFoundError("faculty", fix.ObsoleteID)
	}

	merged := canonical
	if !hasCanonical {
		merged = obsolete
	}
	merged.ID = fix.CanonicalID
	if fix.FirstName != "" {
		merged.FirstName = fix.FirstName
	}
	if fix.LastName != "" {
		merged.LastName = fix.LastName
	}
	if err := set.Put(merged); err != nil {
		return nil, err
	}

	report := &MergeReport{CanonicalID: fix.CanonicalID, ObsoleteID: fix.ObsoleteID}
	report.Repointed = set.RepointParticipations(fix.ObsoleteID, fix.CanonicalID)
	report.ObsoleteRemoved = set.Delete(fix.ObsoleteID)
	report.DuplicatesDropped = set.Normalize()
	return report, nil
}

// Apply runs every fix in order. Fixes whose ids are both absent are
// reported as skipped rather than failing the batch.
func Apply(set *directory.Set, fixes []Fix) ([]MergeReport, error) {
	reports := make([]MergeReport, 0, len(fixes))
	for _, fix := range fixes {
		report, err := MergeDuplicate(set, fix)
		if errors.IsNotFound(err) {
			reports = append(reports, MergeReport{CanonicalID: fix.CanonicalID, ObsoleteID: fix.ObsoleteID, Skipped: true})
			continue
		}
		if err != nil {
			return reports, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
