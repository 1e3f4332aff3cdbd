package research

import (
	"context"

	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
)

// StaticResearcher serves hand-authored results, typically gathered by a
// person doing manual web research and saved as an update batch.
type StaticResearcher struct {
	results enrichment.Batch
}

// NewStaticResearcher wraps a batch of hand-authored results.
func NewStaticResearcher(results enrichment.Batch) *StaticResearcher {
	return &StaticResearcher{results: results}
}

// Research returns the stored result for s or a NotFoundError.
func (r *StaticResearcher) Research(_ context.Context, s Subject) (*enrichment.Update, error) {
	u, ok := r.results[s.ID]
	if !ok {
		return nil, errors.NewNotFoundError("research result", s.ID)
	}
	return &u, nil
}
