// Package research runs paced batches of enrichment lookups.
//
// A Researcher turns a faculty member into an enrichment update. RunBatches
// feeds subjects to it a few at a time with a fixed pause between batches
// so an external service is not overwhelmed. A failing item is logged and
// the batch moves on; there is no retry.
package research

import (
	"context"
	"time"

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/logging"
)

// Subject is a faculty member to research.
type Subject struct {
	ID          string
	Name        string
	Affiliation string
	Areas       []string
}

// Researcher looks up enrichment data for one subject.
type Researcher interface {
	Research(ctx context.Context, s Subject) (*enrichment.Update, error)
}

// ResearcherFunc adapts a function to Researcher.
type ResearcherFunc func(ctx context.Context, s Subject) (*enrichment.Update, error)

// Research calls f.
func (f ResearcherFunc) Research(ctx context.Context, s Subject) (*enrichment.Update, error) {
	return f(ctx, s)
}

// BatchOptions controls pacing.
type BatchOptions struct {
	Size  int
	Delay time.Duration
}

// DefaultBatchOptions returns the standard pacing.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Size: constants.DefaultBatchSize, Delay: constants.DefaultBatchDelay}
}

// Failure records one subject that could not be researched.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Report collects the updates found and the failures.
type Report struct {
	Batch    enrichment.Batch `json:"batch"`
	Failures []Failure        `json:"failures,omitempty"`
	Batches  int              `json:"batches"`
}

// RunBatches researches subjects in order, Size at a time, sleeping Delay
// between batches. Cancellation is checked between items; on cancel the
// partial report is returned along with the context error.
func RunBatches(ctx context.Context, r Researcher, subjects []Subject, opts BatchOptions) (*Report, error) {
	if opts.Size <= 0 {
		opts.Size = constants.DefaultBatchSize
	}
	report := &Report{Batch: make(enrichment.Batch)}

	for start := 0; start < len(subjects); start += opts.Size {
		if start > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		end := min(start+opts.Size, len(subjects))
		report.Batches++
		logging.FromContext(ctx).Info().
			Int("batch", report.Batches).
			Int("from", start+1).
			Int("to", end).
			Int("total", len(subjects)).
			Msg("Researching batch")

		for _, s := range subjects[start:end] {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			update, err := r.Research(ctx, s)
			if err != nil {
				logging.FromContext(logging.WithFaculty(ctx, s.ID)).Warn().Err(err).Msg("Research failed; continuing")
				report.Failures = append(report.Failures, Failure{ID: s.ID, Error: err.Error()})
				continue
			}
			if update == nil {
				continue
			}
			report.Batch[s.ID] = *update
		}
	}
	return report, nil
}

// Candidates returns the subjects whose records are still pending or low
// confidence, in id order, limited to max when max > 0.
func Candidates(t enrichment.Table, max int) []Subject {
	var out []Subject
	for _, id := range t.IDs() {
		rec := t[id]
		if rec.Enrichment.Confidence.Rank() > enrichment.ConfidenceLow.Rank() {
			continue
		}
		out = append(out, Subject{
			ID:          id,
			Name:        rec.Name,
			Affiliation: rec.Enrichment.Professional.Affiliation,
			Areas:       rec.Enrichment.Academic.ResearchAreas,
		})
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
