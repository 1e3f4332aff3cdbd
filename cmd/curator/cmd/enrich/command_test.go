package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/cmd/application"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
	"github.com/workshopdir/curator/pkg/research"
)

func seed(t *testing.T) (*application.Mock, *workspace.Workspace) {
	t.Helper()
	ctx := context.Background()
	ws := workspace.New(workspace.NewPaths(t.TempDir()))

	d, err := ws.LoadDirectory()
	require.NoError(t, err)
	require.NoError(t, d.Put(directory.NewFaculty("Handley", "Jane")))
	require.NoError(t, d.Put(directory.NewFaculty("Okafor", "Chidi")))
	require.NoError(t, d.Put(directory.NewFaculty("Lindqvist", "Maja")))
	require.NoError(t, ws.SaveDirectory(ctx, d))

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	created := enrichment.Seed(e.Table, []directory.Faculty{
		directory.NewFaculty("Handley", "Jane"),
		directory.NewFaculty("Okafor", "Chidi"),
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, created, 2)
	e.Table["okafor-chidi"].Enrichment.Confidence = enrichment.ConfidenceMedium
	require.NoError(t, ws.SaveEnrichment(ctx, e))

	return &application.Mock{
		WorkspaceFunc: func(context.Context) (*workspace.Workspace, error) { return ws, nil },
	}, ws
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, mock *application.Mock, args ...string) ([]byte, error) {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func decode(t *testing.T, out []byte) Result {
	t.Helper()
	var result Result
	require.NoError(t, json.Unmarshal(out, &result))
	return result
}

func TestApply(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)
	mock, ws := seed(t)
	path := writeFile(t, "batch.json", `{
		"handley-jane": {
			"professional": {"affiliation": "University of Oslo"},
			"academic": {"researchAreas": ["Genomics", "genomics", "Ecology"]},
			"confidence": "medium"
		},
		"nobody-here": {"confidence": "high"}
	}`)

	out, err := run(t, mock, "apply", path)
	require.NoError(t, err)

	result := decode(t, out)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.WithAffiliation)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	rec := e.Table["handley-jane"]
	assert.Equal(t, "University of Oslo", rec.Enrichment.Professional.Affiliation)
	assert.Equal(t, []string{"genomics", "ecology"}, rec.Enrichment.Academic.ResearchAreas)
	assert.Equal(t, enrichment.ConfidenceMedium, rec.Enrichment.Confidence)
	assert.NotContains(t, e.Table, "nobody-here")

	logs.AssertContains(t, `"level":"warn"`, `"faculty_id":"nobody-here"`, "skipping update")
}

func TestApply_NeverLowersConfidence(t *testing.T) {
	mock, ws := seed(t)
	path := writeFile(t, "batch.json", `{"okafor-chidi": {"confidence": "low"}}`)

	_, err := run(t, mock, "apply", path)
	require.NoError(t, err)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	assert.Equal(t, enrichment.ConfidenceMedium, e.Table["okafor-chidi"].Enrichment.Confidence)
}

func TestApply_ParseFailure(t *testing.T) {
	mock, _ := seed(t)
	path := writeFile(t, "batch.json", `{"handley-jane": `)

	_, err := run(t, mock, "apply", path)
	var pe *errors.ParseError
	require.True(t, errors.As(err, &pe))
}

func TestORCID(t *testing.T) {
	mock, ws := seed(t)

	t.Run("normalizes and raises confidence", func(t *testing.T) {
		path := writeFile(t, "orcid.json", `{
			"handley-jane": {"orcid": "https://orcid.org/0000-0002-1825-009x", "confidence": "high", "source": "orcid.org"}
		}`)
		out, err := run(t, mock, "orcid", path)
		require.NoError(t, err)
		assert.Equal(t, 1, decode(t, out).Updated)

		e, err := ws.LoadEnrichment()
		require.NoError(t, err)
		assert.Equal(t, "0000-0002-1825-009X", e.Table["handley-jane"].Enrichment.Academic.ORCID)
		assert.Equal(t, enrichment.ConfidenceHigh, e.Table["handley-jane"].Enrichment.Confidence)
	})

	t.Run("rejects malformed identifiers", func(t *testing.T) {
		path := writeFile(t, "orcid.json", `{"okafor-chidi": {"orcid": "12345", "confidence": "high"}}`)
		_, err := run(t, mock, "orcid", path)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestSeed(t *testing.T) {
	mock, ws := seed(t)

	out, err := run(t, mock, "seed")
	require.NoError(t, err)
	result := decode(t, out)
	assert.Equal(t, []string{"lindqvist-maja"}, result.Created)
	assert.Equal(t, 3, result.Stats.Total)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	require.Contains(t, e.Table, "lindqvist-maja")
	assert.Equal(t, "Maja Lindqvist", e.Table["lindqvist-maja"].Name)
	assert.Equal(t, enrichment.ConfidencePending, e.Table["lindqvist-maja"].Enrichment.Confidence)

	out, err = run(t, mock, "seed")
	require.NoError(t, err)
	assert.Empty(t, decode(t, out).Created)
}

func TestStats_MetricsFile(t *testing.T) {
	mock, _ := seed(t)
	metrics := filepath.Join(t.TempDir(), "curator.prom")

	out, err := run(t, mock, "stats", "--metrics-file", metrics)
	require.NoError(t, err)

	var stats enrichment.Stats
	require.NoError(t, json.Unmarshal(out, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Confidence[enrichment.ConfidencePending])
	assert.Equal(t, 1, stats.Confidence[enrichment.ConfidenceMedium])

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "curator_enrichment_records 2")
	assert.Contains(t, string(data), `curator_enrichment_confidence_records{level="pending"} 1`)
}

func TestResearch_Static(t *testing.T) {
	mock, ws := seed(t)
	results := writeFile(t, "manual.json", `{
		"handley-jane": {"academic": {"researchAreas": ["population genetics"]}, "confidence": "low", "source": "manual"}
	}`)
	batchOut := filepath.Join(t.TempDir(), "found.json")

	out, err := run(t, mock, "research", "--backend", "static", "--results", results, "--batch-out", batchOut)
	require.NoError(t, err)

	result := decode(t, out)
	assert.Equal(t, 1, result.Updated)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	assert.Equal(t, []string{"population genetics"}, e.Table["handley-jane"].Enrichment.Academic.ResearchAreas)
	assert.Equal(t, enrichment.ConfidenceLow, e.Table["handley-jane"].Enrichment.Confidence)

	data, err := os.ReadFile(batchOut)
	require.NoError(t, err)
	found, err := enrichment.ParseBatch(data, batchOut)
	require.NoError(t, err)
	assert.Contains(t, found, "handley-jane")
}

func TestResearch_FailuresDoNotStopTheRun(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)
	mock, ws := seed(t)
	var seen []string
	mock.ResearcherFunc = func(context.Context) (research.Researcher, error) {
		return research.ResearcherFunc(func(_ context.Context, s research.Subject) (*enrichment.Update, error) {
			seen = append(seen, s.ID)
			return nil, errors.New("rate limited")
		}), nil
	}

	out, err := run(t, mock, "research")
	require.NoError(t, err)
	assert.Equal(t, []string{"handley-jane"}, seen)
	assert.Equal(t, 0, decode(t, out).Updated)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	assert.Equal(t, enrichment.ConfidencePending, e.Table["handley-jane"].Enrichment.Confidence)

	logs.AssertContains(t, `"level":"warn"`, `"faculty_id":"handley-jane"`, "rate limited", "Research failed; continuing")
}

func TestResearch_InvalidFlags(t *testing.T) {
	mock, _ := seed(t)

	_, err := run(t, mock, "research", "--backend", "static")
	assert.True(t, errors.IsValidationError(err))

	_, err = run(t, mock, "research", "--backend", "bing")
	assert.True(t, errors.IsValidationError(err))
}
