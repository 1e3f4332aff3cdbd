package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/cmd/application"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
)

func seed(t *testing.T) (*application.Mock, *workspace.Workspace) {
	t.Helper()
	ctx := context.Background()
	ws := workspace.New(workspace.NewPaths(t.TempDir()))

	d, err := ws.LoadDirectory()
	require.NoError(t, err)
	require.NoError(t, d.Put(directory.Faculty{ID: "fernandez-rosa", FirstName: "Rosa", LastName: "Fernandez"}))
	require.NoError(t, d.Put(directory.Faculty{ID: "fernndez-rosa", FirstName: "Rosa", LastName: "Fernández"}))
	require.NoError(t, d.Put(directory.NewFaculty("Handley", "Jane")))
	d.AddParticipations(
		directory.Participation{FacultyID: "fernandez-rosa", WorkshopID: "wog", Year: 2019, Role: "faculty"},
		directory.Participation{FacultyID: "fernndez-rosa", WorkshopID: "wog", Year: 2019, Role: "faculty"},
		directory.Participation{FacultyID: "fernndez-rosa", WorkshopID: "wog", Year: 2021, Role: "faculty"},
	)
	require.NoError(t, ws.SaveDirectory(ctx, d))

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	e.Table["fernndez-rosa"] = &enrichment.Record{
		ID:   "fernndez-rosa",
		Name: "Rosa Fernández",
		Enrichment: enrichment.Details{
			Confidence: enrichment.ConfidenceMedium,
			Academic:   enrichment.Academic{ORCID: "0000-0002-1825-0097"},
		},
	}
	require.NoError(t, ws.SaveEnrichment(ctx, e))

	return &application.Mock{
		WorkspaceFunc: func(context.Context) (*workspace.Workspace, error) { return ws, nil },
	}, ws
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

func TestMerge_ConcreteCase(t *testing.T) {
	mock, ws := seed(t)

	out, err := run(t, mock, "merge", "--canonical", "fernandez-rosa", "--obsolete", "fernndez-rosa", "--first", "Rosa", "--last", "Fernández")
	require.NoError(t, err)

	var result Result
	require.NoError(t, json.Unmarshal(out, &result))
	require.Len(t, result.Merges, 1)
	assert.Equal(t, 2, result.Merges[0].Repointed)
	assert.Equal(t, 1, result.Merges[0].DuplicatesDropped)
	assert.Equal(t, []string{"fernandez-rosa"}, result.Rekeyed)

	d, err := ws.LoadDirectory()
	require.NoError(t, err)
	assert.False(t, d.Exists("fernndez-rosa"))
	f, _ := d.Get("fernandez-rosa")
	assert.Equal(t, "Fernández", f.LastName)
	assert.Len(t, d.Participations(), 2)

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	require.Contains(t, e.Table, "fernandez-rosa")
	assert.Equal(t, "0000-0002-1825-0097", e.Table["fernandez-rosa"].Enrichment.Academic.ORCID)
	assert.Equal(t, "Rosa Fernández", e.Table["fernandez-rosa"].Name)
}

func TestMerge_UnknownIDs(t *testing.T) {
	mock, _ := seed(t)
	_, err := run(t, mock, "merge", "--canonical", "nobody-a", "--obsolete", "nobody-b")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestApply_SkipsMissingPairs(t *testing.T) {
	mock, _ := seed(t)
	mock.OverridesFunc = func() (*identity.Overrides, error) {
		return &identity.Overrides{Merges: []identity.Fix{
			{CanonicalID: "ghost-a", ObsoleteID: "ghost-b"},
			{CanonicalID: "fernandez-rosa", ObsoleteID: "fernndez-rosa", FirstName: "Rosa", LastName: "Fernández"},
		}}, nil
	}

	out, err := run(t, mock, "apply")
	require.NoError(t, err)

	var result Result
	require.NoError(t, json.Unmarshal(out, &result))
	require.Len(t, result.Merges, 2)
	assert.True(t, result.Merges[0].Skipped)
	assert.False(t, result.Merges[1].Skipped)
	assert.Equal(t, []string{"fernandez-rosa"}, result.Rekeyed)
}

func TestSuspects(t *testing.T) {
	mock, _ := seed(t)
	out, err := run(t, mock, "suspects")
	require.NoError(t, err)

	var groups []identity.SuspectGroup
	require.NoError(t, json.Unmarshal(out, &groups))
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"fernandez-rosa", "fernndez-rosa"}, groups[0].IDs)
}
