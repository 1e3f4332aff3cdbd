package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/cmd/application"
	"github.com/workshopdir/curator/internal/export"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
)

func seed(t *testing.T) *application.Mock {
	t.Helper()
	ctx := context.Background()
	ws := workspace.New(workspace.NewPaths(t.TempDir()))

	d, err := ws.LoadDirectory()
	require.NoError(t, err)
	jane := directory.NewFaculty("Handley", "Jane")
	require.NoError(t, d.Put(jane))
	require.NoError(t, d.Put(directory.NewFaculty("Okafor", "Chidi")))
	d.AddParticipations(
		directory.Participation{FacultyID: jane.ID, WorkshopID: "wog", Year: 2019, Role: "faculty"},
		directory.Participation{FacultyID: jane.ID, WorkshopID: "wog", Year: 2021, Role: "faculty"},
	)
	require.NoError(t, ws.SaveDirectory(ctx, d))

	e, err := ws.LoadEnrichment()
	require.NoError(t, err)
	enrichment.Seed(e.Table, []directory.Faculty{jane}, time.Now())
	e.Table[jane.ID].Enrichment.Academic.ResearchAreas = []string{"genomics", "ecology"}
	require.NoError(t, ws.SaveEnrichment(ctx, e))

	return &application.Mock{
		WorkspaceFunc: func(context.Context) (*workspace.Workspace, error) { return ws, nil },
	}
}

func run(t *testing.T, mock *application.Mock, args ...string) []byte {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestSQLite(t *testing.T) {
	mock := seed(t)
	path := filepath.Join(t.TempDir(), "dash", "directory.db")

	var summary export.Summary
	require.NoError(t, json.Unmarshal(run(t, mock, "sqlite", path), &summary))
	assert.Equal(t, 2, summary.Faculty)
	assert.Equal(t, 2, summary.Participations)
	assert.Equal(t, 1, summary.Enrichment)
	assert.Equal(t, 2, summary.ResearchAreas)
	assert.Equal(t, 0, summary.Mappings)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var years int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM participations WHERE faculty_id = ?`, "handley-jane").Scan(&years))
	assert.Equal(t, 2, years)

	// A second export replaces rather than appends.
	run(t, mock, "sqlite", path)
	var faculty int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM faculty`).Scan(&faculty))
	assert.Equal(t, 2, faculty)
}

func TestIDs(t *testing.T) {
	mock := seed(t)

	assert.Equal(t, "handley-jane\nokafor-chidi\n", string(run(t, mock, "ids")))

	path := filepath.Join(t.TempDir(), "ids.txt")
	run(t, mock, "ids", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "handley-jane\nokafor-chidi\n", string(data))
}
