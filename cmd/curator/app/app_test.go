package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/errors"
)

const roster = `Last Name,First Name,2021,2022
Handely,Jane,x,x
Okafor,Chidi,,x
`

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	app, err := New("1.2.3", "abc123", "2024-01-01", "test", WithOutput(&out, &bytes.Buffer{}))
	require.NoError(t, err)
	return app, &out
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, "1.2.3", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
	assert.Positive(t, app.ResearchOptions().Size)
}

// TestApp_Workspace_Singleton verifies concurrent Workspace calls share one instance.
func TestApp_Workspace_Singleton(t *testing.T) {
	app, _ := newTestApp(t)
	app.config.DataDir = t.TempDir()

	const goroutines = 20
	var wg sync.WaitGroup
	results := make([]*workspace.Workspace, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ws, err := app.Workspace(context.Background())
			assert.NoError(t, err)
			results[idx] = ws
		}(i)
	}
	wg.Wait()

	for i, ws := range results {
		assert.Same(t, results[0], ws, "goroutine %d got a different workspace", i)
	}
}

func TestApp_Researcher_RequiresKey(t *testing.T) {
	app, _ := newTestApp(t)
	app.config.Research.GeminiAPIKey = ""

	_, err := app.Researcher(context.Background())
	var ce *errors.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestExecute_IngestThenExport(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "wog.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(roster), 0o644))
	dataDir := filepath.Join(dir, "data")

	app, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Execute(ctx, []string{"--data-dir", dataDir, "-o", "json", "ingest", "--workshop", "wog=" + rosterPath}))
	var report struct {
		Faculty        int `json:"faculty"`
		Participations int `json:"participations"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Faculty)
	assert.Equal(t, 3, report.Participations)

	out.Reset()
	require.NoError(t, app.Execute(ctx, []string{"--data-dir", dataDir, "export", "ids"}))
	// The Handely spelling is corrected on the way in.
	assert.Equal(t, "handley-jane\nokafor-chidi\n", out.String())

	_, err := os.Stat(filepath.Join(dataDir, "faculty.json"))
	assert.NoError(t, err)
}

func TestExecute_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "wog.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(roster), 0o644))
	dataDir := filepath.Join(dir, "data")

	app, _ := newTestApp(t)
	require.NoError(t, app.Execute(context.Background(), []string{"--data-dir", dataDir, "--dry-run", "-o", "json", "ingest", "-w", "wog=" + rosterPath}))

	_, err := os.Stat(filepath.Join(dataDir, "faculty.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_InvalidFormat(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Execute(context.Background(), []string{"--data-dir", t.TempDir(), "-o", "xml", "enrich", "stats"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestExecute_Version(t *testing.T) {
	app, out := newTestApp(t)
	require.NoError(t, app.Execute(context.Background(), []string{"version"}))
	assert.Equal(t, "curator 1.2.3", strings.TrimSpace(out.String()))

	out.Reset()
	require.NoError(t, app.Execute(context.Background(), []string{"-v", "version"}))
	assert.Contains(t, out.String(), "commit:   abc123")
}

func TestExecute_ConfigFlagReloads(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "from-config")
	configPath := filepath.Join(t.TempDir(), "curator.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("data_dir: "+dataDir+"\ndashboard_url: https://dash.example.org/\n"), 0o644))

	app, out := newTestApp(t)
	require.NoError(t, app.Execute(context.Background(), []string{"--config", configPath, "-o", "json", "share", "--map"}))

	assert.Equal(t, dataDir, app.Config().DataDir)
	var link struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &link))
	assert.Equal(t, "https://dash.example.org/?map=true", link.URL)
}
