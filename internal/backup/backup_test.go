package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workshopdir/curator/internal/store"
	"github.com/workshopdir/curator/pkg/errors"
)

var fixed = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func TestName(t *testing.T) {
	assert.Equal(t, "term-mappings.v1.4.20250304T050607Z.json", Name("/data/term-mappings.json", "1.4", fixed))
	assert.Equal(t, "faculty.20250304T050607Z.json", Name("faculty.json", "", fixed))
	assert.Equal(t, "faculty.20250304T050607Z.json", Name("faculty.json", "", fixed.In(time.FixedZone("PST", -8*3600))))
}

type failingStore struct{}

func (failingStore) Name() string { return "broken" }
func (failingStore) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("unreachable")
}
func (failingStore) List(context.Context, string) ([]string, error) { return nil, nil }

func TestManager_Backup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faculty.json")
	require.NoError(t, os.WriteFile(target, []byte(`[]`), 0o644))

	fsStore := NewFSStore(filepath.Join(dir, "backups"))
	m := NewManager(fsStore, failingStore{})
	m.now = func() time.Time { return fixed }

	loc, err := m.Backup(context.Background(), target, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "faculty.20250304T050607Z.json"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	keys, err := fsStore.List(context.Background(), "faculty.")
	require.NoError(t, err)
	assert.Equal(t, []string{"faculty.20250304T050607Z.json"}, keys)

	// same second: the earlier copy is kept and the new one suffixed
	require.NoError(t, os.WriteFile(target, []byte(`[{"id":"handley-jane"}]`), 0o644))
	loc, err = m.Backup(context.Background(), target, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "faculty.20250304T050607Z_1.json"), loc)

	keys, err = fsStore.List(context.Background(), "faculty.")
	require.NoError(t, err)
	assert.Equal(t, []string{"faculty.20250304T050607Z.json", "faculty.20250304T050607Z_1.json"}, keys)

	data, err = os.ReadFile(filepath.Join(dir, "backups", keys[0]))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestFSStore_PutGivesUpAfterMaxSuffix(t *testing.T) {
	old := maxSuffix
	maxSuffix = 2
	t.Cleanup(func() { maxSuffix = old })

	s := NewFSStore(t.TempDir())
	ctx := context.Background()
	for range 2 {
		_, err := s.Put(ctx, "faculty.20250304T050607Z.json", []byte(`[]`))
		require.NoError(t, err)
	}
	_, err := s.Put(ctx, "faculty.20250304T050607Z.json", []byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestManager_MirrorUsesPrimaryKey(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faculty.json")
	require.NoError(t, os.WriteFile(target, []byte(`[]`), 0o644))

	mirror := &recordingStore{}
	m := NewManager(NewFSStore(filepath.Join(dir, "backups")), mirror)
	m.now = func() time.Time { return fixed }

	for range 2 {
		_, err := m.Backup(context.Background(), target, "")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"faculty.20250304T050607Z.json", "faculty.20250304T050607Z_1.json"}, mirror.keys)
}

type recordingStore struct{ keys []string }

func (r *recordingStore) Name() string { return "recording" }
func (r *recordingStore) Put(_ context.Context, key string, _ []byte) (string, error) {
	r.keys = append(r.keys, key)
	return "mem://" + key, nil
}
func (r *recordingStore) List(context.Context, string) ([]string, error) { return r.keys, nil }

func TestManager_MissingFileIsNotBackedUp(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(NewFSStore(filepath.Join(dir, "backups")))

	loc, err := m.Backup(context.Background(), filepath.Join(dir, "none.json"), "1.0")
	require.NoError(t, err)
	assert.Empty(t, loc)
}

func TestManager_PrimaryFailureAborts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faculty.json")
	require.NoError(t, os.WriteFile(target, []byte(`[]`), 0o644))

	m := NewManager(failingStore{})
	_, err := m.Backup(context.Background(), target, "")
	require.Error(t, err)

	// the hook stops the write
	err = store.Save(target, []int{1}, m.Hook(context.Background(), ""))
	require.Error(t, err)
	data, _ := os.ReadFile(target)
	assert.Equal(t, `[]`, string(data))
}

func TestManager_HookBacksUpBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "term-mappings.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"old":true}`), 0o644))

	fsStore := NewFSStore(filepath.Join(dir, "backups"))
	m := NewManager(fsStore)
	m.now = func() time.Time { return fixed }

	require.NoError(t, store.Save(target, map[string]bool{"new": true}, m.Hook(context.Background(), "2.0")))

	data, err := os.ReadFile(filepath.Join(dir, "backups", "term-mappings.v2.0.20250304T050607Z.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, string(data))
}
