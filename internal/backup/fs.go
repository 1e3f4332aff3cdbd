package backup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/errors"
)

// FSStore keeps backups in a local directory.
type FSStore struct {
	Dir string
}

// NewFSStore creates a directory-backed store.
func NewFSStore(dir string) *FSStore {
	return &FSStore{Dir: dir}
}

// Name implements Store.
func (s *FSStore) Name() string { return "fs" }

// maxSuffix bounds the retries for keys taken within the same second.
var maxSuffix = 1000

// Put writes a new file. Existing backups are never overwritten: when key
// is taken, "_1", "_2", ... is appended to its stem.
func (s *FSStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", s.Dir, err)
	}
	for n := 0; n < maxSuffix; n++ {
		path := filepath.Join(s.Dir, suffixed(key, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", errors.WrapIO("create", path, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", errors.WrapIO("write", path, err)
		}
		if err := f.Close(); err != nil {
			return "", errors.WrapIO("close", path, err)
		}
		return path, nil
	}
	return "", errors.WrapResource("put", "backup", key, errors.ErrAlreadyExists)
}

func suffixed(key string, n int) string {
	if n == 0 {
		return key
	}
	ext := filepath.Ext(key)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(key, ext), n, ext)
}

// List implements Store.
func (s *FSStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", s.Dir, err)
	}
	var keys []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			keys = append(keys, e.Name())
		}
	}
	slices.Sort(keys)
	return keys, nil
}
