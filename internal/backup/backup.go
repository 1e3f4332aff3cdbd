// Package backup keeps timestamped copies of data files before they are
// overwritten. Copies go to a local directory and, when configured, are
// mirrored to an S3-compatible bucket.
package backup

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/workshopdir/curator/internal/store"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// Store is a destination for backup copies.
type Store interface {
	// Put stores data under key and returns where it went.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	// Name identifies the store in logs.
	Name() string
}

// Name returns the backup key for file: "<stem>.v<version>.<stamp>.json"
// when version is known, "<stem>.<stamp>.json" otherwise.
func Name(file, version string, t time.Time) string {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stamp := t.UTC().Format(constants.TimeFormatFilename)
	if version != "" {
		return fmt.Sprintf("%s.v%s.%s.json", stem, version, stamp)
	}
	return fmt.Sprintf("%s.%s.json", stem, stamp)
}

// Manager writes backups to every configured store.
type Manager struct {
	stores []Store
	now    func() time.Time
}

// NewManager creates a manager. The first store is the primary; a failure
// there aborts the backup, failures on mirrors are only logged.
func NewManager(stores ...Store) *Manager {
	return &Manager{stores: stores, now: time.Now}
}

// Backup copies the current content of path. It returns the primary
// location, or "" when the file does not exist yet.
func (m *Manager) Backup(ctx context.Context, path, version string) (string, error) {
	if len(m.stores) == 0 {
		return "", nil
	}
	data, snap, err := store.Read(path)
	if err != nil {
		return "", err
	}
	if snap.Missing {
		return "", nil
	}

	key := Name(path, version, m.now())
	var primary string
	for i, s := range m.stores {
		loc, err := s.Put(ctx, key, data)
		if err != nil {
			if i == 0 {
				return "", errors.WrapResource("backup", filepath.Base(path), s.Name(), err)
			}
			logging.Warn().Err(err).Str("store", s.Name()).Str("key", key).Msg("Backup mirror failed")
			continue
		}
		if i == 0 {
			primary = loc
			// mirrors use the key the primary settled on
			key = path.Base(filepath.ToSlash(loc))
		}
		logging.Info().Str("store", s.Name()).Str("location", loc).Msg("Backed up file")
	}
	return primary, nil
}

// Hook returns a store write option that backs up the target first.
func (m *Manager) Hook(ctx context.Context, version string) store.Option {
	return store.WithBeforeWrite(func(path string) error {
		_, err := m.Backup(ctx, path, version)
		return err
	})
}
