// Package store reads and writes the flat JSON data files.
//
// Every write is whole-file: the document is marshaled with two-space
// indentation into a temporary file next to the target which is then
// renamed over it. A Snapshot taken at read time lets a writer fail closed
// when another process changed the file in between.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// Snapshot is the identity of a file's content at read time.
type Snapshot struct {
	Path string
	Sum  string
	// Missing is set when the file did not exist.
	Missing bool
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Read returns the file content and its snapshot. A missing file is not an
// error; it yields nil data and a snapshot with Missing set.
func Read(path string) ([]byte, Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Snapshot{Path: path, Missing: true}, nil
	}
	if err != nil {
		return nil, Snapshot{}, errors.WrapIO("read", path, err)
	}
	return data, Snapshot{Path: path, Sum: Checksum(data)}, nil
}

// Load decodes the JSON file at path into v. It reports whether the file
// existed; a missing file leaves v untouched.
func Load(path string, v any) (Snapshot, bool, error) {
	data, snap, err := Read(path)
	if err != nil || snap.Missing {
		return snap, false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return snap, true, errors.WrapParse("json", path, err)
	}
	return snap, true, nil
}

// Verify fails with a StaleError when the file no longer matches snap.
func (s Snapshot) Verify() error {
	data, current, err := Read(s.Path)
	if err != nil {
		return err
	}
	switch {
	case s.Missing && current.Missing:
		return nil
	case s.Missing:
		return &errors.StaleError{Path: s.Path, Expected: "(absent)", Actual: Checksum(data)}
	case current.Missing:
		return &errors.StaleError{Path: s.Path, Expected: s.Sum, Actual: "(absent)"}
	case current.Sum != s.Sum:
		return &errors.StaleError{Path: s.Path, Expected: s.Sum, Actual: current.Sum}
	}
	return nil
}

// Marshal renders v the way every data file is stored.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save marshals v and writes it to path atomically.
func Save(path string, v any, opts ...Option) error {
	data, err := Marshal(v)
	if err != nil {
		return errors.WrapResource("marshal", filepath.Base(path), "", err)
	}
	return WriteFile(path, data, opts...)
}

// WriteFile writes data to path atomically, honoring the options.
func WriteFile(path string, data []byte, opts ...Option) error {
	o := Defaults().Apply(opts...)

	if o.snapshot != nil {
		if err := o.snapshot.Verify(); err != nil {
			return err
		}
	}
	if o.dryRun {
		logging.Info().Str("file", path).Int("bytes", len(data)).Msg("Dry run; not writing")
		return nil
	}
	if o.beforeWrite != nil {
		if err := o.beforeWrite(path); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.WrapIO("move", path, err)
	}

	logging.Debug().Str("file", path).Int("bytes", len(data)).Msg("Wrote file")
	return nil
}
