package repo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/domain"
)

// FileState keeps the snapshot in a single JSON file, rewritten wholesale
type FileState struct {
	path string
}

// NewFileState returns a file backend at path
func NewFileState(path string) *FileState { return &FileState{path: path} }

// Name implements domain.StateStore
func (f *FileState) Name() string { return "file:" + f.path }

// Load reads the snapshot; a missing file is an empty state
func (f *FileState) Load(_ context.Context) (domain.State, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.State{}.Normalize(), nil
		}
		return domain.State{}, perr.Wrapf(err, perr.ErrorCodeDB, "read state file %s", f.path)
	}
	return decodeState(b, f.path)
}

// Save writes to a temp file in the same directory then renames over the target
func (f *FileState) Save(_ context.Context, s domain.State) error {
	b, err := encodeState(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "create temp state file in %s", dir)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeDB, "write state file %s", name)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return perr.Wrapf(err, perr.ErrorCodeDB, "sync state file %s", name)
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "close state file %s", name)
	}
	if err := os.Rename(name, f.path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "replace state file %s", f.path)
	}
	return nil
}

// Ping checks that the directory holding the file is usable
func (f *FileState) Ping(_ context.Context) error {
	dir := filepath.Dir(f.path)
	fi, err := os.Stat(dir)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "state dir %s", dir)
	}
	if !fi.IsDir() {
		return perr.Unavailablef("state dir %s is not a directory", dir)
	}
	return nil
}
