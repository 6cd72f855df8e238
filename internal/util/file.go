package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrFileClosed = errors.New("file already committed or aborted")

// AtomicFile writes to a hidden temp file next to path and only moves it
// to path on Commit, so readers never see a half-written book. Each run
// gets its own temp name, and nothing else in the directory is touched.
type AtomicFile struct {
	path string
	tmp  string
	f    *os.File
	// madeDir is the directory CreateAtomic had to create, if any.
	madeDir string
}

func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)

	var madeDir string
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		madeDir = dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.noveld")
	if err != nil {
		if madeDir != "" {
			RemoveIfEmpty(madeDir)
		}
		return nil, fmt.Errorf("create temp file for %s: %w", path, err)
	}

	return &AtomicFile{path: path, tmp: f.Name(), f: f, madeDir: madeDir}, nil
}

// Path is the final location of the file.
func (a *AtomicFile) Path() string { return a.path }

func (a *AtomicFile) Write(p []byte) (int, error) {
	if a.f == nil {
		return 0, ErrFileClosed
	}

	return a.f.Write(p)
}

func (a *AtomicFile) Commit() error {
	if a.f == nil {
		return ErrFileClosed
	}

	f := a.f
	a.f = nil

	// CreateTemp opens with 0600.
	if err := f.Chmod(0644); err != nil {
		_ = f.Close()
		a.discard()
		return fmt.Errorf("chmod %s: %w", a.tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		a.discard()
		return fmt.Errorf("sync %s: %w", a.tmp, err)
	}
	if err := f.Close(); err != nil {
		a.discard()
		return fmt.Errorf("close %s: %w", a.tmp, err)
	}

	if err := os.Rename(a.tmp, a.path); err != nil {
		a.discard()
		return fmt.Errorf("rename %s: %w", a.tmp, err)
	}

	return nil
}

// Abort is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.f == nil {
		return nil
	}

	f := a.f
	a.f = nil
	_ = f.Close()

	if err := os.Remove(a.tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	if a.madeDir != "" {
		RemoveIfEmpty(a.madeDir)
	}

	return nil
}

func (a *AtomicFile) discard() {
	_ = os.Remove(a.tmp)
	if a.madeDir != "" {
		RemoveIfEmpty(a.madeDir)
	}
}
