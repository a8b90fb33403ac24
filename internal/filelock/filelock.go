// Package filelock guards the output directory against concurrent vrpack
// runs and provides atomic file writes so readers never observe a
// half-written summary or packet.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is the lock file created inside the output directory.
const lockFileName = ".vrpack.lock"

// RunLock is an exclusive lock on an output directory, held for the
// duration of a single vrpack run.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// Acquire creates dir if needed and takes a non-blocking exclusive lock
// on its lock file. It returns an error if another run already holds the
// lock; vrpack never queues behind a concurrent run.
func Acquire(dir string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, lockFileName)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("output directory %s is locked by another vrpack run", dir)
	}

	return &RunLock{flock: fl, path: path}, nil
}

// Release gives up the lock. Safe to defer immediately after Acquire.
func (rl *RunLock) Release() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", rl.path, err)
	}
	return nil
}

// AtomicWrite writes data to path via a temp file and rename, so the
// previous file content is either fully replaced or left untouched.
// The temp file lives in the target directory to keep the rename on one
// filesystem.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Renamed successfully, skip the deferred cleanup.
	tempFile = nil

	return nil
}
