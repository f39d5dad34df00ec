// Package fileutil provides crash-safe file writes for keystore files.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrEmptyPath indicates an empty file path was provided.
	ErrEmptyPath = errors.New("path is empty")

	// ErrExists indicates WriteNew found the target already present.
	ErrExists = errors.New("file already exists")
)

// WriteAtomic replaces path with data. Readers see either the old or the new
// content, never a partial write. Missing parent directories are created 0700.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	return write(path, data, perm, func(tmpPath string) error {
		return os.Rename(tmpPath, path) //nolint:gosec // G703: path is built by the keystore, not user input
	})
}

// WriteNew writes data to path only if path does not exist yet.
// The check and the write are one step, so two writers cannot both succeed.
func WriteNew(path string, data []byte, perm os.FileMode) error {
	return write(path, data, perm, func(tmpPath string) error {
		if err := os.Link(tmpPath, path); err != nil {
			if errors.Is(err, os.ErrExist) {
				return fmt.Errorf("%w: %s", ErrExists, path)
			}
			return err
		}
		return nil
	})
}

func write(path string, data []byte, perm os.FileMode, publish func(tmpPath string) error) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmpFile.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmpFile.Close()
		}
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	closed = true

	if err := publish(tmpPath); err != nil {
		return err
	}

	// Best effort directory sync for rename durability.
	if dirFile, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from the target path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}
