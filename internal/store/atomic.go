package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// AtomicWriter stages a file next to its target and renames it into place on Commit,
// so readers see either the old vault file or the new one.
type AtomicWriter struct {
	targetPath string
	tempFile   *os.File
}

// NewAtomicWriter creates a staging file in the target's directory
func NewAtomicWriter(targetPath string) (*AtomicWriter, error) {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(targetPath)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to set temp file permissions: %w", err)
	}

	return &AtomicWriter{targetPath: targetPath, tempFile: tempFile}, nil
}

// Write writes data to the staging file
func (aw *AtomicWriter) Write(data []byte) (int, error) {
	if aw.tempFile == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	return aw.tempFile.Write(data)
}

// Commit syncs the staging file and renames it over the target
func (aw *AtomicWriter) Commit() error {
	if aw.tempFile == nil {
		return fmt.Errorf("writer is closed")
	}
	tempPath := aw.tempFile.Name()

	if err := aw.tempFile.Sync(); err != nil {
		aw.abortWithWarning()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := aw.tempFile.Close(); err != nil {
		aw.tempFile = nil
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	aw.tempFile = nil

	if err := os.Rename(tempPath, aw.targetPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Abort discards the staging file
func (aw *AtomicWriter) Abort() error {
	if aw.tempFile == nil {
		return nil
	}
	tempPath := aw.tempFile.Name()
	err := aw.tempFile.Close()
	aw.tempFile = nil
	if removeErr := os.Remove(tempPath); removeErr != nil && err == nil {
		err = removeErr
	}
	return err
}

func (aw *AtomicWriter) abortWithWarning() {
	if err := aw.Abort(); err != nil {
		log.Printf("Warning: failed to abort atomic writer: %v", err)
	}
}

// AtomicWriteFile replaces path with data
func AtomicWriteFile(path string, data []byte) error {
	writer, err := NewAtomicWriter(path)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		writer.abortWithWarning()
		return err
	}

	return writer.Commit()
}

// EnsureFilePermissions resets a file to 0600 when group or others have access
func EnsureFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Mode().Perm()&0o077 != 0 {
		return os.Chmod(path, 0o600)
	}
	return nil
}
