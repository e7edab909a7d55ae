// Package clipboard copies secrets to the system clipboard and clears them later.
package clipboard

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// Backend is the system clipboard; tests replace it
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBackend struct{}

func (systemBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }

var backend Backend = systemBackend{}

// SetBackend replaces the clipboard backend. nil restores the system clipboard.
func SetBackend(b Backend) {
	if b == nil {
		b = systemBackend{}
	}
	backend = b
}

// CopyWithTimeout copies text to the clipboard and clears it after timeout,
// unless the clipboard was changed in the meantime. The returned channel is
// closed once the clear has run; a zero timeout never clears.
func CopyWithTimeout(text string, timeout time.Duration) (<-chan struct{}, error) {
	if err := backend.WriteAll(text); err != nil {
		return nil, fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	done := make(chan struct{})
	if timeout <= 0 {
		close(done)
		return done, nil
	}

	b := backend
	go func() {
		defer close(done)
		time.Sleep(timeout)

		current, err := b.ReadAll()
		if err == nil && current == text {
			_ = b.WriteAll("")
		}
	}()

	return done, nil
}

// IsAvailable returns true if clipboard functionality is available
func IsAvailable() bool {
	if clipboard.Unsupported {
		if _, ok := backend.(systemBackend); ok {
			return false
		}
	}
	_, err := backend.ReadAll()
	return err == nil
}

// Clear clears the clipboard
func Clear() error {
	return backend.WriteAll("")
}
