package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBackend struct {
	mu       sync.Mutex
	content  string
	writeErr error
}

func (f *fakeBackend) ReadAll() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content, nil
}

func (f *fakeBackend) WriteAll(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.content = text
	return nil
}

func (f *fakeBackend) get() string {
	c, _ := f.ReadAll()
	return c
}

func useFake(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{}
	SetBackend(f)
	t.Cleanup(func() { SetBackend(nil) })
	return f
}

func TestCopyWithTimeoutClears(t *testing.T) {
	f := useFake(t)

	done, err := CopyWithTimeout("hunter2", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("CopyWithTimeout() error = %v", err)
	}
	if got := f.get(); got != "hunter2" {
		t.Fatalf("clipboard = %q, want secret", got)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clipboard was not cleared in time")
	}
	if got := f.get(); got != "" {
		t.Fatalf("clipboard = %q after timeout, want empty", got)
	}
}

func TestCopyWithTimeoutKeepsNewerContent(t *testing.T) {
	f := useFake(t)

	done, err := CopyWithTimeout("hunter2", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("CopyWithTimeout() error = %v", err)
	}
	if err := f.WriteAll("something else"); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	<-done
	if got := f.get(); got != "something else" {
		t.Fatalf("clipboard = %q, newer content should survive", got)
	}
}

func TestCopyWithTimeoutZeroNeverClears(t *testing.T) {
	f := useFake(t)
	done, err := CopyWithTimeout("keep", 0)
	if err != nil {
		t.Fatalf("CopyWithTimeout() error = %v", err)
	}
	<-done
	if got := f.get(); got != "keep" {
		t.Fatalf("clipboard = %q, want %q", got, "keep")
	}
}

func TestCopyWithTimeoutWriteError(t *testing.T) {
	f := useFake(t)
	f.writeErr = errors.New("no display")
	if _, err := CopyWithTimeout("x", time.Second); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsAvailableAndClear(t *testing.T) {
	f := useFake(t)
	if !IsAvailable() {
		t.Fatal("fake backend should be available")
	}
	f.content = "x"
	if err := Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if f.get() != "" {
		t.Fatal("Clear() did not empty the clipboard")
	}
}
