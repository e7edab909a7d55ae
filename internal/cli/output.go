package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/secureshell/passman/internal/clipboard"
	"github.com/secureshell/passman/internal/config"
)

// MaxOutputSize is the maximum allowed size for output to prevent memory exhaustion
const MaxOutputSize = 10 * 1024 * 1024 // 10MB

var (
	copyToClipboard      = clipboard.CopyWithTimeout
	clipboardIsAvailable = clipboard.IsAvailable
)

// writeString writes a string to the writer with error checking and size limits
func writeString(w io.Writer, s string) error {
	if len(s) > MaxOutputSize {
		return fmt.Errorf("output size %d exceeds maximum allowed size %d",
			len(s), MaxOutputSize)
	}

	n, err := fmt.Fprint(w, s)
	if err != nil {
		return fmt.Errorf("failed to write output (wrote %d bytes): %w", n, err)
	}
	return nil
}

// writeOutput writes formatted output with error checking and size limits
func writeOutput(w io.Writer, format string, args ...interface{}) error {
	return writeString(w, fmt.Sprintf(format, args...))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func resolveClipboardTTL(override int, conf *config.Config) (time.Duration, error) {
	if override < -1 {
		return 0, fmt.Errorf("--ttl must be -1 (config default) or a non-negative number of seconds")
	}

	if override >= 0 {
		return time.Duration(override) * time.Second, nil
	}

	if conf != nil && conf.ClipboardTTL > 0 {
		return conf.ClipboardTTL, nil
	}

	return 30 * time.Second, nil
}

// copySecret copies secret to the clipboard and waits until it has been cleared.
func copySecret(w io.Writer, secret string, ttl time.Duration) error {
	if !clipboardIsAvailable() {
		return fmt.Errorf("clipboard not available, use --show to print instead")
	}

	done, err := copyToClipboard(secret, ttl)
	if err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	if ttl <= 0 {
		return writeOutput(w, "✓ Password copied to clipboard\n")
	}
	if err := writeOutput(w, "✓ Password copied to clipboard (clears in %s)\n", ttl.Round(time.Second)); err != nil {
		return err
	}
	<-done
	return nil
}
