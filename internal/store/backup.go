package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"filippo.io/age"

	"github.com/secureshell/passman/internal/vault"
)

// BackupVersion is the current backup document version
const BackupVersion = 1

// BackupRecord is one decrypted entry inside a backup
type BackupRecord struct {
	Service     string `json:"service"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ServiceLink string `json:"service_link,omitempty"`
}

// Backup is the plaintext document sealed inside an age file
type Backup struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   []BackupRecord `json:"entries"`
}

// ExportBackup seals b with an age scrypt recipient for passphrase and writes it to w.
// workFactor is the scrypt log2 cost; zero uses the age default.
func ExportBackup(w io.Writer, passphrase string, workFactor int, b *Backup) error {
	if passphrase == "" {
		return fmt.Errorf("backup passphrase cannot be empty")
	}
	if b.Version == 0 {
		b.Version = BackupVersion
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create backup recipient: %w", err)
	}
	if workFactor > 0 {
		recipient.SetWorkFactor(workFactor)
	}

	wc, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("failed to start backup encryption: %w", err)
	}

	enc := json.NewEncoder(wc)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish backup encryption: %w", err)
	}
	return nil
}

// ImportBackup opens an age file written by ExportBackup.
// A wrong passphrase returns vault.ErrAuthFailed.
func ImportBackup(r io.Reader, passphrase string) (*Backup, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup identity: %w", err)
	}

	plain, err := age.Decrypt(r, identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, vault.ErrAuthFailed
		}
		return nil, fmt.Errorf("failed to decrypt backup: %w", err)
	}

	var b Backup
	if err := json.NewDecoder(plain).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if b.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %d", b.Version)
	}
	return &b, nil
}
