package store

import (
	"errors"

	"github.com/secureshell/passman/internal/domain"
)

// Error variables for store operations
var (
	// ErrIO wraps failures to read or write the data files
	ErrIO = errors.New("vault file i/o failed")
	// ErrSnapshotNotFound is returned when a journal snapshot does not exist
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotCorrupted is returned when a snapshot fails its digest check
	ErrSnapshotCorrupted = errors.New("snapshot data is corrupted")
	// ErrJournalCorrupted is returned when a journal record cannot be decoded
	ErrJournalCorrupted = errors.New("journal data is corrupted")
	// ErrJournalClosed is returned when the journal is used after Close
	ErrJournalClosed = errors.New("journal is closed")
	// ErrForeignSnapshot is returned when a snapshot was sealed under another master key
	ErrForeignSnapshot = errors.New("snapshot was sealed under a different master password")
)

// EntryStore persists the master credential and the entry collection
type EntryStore interface {
	// LoadMaster returns the stored credential; ok is false on a fresh install.
	LoadMaster() (cred domain.MasterCredential, ok bool, err error)
	SaveMaster(cred domain.MasterCredential) error

	// LoadEntries decrypts the vault file keyed by the master hash.
	// A missing vault file yields an empty collection.
	LoadEntries(masterHash string) (map[string]*domain.Entry, error)
	SaveEntries(entries map[string]*domain.Entry, masterHash string) error
}
