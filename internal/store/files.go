package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/vault"
)

// Default file names inside the data directory
const (
	DefaultMasterFile  = "master.txt"
	DefaultVaultFile   = "passwords.txt"
	DefaultJournalFile = "journal.db"
)

// FileStore implements EntryStore with a plaintext master file and an encrypted vault file
type FileStore struct {
	dir          string
	masterPath   string
	vaultPath    string
	journal      *Journal
	historyLimit int
	logger       *slog.Logger
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithFileNames overrides the master and vault file names
func WithFileNames(master, vaultFile string) FileStoreOption {
	return func(s *FileStore) {
		if master != "" {
			s.masterPath = filepath.Join(s.dir, master)
		}
		if vaultFile != "" {
			s.vaultPath = filepath.Join(s.dir, vaultFile)
		}
	}
}

// WithJournal snapshots the previous vault file into j before each overwrite,
// keeping at most limit snapshots (zero keeps all).
func WithJournal(j *Journal, limit int) FileStoreOption {
	return func(s *FileStore) {
		s.journal = j
		s.historyLimit = limit
	}
}

// WithStoreLogger sets the logger used for dropped records and snapshot warnings
func WithStoreLogger(l *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	dir = filepath.Clean(dir)
	s := &FileStore{
		dir:        dir,
		masterPath: filepath.Join(dir, DefaultMasterFile),
		vaultPath:  filepath.Join(dir, DefaultVaultFile),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory
func (s *FileStore) Dir() string { return s.dir }

// MasterPath returns the master credential file path
func (s *FileStore) MasterPath() string { return s.masterPath }

// VaultPath returns the vault file path
func (s *FileStore) VaultPath() string { return s.vaultPath }

// Journal returns the attached journal, or nil
func (s *FileStore) Journal() *Journal { return s.journal }

// LoadMaster reads the hash and salt lines of the master file.
func (s *FileStore) LoadMaster() (domain.MasterCredential, bool, error) {
	data, err := os.ReadFile(s.masterPath)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.MasterCredential{}, false, nil
	}
	if err != nil {
		return domain.MasterCredential{}, false, fmt.Errorf("%w: read master file: %v", ErrIO, err)
	}

	lines := strings.SplitN(string(data), "\n", 3)
	cred := domain.MasterCredential{Hash: strings.TrimRight(lines[0], "\r")}
	if len(lines) > 1 {
		cred.Salt = strings.TrimRight(lines[1], "\r")
	}
	if cred.IsZero() {
		s.logger.Warn("master file is incomplete, treating as absent", "path", s.masterPath)
		return domain.MasterCredential{}, false, nil
	}
	return cred, true, nil
}

// SaveMaster writes the hash and salt as two lines, without a trailing newline.
func (s *FileStore) SaveMaster(cred domain.MasterCredential) error {
	if cred.IsZero() {
		return fmt.Errorf("master credential is empty")
	}
	data := []byte(cred.Hash + "\n" + cred.Salt)
	if err := AtomicWriteFile(s.masterPath, data); err != nil {
		return fmt.Errorf("%w: write master file: %v", ErrIO, err)
	}
	return nil
}

// LoadEntries reads the vault file as one blob, decrypts it keyed by masterHash
// and parses the records.
func (s *FileStore) LoadEntries(masterHash string) (map[string]*domain.Entry, error) {
	blob, err := s.readVault()
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return make(map[string]*domain.Entry), nil
	}

	plain, err := vault.Decrypt(blob, masterHash)
	if err != nil {
		return nil, err
	}

	entries, dropped := UnmarshalRecords(plain)
	if dropped > 0 {
		s.logger.Debug("dropped malformed vault records", "count", dropped)
	}
	return entries, nil
}

// SaveEntries serializes every entry, encrypts the result keyed by masterHash
// and replaces the vault file.
func (s *FileStore) SaveEntries(entries map[string]*domain.Entry, masterHash string) error {
	blob := vault.Encrypt(MarshalRecords(entries), masterHash)
	return s.writeVault(blob, "save")
}

// HasVault reports whether a vault file exists
func (s *FileStore) HasVault() bool {
	_, err := os.Stat(s.vaultPath)
	return err == nil
}

// RestoreSnapshot replaces the vault file with journal snapshot seq.
// The snapshot must decrypt under masterHash.
func (s *FileStore) RestoreSnapshot(seq uint64, masterHash string) error {
	if s.journal == nil {
		return ErrJournalClosed
	}
	blob, err := s.journal.LoadSnapshot(seq)
	if err != nil {
		return err
	}
	if _, err := vault.Decrypt(blob, masterHash); err != nil {
		return ErrForeignSnapshot
	}
	return s.writeVault(blob, fmt.Sprintf("restore %d", seq))
}

// CheckPermissions tightens the data files to owner-only access
func (s *FileStore) CheckPermissions() error {
	for _, p := range []string{s.masterPath, s.vaultPath} {
		if err := EnsureFilePermissions(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	return nil
}

func (s *FileStore) readVault() ([]byte, error) {
	blob, err := os.ReadFile(s.vaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read vault file: %v", ErrIO, err)
	}
	return blob, nil
}

func (s *FileStore) writeVault(blob []byte, reason string) error {
	if s.journal != nil {
		s.snapshotCurrent(reason)
	}
	if err := AtomicWriteFile(s.vaultPath, blob); err != nil {
		return fmt.Errorf("%w: write vault file: %v", ErrIO, err)
	}
	return nil
}

// snapshotCurrent keeps the vault file about to be replaced. Failures only warn.
func (s *FileStore) snapshotCurrent(reason string) {
	prev, err := s.readVault()
	if err != nil || len(prev) == 0 {
		return
	}
	snap, err := s.journal.RecordSnapshot("before "+reason, prev)
	if err != nil {
		s.logger.Warn("failed to snapshot vault file", "error", err)
		return
	}
	s.logger.Debug("vault snapshot recorded", "seq", snap.Seq, "digest", snap.Digest)

	if s.historyLimit > 0 {
		if _, err := s.journal.Prune(s.historyLimit); err != nil {
			s.logger.Warn("failed to prune snapshots", "error", err)
		}
	}
}
