// Package passman owns the master credential and the in-memory entry collection.
// A Manager authenticates the master password, performs entry CRUD with
// case-insensitive service lookup, and rotates the master password with rollback.
//
// A Manager is not safe for concurrent use.
package passman

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/secureshell/passman/internal/crypto"
	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/store"
	"github.com/secureshell/passman/internal/vault"
)

var (
	// ErrAuthFailed is returned when the master password does not match
	ErrAuthFailed = vault.ErrAuthFailed
	// ErrNotFound is returned when no entry matches a service name
	ErrNotFound = errors.New("entry not found")
	// ErrNoMaster is returned when an operation needs a master password that was never set
	ErrNoMaster = errors.New("master password is not set")
	// ErrEmptyPassword is returned for an empty master or entry password
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrInvalidField is returned when a value would break the record format
	ErrInvalidField = errors.New("field cannot contain '|' or newlines")
)

// Auditor receives a record of every mutating operation
type Auditor interface {
	LogOperation(op *domain.Operation) error
}

// Manager is the vault manager
type Manager struct {
	store      store.EntryStore
	auditor    Auditor
	logger     *slog.Logger
	saltLength int

	master  domain.MasterCredential
	entries map[string]*domain.Entry
	// lowercase service -> canonical key
	index map[string]string
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithAuditor records mutations to a
func WithAuditor(a Auditor) Option {
	return func(m *Manager) {
		m.auditor = a
	}
}

// WithSaltLength sets the length of generated master and entry salts
func WithSaltLength(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.saltLength = n
		}
	}
}

// New creates a Manager backed by s. Call Load before using it.
func New(s store.EntryStore, opts ...Option) *Manager {
	m := &Manager{
		store:      s,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		saltLength: crypto.DefaultSaltLength,
		entries:    make(map[string]*domain.Entry),
		index:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the master credential and, when one exists, the entries sealed under it.
func (m *Manager) Load() error {
	cred, ok, err := m.store.LoadMaster()
	if err != nil {
		return fmt.Errorf("failed to load master credential: %w", err)
	}
	if !ok {
		m.master = domain.MasterCredential{}
		m.setEntries(make(map[string]*domain.Entry))
		return nil
	}

	entries, err := m.store.LoadEntries(cred.Hash)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	m.master = cred
	m.setEntries(entries)
	m.logger.Debug("vault loaded", "entries", len(entries))
	return nil
}

// HasMasterPassword reports whether a master credential is loaded
func (m *Manager) HasMasterPassword() bool {
	return !m.master.IsZero()
}

// MasterCredential returns the loaded credential
func (m *Manager) MasterCredential() domain.MasterCredential {
	return m.master
}

// Initialize sets a new master password. It does not guard against replacing an
// existing one; callers check HasMasterPassword first.
func (m *Manager) Initialize(masterPassword string) (err error) {
	defer func() { m.audit(domain.OpInitialize, "", err) }()

	if masterPassword == "" {
		return ErrEmptyPassword
	}

	salt, err := crypto.GenerateSalt(m.saltLength)
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	cred := domain.MasterCredential{Hash: crypto.CustomHash(masterPassword, salt), Salt: salt}

	entries, err := m.store.LoadEntries(cred.Hash)
	if err != nil {
		return fmt.Errorf("failed to load entries under new master password: %w", err)
	}
	if err := m.store.SaveMaster(cred); err != nil {
		return fmt.Errorf("failed to save master credential: %w", err)
	}

	m.master = cred
	m.setEntries(entries)
	m.logger.Info("master password initialized")
	return nil
}

// Authenticate reports whether pw is the master password
func (m *Manager) Authenticate(pw string) bool {
	if !m.HasMasterPassword() {
		return false
	}
	return crypto.VerifyHash(pw, m.master.Salt, m.master.Hash)
}

// ChangeMasterPassword replaces the master password and re-seals every entry under it.
// On any failure the previous credential stays in effect, in memory and on disk
// as far as the store allows.
func (m *Manager) ChangeMasterPassword(oldPassword, newPassword string) (err error) {
	defer func() { m.audit(domain.OpChangeMaster, "", err) }()

	if !m.Authenticate(oldPassword) {
		return ErrAuthFailed
	}
	if newPassword == "" {
		return ErrEmptyPassword
	}

	salt, err := crypto.GenerateSalt(m.saltLength)
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	next := domain.MasterCredential{Hash: crypto.CustomHash(newPassword, salt), Salt: salt}

	resealed, err := m.reseal(m.master.Hash, next.Hash)
	if err != nil {
		return err
	}

	prevMaster, prevEntries := m.master, m.entries
	m.master = next
	m.setEntries(resealed)

	if err := m.store.SaveEntries(m.entries, m.master.Hash); err != nil {
		m.master = prevMaster
		m.setEntries(prevEntries)
		return fmt.Errorf("failed to save entries under new master password: %w", err)
	}

	if err := m.store.SaveMaster(m.master); err != nil {
		m.master = prevMaster
		m.setEntries(prevEntries)
		if restoreErr := m.store.SaveEntries(m.entries, m.master.Hash); restoreErr != nil {
			m.logger.Error("failed to restore vault under previous master password", "error", restoreErr)
		}
		return fmt.Errorf("failed to save master credential: %w", err)
	}

	m.logger.Info("master password changed", "entries", len(m.entries))
	return nil
}

// reseal opens every entry password with oldKey and seals it with newKey
func (m *Manager) reseal(oldKey, newKey string) (map[string]*domain.Entry, error) {
	out := make(map[string]*domain.Entry, len(m.entries))
	for k, e := range m.entries {
		plain, err := crypto.OpenPassword(e.EncryptedPassword, oldKey)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", k, err)
		}
		c := e.Clone()
		c.EncryptedPassword = crypto.SealPassword(plain, newKey)
		out[k] = c
	}
	return out, nil
}

// EntryOption sets optional entry fields
type EntryOption func(*domain.Entry)

// WithServiceLink sets the entry's link
func WithServiceLink(link string) EntryOption {
	return func(e *domain.Entry) {
		e.ServiceLink = link
	}
}

// AddEntry stores a credential under the exact-case service name, replacing any
// entry with the same key, and persists the collection.
func (m *Manager) AddEntry(service, username, password string, opts ...EntryOption) (err error) {
	defer func() { m.audit(domain.OpAdd, service, err) }()
	return m.put(service, username, password, opts)
}

func (m *Manager) put(service, username, password string, opts []EntryOption) error {
	if !m.HasMasterPassword() {
		return ErrNoMaster
	}
	if service == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if password == "" {
		return ErrEmptyPassword
	}

	salt, err := crypto.GenerateSalt(m.saltLength)
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	entry := &domain.Entry{
		Service:           service,
		Username:          username,
		EncryptedPassword: crypto.SealPassword(password, m.master.Hash),
		Salt:              salt,
	}
	for _, opt := range opts {
		opt(entry)
	}
	for _, f := range []string{entry.Service, entry.Username, entry.ServiceLink} {
		if !store.ValidField(f) {
			return ErrInvalidField
		}
	}

	prev, existed := m.entries[service]
	m.entries[service] = entry
	if !existed {
		m.rebuildIndex()
	}

	if err := m.store.SaveEntries(m.entries, m.master.Hash); err != nil {
		if existed {
			m.entries[service] = prev
		} else {
			delete(m.entries, service)
			m.rebuildIndex()
		}
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

// UpdateEntry replaces the entry matching service case-insensitively with a new
// record under its canonical key. Fields are not merged.
func (m *Manager) UpdateEntry(service, username, password string, opts ...EntryOption) (err error) {
	defer func() { m.audit(domain.OpUpdate, service, err) }()

	key, ok := m.lookup(service)
	if !ok {
		return ErrNotFound
	}
	return m.put(key, username, password, opts)
}

// RemoveEntry deletes the entry matching service case-insensitively.
func (m *Manager) RemoveEntry(service string) (err error) {
	defer func() { m.audit(domain.OpRemove, service, err) }()

	key, ok := m.lookup(service)
	if !ok {
		return ErrNotFound
	}

	prev := m.entries[key]
	delete(m.entries, key)
	m.rebuildIndex()

	if err := m.store.SaveEntries(m.entries, m.master.Hash); err != nil {
		m.entries[key] = prev
		m.rebuildIndex()
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

// GetEntry returns a copy of the entry matching service case-insensitively
func (m *Manager) GetEntry(service string) (domain.Entry, error) {
	key, ok := m.lookup(service)
	if !ok {
		return domain.Entry{}, ErrNotFound
	}
	return *m.entries[key], nil
}

// GetPassword returns the plaintext password of the entry matching service
func (m *Manager) GetPassword(service string) (string, error) {
	entry, err := m.GetEntry(service)
	if err != nil {
		return "", err
	}
	return crypto.OpenPassword(entry.EncryptedPassword, m.master.Hash)
}

// ListServices returns the service names in sorted order.
// Callers should not depend on the ordering.
func (m *Manager) ListServices() []string {
	services := make([]string, 0, len(m.entries))
	for k := range m.entries {
		services = append(services, k)
	}
	sort.Strings(services)
	return services
}

// EntryCount returns the number of stored entries
func (m *Manager) EntryCount() int {
	return len(m.entries)
}

// GeneratePassword returns a random password from the vault charset
func (m *Manager) GeneratePassword(length int) (string, error) {
	return crypto.GeneratePassword(length, crypto.CharsetVault)
}

func (m *Manager) setEntries(entries map[string]*domain.Entry) {
	m.entries = entries
	m.rebuildIndex()
}

// rebuildIndex maps each lowercase service to its canonical key. When several keys
// differ only by case the lexically smallest wins, so lookups are deterministic.
func (m *Manager) rebuildIndex() {
	index := make(map[string]string, len(m.entries))
	for k := range m.entries {
		norm := domain.NormalizedService(k)
		if cur, ok := index[norm]; !ok || k < cur {
			index[norm] = k
		}
	}
	m.index = index
}

func (m *Manager) lookup(service string) (string, bool) {
	if _, ok := m.entries[service]; ok {
		return service, true
	}
	key, ok := m.index[domain.NormalizedService(service)]
	return key, ok
}

func (m *Manager) audit(opType, service string, err error) {
	if m.auditor == nil {
		return
	}
	op := &domain.Operation{Type: opType, Service: service, Success: err == nil}
	if err != nil {
		op.Detail = err.Error()
	}
	if logErr := m.auditor.LogOperation(op); logErr != nil {
		m.logger.Warn("failed to write audit record", "operation", opType, "error", logErr)
	}
}
