// Package domain defines the core data structures shared by the password manager.
// It contains the stored records, the master credential and the journal records.
package domain

import (
	"strings"
	"time"
)

// Entry represents one stored credential record.
// Service keeps its original case and is the record's identity.
type Entry struct {
	Service           string `json:"service"`
	Username          string `json:"username"`
	EncryptedPassword string `json:"encrypted_password"` // hex, sealed with the master hash
	ServiceLink       string `json:"service_link,omitempty"`
	Salt              string `json:"salt"` // stored for format compatibility, not used as a key
}

// Clone returns a copy of the entry
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// NormalizedService returns the lookup key used for case-insensitive matching
func NormalizedService(service string) string {
	return strings.ToLower(service)
}

// MasterCredential is the hash and salt that gate access to the vault
type MasterCredential struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

// IsZero reports whether the credential has not been set
func (m MasterCredential) IsZero() bool {
	return m.Hash == "" || m.Salt == ""
}

// Operation types recorded in the audit log
const (
	OpInitialize   = "initialize"
	OpAdd          = "add"
	OpUpdate       = "update"
	OpRemove       = "remove"
	OpChangeMaster = "change_master"
	OpRestore      = "restore"
	OpImport       = "import"
	OpExport       = "export"
)

// Operation represents an audit log operation
type Operation struct {
	ID        string    `cbor:"1,keyasint" json:"id"`
	Type      string    `cbor:"2,keyasint" json:"type"`
	Service   string    `cbor:"3,keyasint,omitempty" json:"service,omitempty"`
	Timestamp time.Time `cbor:"4,keyasint" json:"timestamp"`
	Success   bool      `cbor:"5,keyasint" json:"success"`
	Detail    string    `cbor:"6,keyasint,omitempty" json:"detail,omitempty"`
}

// Snapshot describes a previous vault file blob kept in the journal
type Snapshot struct {
	Seq     uint64    `cbor:"1,keyasint" json:"seq"`
	TakenAt time.Time `cbor:"2,keyasint" json:"taken_at"`
	Reason  string    `cbor:"3,keyasint" json:"reason"`
	Size    int       `cbor:"4,keyasint" json:"size"`
	Digest  string    `cbor:"5,keyasint" json:"digest"` // BLAKE3, hex
}
