package store

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/vault"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), DefaultJournalFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_AuditLog(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.LogOperation(&domain.Operation{Type: domain.OpAdd, Service: "GitHub", Success: true}))
	require.NoError(t, j.LogOperation(&domain.Operation{Type: domain.OpRemove, Service: "GitHub", Success: false, Detail: "not found"}))

	ops, err := j.AuditLog()
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, domain.OpAdd, ops[0].Type)
	assert.True(t, ops[0].Success)
	assert.NotEmpty(t, ops[0].ID)
	assert.False(t, ops[0].Timestamp.IsZero())

	assert.Equal(t, domain.OpRemove, ops[1].Type)
	assert.Equal(t, "not found", ops[1].Detail)
	assert.NotEqual(t, ops[0].ID, ops[1].ID)

	assert.Error(t, j.LogOperation(nil))
}

func TestJournal_SnapshotRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	blob := vault.Encrypt(bytes.Repeat([]byte("svc|user|00||salt\n"), 50), "key")

	snap, err := j.RecordSnapshot("before save", blob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, len(blob), snap.Size)
	assert.Equal(t, Digest(blob), snap.Digest)
	assert.Len(t, snap.Digest, 64)

	got, err := j.LoadSnapshot(snap.Seq)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	snaps, err := j.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "before save", snaps[0].Reason)

	_, err = j.LoadSnapshot(99)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestJournal_SnapshotTamperDetected(t *testing.T) {
	j := openTestJournal(t)
	snap, err := j.RecordSnapshot("test", []byte("original blob contents"))
	require.NoError(t, err)

	err = j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(SnapshotDataBucket).Put(seqKey(snap.Seq), compressBlob([]byte("replaced blob contents")))
	})
	require.NoError(t, err)

	_, err = j.LoadSnapshot(snap.Seq)
	assert.True(t, errors.Is(err, ErrSnapshotCorrupted), "LoadSnapshot() error = %v", err)
	assert.ErrorIs(t, j.VerifyIntegrity(), ErrSnapshotCorrupted)
}

func TestJournal_Prune(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 5; i++ {
		_, err := j.RecordSnapshot("save", []byte{byte(i)})
		require.NoError(t, err)
	}

	removed, err := j.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	snaps, err := j.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(4), snaps[0].Seq)
	assert.Equal(t, uint64(5), snaps[1].Seq)

	_, err = j.LoadSnapshot(1)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.NoError(t, j.VerifyIntegrity())
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultJournalFile)

	j, err := OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.LogOperation(&domain.Operation{Type: domain.OpInitialize, Success: true}))
	require.NoError(t, j.Close())

	_, err = j.AuditLog()
	assert.ErrorIs(t, err, ErrJournalClosed)

	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	ops, err := j.AuditLog()
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestFileStore_SnapshotsBeforeOverwrite(t *testing.T) {
	j := openTestJournal(t)
	s := NewFileStore(t.TempDir(), WithJournal(j, 2))
	key := "master-hash"

	entries := testEntries()
	require.NoError(t, s.SaveEntries(entries, key))

	snaps, err := j.Snapshots()
	require.NoError(t, err)
	assert.Empty(t, snaps, "first save has nothing to snapshot")

	delete(entries, "GitHub")
	require.NoError(t, s.SaveEntries(entries, key))
	entries["new"] = &domain.Entry{Service: "new", Salt: "s"}
	require.NoError(t, s.SaveEntries(entries, key))
	delete(entries, "new")
	require.NoError(t, s.SaveEntries(entries, key))

	snaps, err = j.Snapshots()
	require.NoError(t, err)
	assert.Len(t, snaps, 2, "history limit keeps two snapshots")

	// restore the state that still had the "new" entry
	require.NoError(t, s.RestoreSnapshot(snaps[len(snaps)-1].Seq, key))
	loaded, err := s.LoadEntries(key)
	require.NoError(t, err)
	assert.Contains(t, loaded, "new")
	assert.NotContains(t, loaded, "GitHub")
}

func TestFileStore_RestoreForeignSnapshot(t *testing.T) {
	j := openTestJournal(t)
	s := NewFileStore(t.TempDir(), WithJournal(j, 0))

	require.NoError(t, s.SaveEntries(testEntries(), "old-key"))
	require.NoError(t, s.SaveEntries(testEntries(), "new-key"))

	snaps, err := j.Snapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	err = s.RestoreSnapshot(snaps[0].Seq, "new-key")
	assert.ErrorIs(t, err, ErrForeignSnapshot)

	_, err = s.LoadEntries("new-key")
	assert.NoError(t, err, "vault file must be untouched")
}

func TestFileStore_RestoreWithoutJournal(t *testing.T) {
	s := NewFileStore(t.TempDir())
	assert.ErrorIs(t, s.RestoreSnapshot(1, "k"), ErrJournalClosed)
}
