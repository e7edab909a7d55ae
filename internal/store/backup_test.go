package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureshell/passman/internal/vault"
)

// low scrypt cost keeps the tests fast
const testWorkFactor = 10

func TestBackupRoundTrip(t *testing.T) {
	in := &Backup{
		Entries: []BackupRecord{
			{Service: "GitHub", Username: "alice", Password: "hunter2", ServiceLink: "https://github.com"},
			{Service: "example.com", Username: "bob", Password: "p|w\nwith separators"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportBackup(&buf, "backup-pass", testWorkFactor, in))
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Equal(t, BackupVersion, in.Version)

	out, err := ImportBackup(bytes.NewReader(buf.Bytes()), "backup-pass")
	require.NoError(t, err)
	assert.Equal(t, in.Entries, out.Entries)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
}

func TestBackupWrongPassphrase(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportBackup(&buf, "right", testWorkFactor, &Backup{}))

	_, err := ImportBackup(bytes.NewReader(buf.Bytes()), "wrong")
	assert.ErrorIs(t, err, vault.ErrAuthFailed)
}

func TestBackupEmptyPassphrase(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ExportBackup(&buf, "", testWorkFactor, &Backup{}))
}

func TestImportBackupGarbage(t *testing.T) {
	_, err := ImportBackup(bytes.NewReader([]byte("not an age file")), "pw")
	assert.Error(t, err)
}
