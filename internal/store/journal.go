package store

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/secureshell/passman/internal/domain"
)

// Bucket names
var (
	AuditBucket        = []byte("audit")
	SnapshotsBucket    = []byte("snapshots")
	SnapshotDataBucket = []byte("snapshot_data")
)

// Journal keeps an audit log and previous vault files in a BoltDB database
// next to the vault. It never holds plaintext entries.
type Journal struct {
	db   *bbolt.DB
	path string
}

// OpenJournal opens or creates the journal at path
func OpenJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{AuditBucket, SnapshotsBucket, SnapshotDataBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Warning: failed to close journal: %v", closeErr)
		}
		return nil, err
	}

	return &Journal{db: db, path: path}, nil
}

// Path returns the journal file path
func (j *Journal) Path() string {
	return j.path
}

// Close releases the database
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *Journal) view(fn func(tx *bbolt.Tx) error) error {
	if j == nil || j.db == nil {
		return ErrJournalClosed
	}
	return j.db.View(fn)
}

func (j *Journal) update(fn func(tx *bbolt.Tx) error) error {
	if j == nil || j.db == nil {
		return ErrJournalClosed
	}
	return j.db.Update(fn)
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// LogOperation appends an audit record. ID and Timestamp are filled in when empty.
func (j *Journal) LogOperation(op *domain.Operation) error {
	if op == nil {
		return fmt.Errorf("operation cannot be nil")
	}
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}

	payload, err := marshalRecord(op)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	return j.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(AuditBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate audit sequence: %w", err)
		}
		return bucket.Put(seqKey(seq), payload)
	})
}

// AuditLog returns audit operations in chronological order.
func (j *Journal) AuditLog() ([]*domain.Operation, error) {
	var ops []*domain.Operation
	err := j.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(AuditBucket).ForEach(func(k, v []byte) error {
			var op domain.Operation
			if err := unmarshalRecord(v, &op); err != nil {
				return err
			}
			op.Timestamp = op.Timestamp.UTC()
			ops = append(ops, &op)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// RecordSnapshot stores blob compressed, with its BLAKE3 digest.
func (j *Journal) RecordSnapshot(reason string, blob []byte) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		TakenAt: time.Now().UTC(),
		Reason:  reason,
		Size:    len(blob),
		Digest:  Digest(blob),
	}
	compressed := compressBlob(blob)

	err := j.update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(SnapshotsBucket)
		seq, err := meta.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate snapshot sequence: %w", err)
		}
		snap.Seq = seq

		payload, err := marshalRecord(&snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := meta.Put(seqKey(seq), payload); err != nil {
			return err
		}
		return tx.Bucket(SnapshotDataBucket).Put(seqKey(seq), compressed)
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Snapshots lists stored snapshots, oldest first
func (j *Journal) Snapshots() ([]domain.Snapshot, error) {
	var snaps []domain.Snapshot
	err := j.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(SnapshotsBucket).ForEach(func(k, v []byte) error {
			var snap domain.Snapshot
			if err := unmarshalRecord(v, &snap); err != nil {
				return err
			}
			snap.TakenAt = snap.TakenAt.UTC()
			snaps = append(snaps, snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// LoadSnapshot returns the vault blob stored as snapshot seq after checking its digest
func (j *Journal) LoadSnapshot(seq uint64) ([]byte, error) {
	var (
		snap       domain.Snapshot
		compressed []byte
	)
	err := j.view(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(SnapshotsBucket).Get(seqKey(seq))
		if meta == nil {
			return ErrSnapshotNotFound
		}
		if err := unmarshalRecord(meta, &snap); err != nil {
			return err
		}
		data := tx.Bucket(SnapshotDataBucket).Get(seqKey(seq))
		if data == nil {
			return fmt.Errorf("%w: snapshot %d has no data", ErrSnapshotCorrupted, seq)
		}
		// bbolt memory is only valid inside the transaction
		compressed = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	blob, err := decompressBlob(compressed, snap.Size)
	if err != nil {
		return nil, err
	}
	if Digest(blob) != snap.Digest {
		return nil, fmt.Errorf("%w: digest mismatch for snapshot %d", ErrSnapshotCorrupted, seq)
	}
	return blob, nil
}

// Prune deletes the oldest snapshots so that at most keep remain.
// It returns the number removed.
func (j *Journal) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	removed := 0
	err := j.update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(SnapshotsBucket)
		data := tx.Bucket(SnapshotDataBucket)

		var keys [][]byte
		if err := meta.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}

		for i := 0; i < len(keys)-keep; i++ {
			if err := meta.Delete(keys[i]); err != nil {
				return err
			}
			if err := data.Delete(keys[i]); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// VerifyIntegrity decodes every audit record and checks every snapshot digest.
func (j *Journal) VerifyIntegrity() error {
	if _, err := j.AuditLog(); err != nil {
		return fmt.Errorf("audit log: %w", err)
	}
	snaps, err := j.Snapshots()
	if err != nil {
		return fmt.Errorf("snapshots: %w", err)
	}
	for _, snap := range snaps {
		if _, err := j.LoadSnapshot(snap.Seq); err != nil {
			return err
		}
	}
	return nil
}
