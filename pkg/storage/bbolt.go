package storage

import (
	"bytes"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// MaxKeySize is the longest key a bbolt bucket accepts.
const MaxKeySize = bolt.MaxKeySize

// BboltBackend implements Backend using bbolt
type BboltBackend struct {
	db   *bolt.DB
	path string
}

// NewBboltBackend opens (or creates) a bbolt database at dbPath.
//
// Scratch databases pass scratch=true: fsync is skipped, since the file never
// outlives the run that created it.
func NewBboltBackend(dbPath string, scratch bool) (*BboltBackend, error) {
	opts := &bolt.Options{
		Timeout:        time.Second,
		NoSync:         scratch,
		NoFreelistSync: scratch,
	}

	db, err := bolt.Open(dbPath, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	return &BboltBackend{db: db, path: dbPath}, nil
}

// Path returns the database file path
func (b *BboltBackend) Path() string {
	return b.path
}

func (b *BboltBackend) Update(fn func(tx Transaction) error) error {
	return b.db.Update(func(boltTx *bolt.Tx) error {
		return fn(bboltTransaction{tx: boltTx})
	})
}

func (b *BboltBackend) View(fn func(tx Transaction) error) error {
	return b.db.View(func(boltTx *bolt.Tx) error {
		return fn(bboltTransaction{tx: boltTx})
	})
}

func (b *BboltBackend) Close() error {
	return b.db.Close()
}

type bboltTransaction struct {
	tx *bolt.Tx
}

func (t bboltTransaction) CreateBucket(name []byte) error {
	_, err := t.tx.CreateBucketIfNotExists(name)
	return err
}

func (t bboltTransaction) Bucket(name []byte) Bucket {
	bkt := t.tx.Bucket(name)
	if bkt == nil {
		return nil
	}
	return bboltBucket{bkt}
}

type bboltBucket struct {
	*bolt.Bucket
}

func (b bboltBucket) ForEachPrefix(prefix []byte, fn func(k, v []byte) error) error {
	c := b.Cursor()

	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}

	return nil
}
