// Package bolt implements db.Store on a single bbolt file for local, single-process use.
// Vector search is brute force over the index's key prefixes.
package bolt

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/menurank/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var (
	bucketHashes  = []byte("hashes")
	bucketKV      = []byte("kv")
	bucketIndexes = []byte("indexes")
)

// Config holds the database file location.
type Config struct {
	Path    string
	Timeout time.Duration // file lock wait, default 1s
}

// Store implements db.Store on bbolt. Reads run in concurrent read-only transactions.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the database file and its buckets.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketHashes, bucketKV, bucketIndexes} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return &Store{db: bdb, now: time.Now}, nil
}

// Ping checks that the file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := s.db.View(func(*bbolt.Tx) error { return nil }); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the file lock.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an opened file is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}
