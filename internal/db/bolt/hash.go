package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/menurank/internal/db"
)

// Hash values are stored as []byte so binary vector blobs survive JSON encoding.
type storedHash map[string][]byte

func encodeHash(fields map[string]string) ([]byte, error) {
	h := make(storedHash, len(fields))
	for k, v := range fields {
		h[k] = []byte(v)
	}
	return json.Marshal(h)
}

func decodeHash(data []byte) (map[string]string, error) {
	var h storedHash
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = string(v)
	}
	return out, nil
}

// HSetMulti merges fields into each hash in one write transaction.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketHashes)
		for _, item := range items {
			fields := make(map[string]string, len(item.Fields))
			if existing := b.Get([]byte(item.Key)); existing != nil {
				prev, err := decodeHash(existing)
				if err != nil {
					return fmt.Errorf("key %s: %w", item.Key, err)
				}
				fields = prev
			}
			for k, v := range item.Fields {
				fields[k] = v
			}
			data, err := encodeHash(fields)
			if err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
			if err := b.Put([]byte(item.Key), data); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	var out map[string]string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketHashes).Get([]byte(key))
		if data == nil {
			return db.ErrKeyNotFound
		}
		var err error
		out, err = decodeHash(data)
		return err
	})
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// Del removes keys from both the hash and the KV buckets.
func (s *Store) Del(_ context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketHashes, bucketKV} {
			b := tx.Bucket(bucket)
			for _, key := range keys {
				if err := b.Delete([]byte(key)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Scan returns every hash or KV key matching a glob pattern.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, &db.Error{Op: db.OpScan, Err: fmt.Errorf("invalid pattern %q", pattern)}
	}
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketHashes, bucketKV} {
			err := tx.Bucket(bucket).ForEach(func(k, _ []byte) error {
				// Keys contain ':' not '/', so '*' spans the whole key like SCAN MATCH.
				if ok, _ := doublestar.Match(pattern, string(k)); ok {
					keys = append(keys, string(k))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}
