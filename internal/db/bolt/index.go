package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/menurank/internal/db"
)

// CreateIndex stores the definition. Documents under its prefixes become searchable immediately.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndexes)
		if b.Get([]byte(def.Name)) != nil {
			return db.ErrIndexExists
		}
		return b.Put([]byte(def.Name), data)
	})
	if errors.Is(err, db.ErrIndexExists) {
		return err
	}
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes the definition. Documents are left in place.
func (s *Store) DropIndex(_ context.Context, name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndexes)
		if b.Get([]byte(name)) == nil {
			return db.ErrIndexNotFound
		}
		return b.Delete([]byte(name))
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return err
	}
	if err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether a definition is stored under name.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	exists := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketIndexes).Get([]byte(name)) != nil
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return exists, nil
}

// SearchCount counts the hashes under the index's prefixes.
func (s *Store) SearchCount(_ context.Context, index string) (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		def, err := loadIndex(tx, index)
		if err != nil {
			return err
		}
		return forEachPrefixed(tx, def.Prefixes, func(_, _ []byte) error {
			count++
			return nil
		})
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return 0, err
	}
	if err != nil {
		return 0, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return count, nil
}

func loadIndex(tx *bbolt.Tx, name string) (*db.IndexDefinition, error) {
	data := tx.Bucket(bucketIndexes).Get([]byte(name))
	if data == nil {
		return nil, db.ErrIndexNotFound
	}
	var def db.IndexDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// forEachPrefixed visits every hash whose key starts with one of prefixes.
// Overlapping prefixes are not de-duplicated.
func forEachPrefixed(tx *bbolt.Tx, prefixes []string, fn func(k, v []byte) error) error {
	c := tx.Bucket(bucketHashes).Cursor()
	for _, p := range prefixes {
		prefix := []byte(p)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if err := fn(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
