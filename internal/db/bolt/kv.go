package bolt

import (
	"context"
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/menurank/internal/db"
)

type kvEntry struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"exp,omitempty"` // unix nanos, 0 = never
}

func (s *Store) live(data []byte) (kvEntry, bool) {
	if data == nil {
		return kvEntry{}, false
	}
	var e kvEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return kvEntry{}, false
	}
	if e.ExpiresAt != 0 && s.now().UnixNano() >= e.ExpiresAt {
		return kvEntry{}, false
	}
	return e, true
}

func (s *Store) put(b *bbolt.Bucket, key string, value []byte, ttl time.Duration) error {
	e := kvEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl).UnixNano()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		e, ok := s.live(tx.Bucket(bucketKV).Get([]byte(key)))
		if !ok {
			return db.ErrKeyNotFound
		}
		out = e.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that reads as missing once ttl elapses.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return s.put(tx.Bucket(bucketKV), key, value, ttl)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetNX stores value only when key is absent.
func (s *Store) SetNX(_ context.Context, key string, value []byte) (bool, error) {
	stored := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if _, ok := s.live(b.Get([]byte(key))); ok {
			return nil
		}
		stored = true
		return s.put(b, key, value, 0)
	})
	if err != nil {
		return false, &db.Error{Op: db.OpSetNX, Err: err}
	}
	return stored, nil
}

// Swap replaces the value inside one write transaction and returns the previous one.
func (s *Store) Swap(_ context.Context, key string, value []byte) ([]byte, error) {
	var prev []byte
	found := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if e, ok := s.live(b.Get([]byte(key))); ok {
			prev, found = e.Value, true
		}
		return s.put(b, key, value, 0)
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpSwap, Err: err}
	}
	if !found {
		return nil, db.ErrKeyNotFound
	}
	return prev, nil
}
