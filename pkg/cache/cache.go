// Package cache implements the opaque persisted Cache interface (§6)
// over go.etcd.io/bbolt: serialized symbol tables for known but
// unopened documents, keyed by a hash of their URI.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned by Read when key has no cached entry. Callers
// treat this as a cache miss, not an I/O error (§7 "Cache I/O error").
var ErrNotFound = errors.New("cache: not found")

var (
	bucketDocuments = []byte("documents")
	bucketMeta      = []byte("meta")
)

// BoltCache persists opaque JSON-like values keyed by URI hash.
type BoltCache struct {
	db *bolt.DB
}

// New opens (creating if absent) the bbolt database at path. Callers
// must still call Init before using the cache.
func New(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltCache{db: db}, nil
}

// Init creates the cache's buckets and brings its schema up to date
// (§6 "init() -> future").
func (c *BoltCache) Init() error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDocuments, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return runMigrations(c.db)
}

// Close releases the underlying database file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// Read returns the JSON-decoded value stored under key, or ErrNotFound
// if no entry exists (§6 "read(key) -> future<any>").
func (c *BoltCache) Read(key string) (any, error) {
	var data []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b == nil {
			return nil
		}
		if v := b.Get(hashKey(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding cache entry for %q: %w", key, err)
	}
	return value, nil
}

// Write serializes value as JSON and stores it under key (§6
// "write(key, value)").
func (c *BoltCache) Write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache entry for %q: %w", key, err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b == nil {
			return fmt.Errorf("documents bucket not found")
		}
		return b.Put(hashKey(key), data)
	})
}

// Delete removes key's entry, if any (§6 "delete(key)").
func (c *BoltCache) Delete(key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b == nil {
			return nil
		}
		return b.Delete(hashKey(key))
	})
}

// hashKey turns an opaque cache key (typically a document URI) into the
// fixed-width digest used as the bbolt key (§6 "Cache entries are keyed
// by URI hash").
func hashKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
