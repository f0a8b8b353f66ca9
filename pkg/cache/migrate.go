package cache

import (
	"encoding/binary"
	"fmt"
	"log"

	bolt "go.etcd.io/bbolt"
)

// SchemaVersion is the current schema version for the document cache.
// Bump it and append a migration when the on-disk layout changes.
var SchemaVersion uint64 = 1

type migration struct {
	version     uint64
	description string
	migrate     func(tx *bolt.Tx) error
}

var migrations = []migration{
	{version: 1, description: "baseline schema stamp", migrate: func(tx *bolt.Tx) error { return nil }},
}

const versionKey = "schema_version"

// runMigrations applies pending migrations to db's meta bucket,
// grounded on the teacher's bucket-versioning engine (§6 "Layout is
// opaque"; we still stamp a version so a future layout change can
// detect and migrate old entries).
func runMigrations(db *bolt.DB) error {
	current, err := getSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("cache schema version %d is ahead of binary version %d (downgrade not supported)", current, SchemaVersion)
	}
	if current == SchemaVersion {
		return nil
	}

	var pending []migration
	for _, m := range migrations {
		if m.version > current {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return setSchemaVersion(db, SchemaVersion)
	}

	return db.Update(func(tx *bolt.Tx) error {
		for _, m := range pending {
			log.Printf("cache: applying migration v%d: %s", m.version, m.description)
			if err := m.migrate(tx); err != nil {
				return fmt.Errorf("migration v%d (%s) failed: %w", m.version, m.description, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, SchemaVersion)
		return meta.Put([]byte(versionKey), buf)
	})
}

func getSchemaVersion(db *bolt.DB) (uint64, error) {
	var version uint64
	err := db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		data := meta.Get([]byte(versionKey))
		if data == nil {
			return nil
		}
		if len(data) != 8 {
			return fmt.Errorf("corrupt schema_version: expected 8 bytes, got %d", len(data))
		}
		version = binary.BigEndian.Uint64(data)
		return nil
	})
	return version, err
}

func setSchemaVersion(db *bolt.DB, version uint64) error {
	return db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, version)
		return meta.Put([]byte(versionKey), buf)
	})
}
