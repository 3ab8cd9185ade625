// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package counter

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("counters")

// BoltStore keeps all counters in a single bbolt database file.
// Keys are the same "0x<hex>" names FileStore uses, values decimal ASCII.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) a bbolt counter database
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bucket: %v", ErrStorage, err)
	}

	return &BoltStore{db: db}, nil
}

// Read returns the stored counter, 0 when absent
func (s *BoltStore) Read(serial uint32) (uint32, error) {
	var value uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(Name(serial)))
		if data == nil {
			return nil
		}
		v, err := parseValue(data)
		if err != nil {
			// corrupt records restart from 0, same as FileStore
			return nil
		}
		value = v
		return nil
	})
	if err != nil {
		return 0, nil
	}
	return value, nil
}

// Write stores the counter of a serial
func (s *BoltStore) Write(serial uint32, value uint32) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(Name(serial)), formatValue(value))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Close releases the database file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}
