// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package counter

import "sync"

// MemoryStore is a volatile store for tests and dry runs
type MemoryStore struct {
	mu       sync.Mutex
	values   map[uint32]uint32
	writeErr error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[uint32]uint32)}
}

// Read returns the stored counter, 0 when absent
func (s *MemoryStore) Read(serial uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[serial], nil
}

// Write stores the counter, or fails with the error set by FailWrites
func (s *MemoryStore) Write(serial uint32, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.values[serial] = value
	return nil
}

// FailWrites makes subsequent writes return err (nil restores normal writes)
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}
