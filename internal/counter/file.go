// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package counter

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// FileStore keeps one text file per serial named Base + "0x<hex>" + ".txt".
// Base is a path prefix, not a directory: "/config/counter_" yields
// "/config/counter_0x106aa01.txt".
type FileStore struct {
	Base   string
	Logger *log.Logger // receives unreadable-record warnings, may be nil
}

// NewFileStore creates a file-backed store
func NewFileStore(base string) *FileStore {
	return &FileStore{Base: base}
}

// Path returns the file that holds the counter of a serial
func (s *FileStore) Path(serial uint32) string {
	return s.Base + Name(serial) + ".txt"
}

// Read returns the stored counter, 0 if the file is missing or unreadable
func (s *FileStore) Read(serial uint32) (uint32, error) {
	path := s.Path(serial)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		s.logf("counter: cannot read %s, starting from 0: %v", path, err)
		return 0, nil
	}

	v, err := parseValue(data)
	if err != nil {
		s.logf("counter: %s: %v, starting from 0", path, err)
		return 0, nil
	}
	return v, nil
}

// Write replaces the stored counter atomically via a temp file and rename
func (s *FileStore) Write(serial uint32, value uint32) error {
	path := s.Path(serial)
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(formatValue(value)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrStorage, path, err)
	}
	return nil
}

func (s *FileStore) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
