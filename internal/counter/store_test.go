// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package counter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serialA = 0x106AA01
	serialB = 0x106AA02
)

// stores returns every Store implementation backed by a fresh temp dir
func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := OpenBoltStore(filepath.Join(dir, "counters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "counter_")),
		"bolt":   bolt,
		"memory": NewMemoryStore(),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			v, err := s.Read(serialA)
			require.NoError(t, err)
			assert.Equal(t, uint32(0), v, "never-written serial starts at 0")

			for _, want := range []uint32{1, 2, 100} {
				require.NoError(t, s.Write(serialA, want))
				got, err := s.Read(serialA)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestStore_IndependentSerials(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(serialA, 10))
			require.NoError(t, s.Write(serialB, 20))

			a, err := s.Read(serialA)
			require.NoError(t, err)
			b, err := s.Read(serialB)
			require.NoError(t, err)

			assert.Equal(t, uint32(10), a)
			assert.Equal(t, uint32(20), b)
		})
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "0x106aa01", Name(0x106AA01))
	assert.Equal(t, "0x0", Name(0))
}

func TestFileStore_Layout(t *testing.T) {
	base := filepath.Join(t.TempDir(), "counter_")
	s := NewFileStore(base)

	require.NoError(t, s.Write(serialA, 42))

	path := base + "0x106aa01.txt"
	assert.Equal(t, path, s.Path(serialA))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42", string(data), "decimal ASCII, no trailing newline")

	matches, err := filepath.Glob(base + "*.tmp")
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are renamed away")
}

func TestFileStore_ReadsHandWrittenFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "counter_")
	require.NoError(t, os.WriteFile(base+"0x106aa01.txt", []byte("17\n"), 0o644))

	v, err := NewFileStore(base).Read(serialA)
	require.NoError(t, err)
	assert.Equal(t, uint32(17), v)
}

func TestFileStore_CorruptFileReadsZero(t *testing.T) {
	base := filepath.Join(t.TempDir(), "counter_")
	require.NoError(t, os.WriteFile(base+"0x106aa01.txt", []byte("garbage"), 0o644))

	v, err := NewFileStore(base).Read(serialA)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestFileStore_WriteFailure(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", "dir", "counter_"))
	err := s.Write(serialA, 1)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(serialA, 99))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Read(serialA)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), v)
}

func TestMemoryStore_FailWrites(t *testing.T) {
	s := NewMemoryStore()
	s.FailWrites(ErrStorage)
	assert.ErrorIs(t, s.Write(serialA, 1), ErrStorage)

	s.FailWrites(nil)
	require.NoError(t, s.Write(serialA, 1))
	v, _ := s.Read(serialA)
	assert.Equal(t, uint32(1), v)
}
