// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package counter persists the KeeLoq rolling counter of each device serial.
//
// Stores are not safe for concurrent writers on the same serial; the
// sequencer serializes every read-modify-write under its burst lock.
package counter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrStorage wraps every failure to persist a counter
var ErrStorage = errors.New("counter storage error")

// Store reads and writes the rolling counter of a device serial.
// Read returns 0 with a nil error when no counter was ever written.
type Store interface {
	Read(serial uint32) (uint32, error)
	Write(serial uint32, value uint32) error
}

// Name returns the record name of a serial: lowercase hex with 0x prefix
func Name(serial uint32) string {
	return fmt.Sprintf("%#x", serial)
}

// parseValue parses a stored decimal counter
func parseValue(data []byte) (uint32, error) {
	// only the first line counts
	text, _, _ := strings.Cut(string(data), "\n")
	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid counter value %q: %w", text, err)
	}
	return uint32(v), nil
}

// formatValue renders a counter as decimal ASCII without trailing newline
func formatValue(v uint32) []byte {
	return []byte(strconv.FormatUint(uint64(v), 10))
}
