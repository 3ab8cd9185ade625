// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build deadlock

// Package syncutil provides the mutex guarding RF bursts.
// This file is compiled when building with -tags=deadlock.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

func init() {
	// A clear burst legitimately holds the lock for several seconds
	deadlock.Opts.DeadlockTimeout = 2 * time.Minute
}

// Mutex wraps deadlock.Mutex for deadlock detection.
type Mutex struct {
	deadlock.Mutex
}
