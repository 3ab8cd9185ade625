// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build !deadlock

// Package syncutil provides the mutex guarding RF bursts.
// By default it is a plain sync.Mutex. Build with -tags=deadlock to swap in
// github.com/sasha-s/go-deadlock, which reports lock-order inversions and
// locks held for too long.
package syncutil

import "sync"

// Mutex wraps sync.Mutex. Build with -tags=deadlock for deadlock detection.
type Mutex struct {
	sync.Mutex
}
