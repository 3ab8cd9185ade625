// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sequencer

import (
	"io"
	"log"
	"os"
)

// defaultLogger writes to stderr when JAROLIFT_DEBUG is set, else discards
func defaultLogger() *log.Logger {
	if os.Getenv("JAROLIFT_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		return log.New(os.Stderr, "jarolift: ", log.LstdFlags|log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}
