// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Jarolift - KeeLoq rolling-code remote for Jarolift covers
//
// Builds encrypted button commands, persists rolling counters and hands the
// resulting envelopes to an RF bridge.

package main

import (
	"os"

	"github.com/Thermoquad/jarolift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
