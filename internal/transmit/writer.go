// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transmit

import (
	"fmt"
	"io"

	"github.com/Thermoquad/jarolift/internal/syncutil"
)

// Writer writes one envelope per line, for dry runs and piping into
// other tooling
type Writer struct {
	mu syncutil.Mutex
	w  io.Writer
}

// NewWriter creates a line transmitter on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Transmit writes the envelope followed by a newline
func (t *Writer) Transmit(envelope string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.w, envelope+"\n"); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
