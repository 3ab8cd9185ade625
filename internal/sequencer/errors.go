// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sequencer

import (
	"errors"
	"fmt"
)

// Error categories
var (
	ErrTransmit       = errors.New("transmit failed")
	ErrInvalidRequest = errors.New("invalid request")
)

// TransmitError records which step of a burst the transmitter rejected
type TransmitError struct {
	Command Command
	Step    int
	Counter uint32
	Err     error
}

// Error implements the error interface
func (e *TransmitError) Error() string {
	return fmt.Sprintf("%s: step %d (counter %d): %v", e.Command, e.Step, e.Counter, e.Err)
}

// Unwrap exposes both ErrTransmit and the transmitter's own error
func (e *TransmitError) Unwrap() []error {
	return []error{ErrTransmit, e.Err}
}
