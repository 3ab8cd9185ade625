// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import (
	"fmt"
	"strings"
)

// Button is the 4-bit function code carried in every frame
type Button uint8

// Jarolift button codes
const (
	ButtonDown  Button = 0x2
	ButtonStop  Button = 0x4
	ButtonUp    Button = 0x8
	ButtonLearn Button = 0xA
)

// String returns the human-readable name for a button code
func (b Button) String() string {
	switch b {
	case ButtonDown:
		return "DOWN"
	case ButtonStop:
		return "STOP"
	case ButtonUp:
		return "UP"
	case ButtonLearn:
		return "LEARN"
	default:
		return fmt.Sprintf("BUTTON_0x%X", uint8(b))
	}
}

// Valid reports whether the code fits the 4-bit button field
func (b Button) Valid() bool {
	return b <= 0xF
}

// ParseButton resolves a button by name (up, open, down, close, stop, learn)
func ParseButton(name string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "down", "close":
		return ButtonDown, nil
	case "stop":
		return ButtonStop, nil
	case "up", "open":
		return ButtonUp, nil
	case "learn":
		return ButtonLearn, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}
