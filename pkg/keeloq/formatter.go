// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable string.
// pt may be nil when the manufacturer key is unknown.
func FormatFrame(f Frame, pt *Plaintext) string {
	var s strings.Builder

	mode := "normal"
	if f.Hold {
		mode = "hold"
	}
	s.WriteString(fmt.Sprintf("%s (0x%X) serial=0x%07X %s\n", f.Button, uint8(f.Button), f.Serial, mode))
	s.WriteString(fmt.Sprintf("  Encrypted: 0x%08X\n", f.Encrypted))

	if pt == nil {
		s.WriteString(fmt.Sprintf("  Group High: 0x%02X\n", f.GroupHigh))
		return s.String()
	}

	s.WriteString(fmt.Sprintf("  Group: 0x%04X\n", f.Group(*pt)))
	s.WriteString(fmt.Sprintf("  Counter: %d\n", pt.Counter))
	return s.String()
}

// FormatBits renders the frame bit string in transmission order
func FormatBits(f Frame) string {
	bits := f.Bits()
	var s strings.Builder
	for i, bit := range bits {
		if i > 0 && i%8 == 0 {
			s.WriteByte(' ')
		}
		s.WriteByte('0' + bit)
	}
	return s.String()
}
