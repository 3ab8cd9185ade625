// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import "encoding/base64"

// Build assembles, encrypts and encodes one command into transport text
func Build(group uint16, serial uint32, button Button, counter uint16, mk ManufacturerKey, hold bool) string {
	return EncodeFrame(NewFrame(group, serial, button, counter, mk, hold))
}

// EncodeFrame renders a frame as "b64:" transport text.
// Layout: header (type, mode, payload length, reserved) | preamble | 72 bit symbols
func EncodeFrame(f Frame) string {
	return EnvelopePrefix + base64.StdEncoding.EncodeToString(EncodeFrameBytes(f))
}

// EncodeFrameBytes returns the raw (pre-base64) envelope bytes
func EncodeFrameBytes(f Frame) []byte {
	raw := make([]byte, 0, EnvelopeRawBytes)

	mode := byte(headerNormal)
	if f.Hold {
		mode = headerHold
	}
	raw = append(raw, headerType, mode, byte(PayloadSize), headerReserved)
	raw = append(raw, preamble[:]...)

	bits := f.Bits()
	for i, bit := range bits {
		if i == len(bits)-1 {
			if bit == 1 {
				raw = append(raw, symbolLastOne[:]...)
			} else {
				raw = append(raw, symbolLastZero[:]...)
			}
			break
		}
		if bit == 1 {
			raw = append(raw, symbolOne[:]...)
		} else {
			raw = append(raw, symbolZero[:]...)
		}
	}

	return raw
}
