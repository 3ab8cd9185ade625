// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package keeloq implements the KeeLoq rolling-code cipher and the Jarolift
// RF packet format.
//
// The package covers the 528-round KeeLoq block cipher, manufacturer-key based
// device key derivation, the 72-bit command frame and its pulse-width line
// encoding into the "b64:" transport text accepted by IR/RF blasters.
package keeloq

// KeeLoq cipher parameters
const (
	NLF    = 0x3A5C742E // non-linear function lookup table
	Rounds = 528
)

// Device key derivation seeds
const (
	seedLowMask  = 0x20000000
	seedHighMask = 0x60000000
)

// Frame layout
const (
	FrameBits  = 72
	serialMask = 0x0FFFFFFF // 28-bit serial field
)

// Line encoding symbols: pulse timings for one bit, the last bit carries the
// trailing sync gap
var (
	symbolOne      = [symbolSize]byte{0x0C, 0x19}
	symbolZero     = [symbolSize]byte{0x19, 0x0C}
	symbolLastOne  = [lastSymbolSize]byte{0x0C, 0x00, 0x05, 0xDC}
	symbolLastZero = [lastSymbolSize]byte{0x19, 0x00, 0x05, 0xDC}
)

const (
	symbolSize     = 2
	lastSymbolSize = 4
)

// preamble is the RF training/sync pattern sent ahead of every frame
var preamble = [...]byte{
	0x19, 0x0C, 0x1A, 0x00, 0x01, 0xE4, 0x31, 0x0C,
	0x0D, 0x0C, 0x0D, 0x0C, 0x0D, 0x0C, 0x0D, 0x0C,
	0x0D, 0x0C, 0x0D, 0x0C, 0x0D, 0x0C, 0x0D, 0x7A,
}

// Transport header
const (
	headerType       = 0xB2
	headerHold       = 0x14
	headerNormal     = 0x00
	headerReserved   = 0x00
	HeaderSize       = 4
	EnvelopePrefix   = "b64:"
	PreambleSize     = 24
	PayloadSize      = PreambleSize + (FrameBits-1)*symbolSize + lastSymbolSize
	EnvelopeRawBytes = HeaderSize + PayloadSize
)
