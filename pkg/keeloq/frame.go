// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import "errors"

// ErrSerialMismatch is returned when a decrypted frame does not carry the
// low byte of its own serial, i.e. the wrong manufacturer key was used.
var ErrSerialMismatch = errors.New("decrypted serial byte does not match frame serial")

// Frame is the 72-bit Jarolift command frame.
//
//	bits  0-31  KeeLoq encrypted block
//	bits 32-59  device serial
//	bits 60-63  button code
//	bits 64-71  group high byte
type Frame struct {
	Encrypted uint32
	Serial    uint32
	Button    Button
	GroupHigh uint8
	Hold      bool // carried by the transport header, not the frame bits
}

// Plaintext is the decrypted content of a frame's KeeLoq block
type Plaintext struct {
	Counter   uint16
	SerialLow uint8
	GroupLow  uint8
}

// Block packs the plaintext into the 32-bit block that gets encrypted
func (p Plaintext) Block() uint32 {
	return uint32(p.Counter) | uint32(p.SerialLow)<<16 | uint32(p.GroupLow)<<24
}

// plaintextFromBlock unpacks a decrypted 32-bit block
func plaintextFromBlock(block uint32) Plaintext {
	return Plaintext{
		Counter:   uint16(block),
		SerialLow: uint8(block >> 16),
		GroupLow:  uint8(block >> 24),
	}
}

// NewFrame builds and encrypts a command frame for one transmission
func NewFrame(group uint16, serial uint32, button Button, counter uint16, mk ManufacturerKey, hold bool) Frame {
	deviceKey := DeriveDeviceKey(serial, mk)
	pt := Plaintext{
		Counter:   counter,
		SerialLow: uint8(serial),
		GroupLow:  uint8(group),
	}
	return Frame{
		Encrypted: deviceKey.Encrypt(pt.Block()),
		Serial:    serial & serialMask,
		Button:    button & 0x0F,
		GroupHigh: uint8(group >> 8),
		Hold:      hold,
	}
}

// Group returns the full group value given the decrypted low byte
func (f Frame) Group(pt Plaintext) uint16 {
	return uint16(f.GroupHigh)<<8 | uint16(pt.GroupLow)
}

// Decrypt recovers the plaintext block using the manufacturer key
func (f Frame) Decrypt(mk ManufacturerKey) (Plaintext, error) {
	deviceKey := DeriveDeviceKey(f.Serial, mk)
	pt := plaintextFromBlock(deviceKey.Decrypt(f.Encrypted))
	if pt.SerialLow != uint8(f.Serial) {
		return pt, ErrSerialMismatch
	}
	return pt, nil
}

// Value returns the frame as a 72-bit integer split into the low 64 bits and
// the high 8 bits
func (f Frame) Value() (lo uint64, hi uint8) {
	lo = uint64(f.Encrypted) |
		uint64(f.Serial&serialMask)<<32 |
		uint64(f.Button&0x0F)<<60
	return lo, f.GroupHigh
}

// Bits renders the frame least-significant bit first
func (f Frame) Bits() [FrameBits]byte {
	var bits [FrameBits]byte
	lo, hi := f.Value()
	for i := 0; i < 64; i++ {
		bits[i] = byte(lo>>uint(i)) & 0x01
	}
	for i := 0; i < 8; i++ {
		bits[64+i] = (hi >> uint(i)) & 0x01
	}
	return bits
}

// frameFromBits is the inverse of Bits
func frameFromBits(bits [FrameBits]byte, hold bool) Frame {
	var lo uint64
	var hi uint8
	for i := 0; i < 64; i++ {
		lo |= uint64(bits[i]&0x01) << uint(i)
	}
	for i := 0; i < 8; i++ {
		hi |= (bits[64+i] & 0x01) << uint(i)
	}
	return Frame{
		Encrypted: uint32(lo),
		Serial:    uint32(lo>>32) & serialMask,
		Button:    Button(lo >> 60),
		GroupHigh: hi,
		Hold:      hold,
	}
}
