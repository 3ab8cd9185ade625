// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import "fmt"

// Decoder implements the bridge packet decoder state machine
type Decoder struct {
	state      int
	buffer     []byte
	length     int
	crc        uint16
	escapeNext bool
}

// NewDecoder creates a new bridge decoder
func NewDecoder() *Decoder {
	return &Decoder{
		state:  stateIdle,
		buffer: make([]byte, 0, MaxPacketSize),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
	d.length = 0
	d.crc = 0
	d.escapeNext = false
}

// DecodeByte processes a single byte through the decoder state machine
// Returns a completed message, or nil if the packet is incomplete
// Returns an error if decoding fails
func (d *Decoder) DecodeByte(b byte) (*Message, error) {
	if b == EscByte && !d.escapeNext {
		d.escapeNext = true
		return nil, nil
	}

	escaped := d.escapeNext
	if escaped {
		b ^= EscXor
		d.escapeNext = false
	}

	if !escaped && b == StartByte {
		d.Reset()
		d.state = stateLengthHigh
		return nil, nil
	}

	if !escaped && b == EndByte {
		if d.state != stateEnd {
			state := d.state
			d.Reset()
			return nil, fmt.Errorf("unexpected END byte in state %d", state)
		}

		calculated := CalculateCRC(d.buffer)
		if d.crc != calculated {
			err := fmt.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", calculated, d.crc)
			d.Reset()
			return nil, err
		}

		msg, err := parseCBOR(d.buffer[LengthSize:])
		d.Reset()
		if err != nil {
			return nil, err
		}
		return msg, nil
	}

	switch d.state {
	case stateIdle:
		// Waiting for START byte
		return nil, nil

	case stateLengthHigh:
		d.buffer = append(d.buffer, b)
		d.length = int(b) << 8
		d.state = stateLengthLow
		return nil, nil

	case stateLengthLow:
		d.buffer = append(d.buffer, b)
		d.length |= int(b)
		if d.length == 0 || d.length > MaxPayloadSize {
			length := d.length
			d.Reset()
			return nil, fmt.Errorf("invalid length: %d (max %d)", length, MaxPayloadSize)
		}
		d.state = statePayload
		return nil, nil

	case statePayload:
		d.buffer = append(d.buffer, b)
		if len(d.buffer)-LengthSize >= d.length {
			d.state = stateCRC1
		}
		return nil, nil

	case stateCRC1:
		d.crc = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.crc |= uint16(b)
		// Wait for END byte
		d.state = stateEnd
		return nil, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("unexpected byte 0x%02X after CRC", b)
	}
}
