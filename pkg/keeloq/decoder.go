// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Envelope decoding errors
var (
	ErrMissingPrefix   = errors.New("envelope is missing the b64: prefix")
	ErrInvalidHeader   = errors.New("invalid envelope header")
	ErrLengthMismatch  = errors.New("envelope payload length mismatch")
	ErrInvalidPreamble = errors.New("invalid preamble")
	ErrInvalidSymbol   = errors.New("invalid bit symbol")
	ErrTruncated       = errors.New("envelope truncated")
	ErrTrailingData    = errors.New("trailing data after frame")
)

// Decoder states
const (
	stateType = iota
	stateMode
	stateLength
	stateReserved
	statePreamble
	stateSymbols
)

// Decoder reverses the line encoding of an envelope one byte at a time
type Decoder struct {
	state    int
	hold     bool
	offset   int // position within preamble or current symbol
	bitIndex int
	symbol   [lastSymbolSize]byte
	bits     [FrameBits]byte
}

// NewDecoder creates a new envelope decoder
func NewDecoder() *Decoder {
	return &Decoder{state: stateType}
}

// Reset returns the decoder to the start of an envelope
func (d *Decoder) Reset() {
	*d = Decoder{state: stateType}
}

// DecodeByte feeds one raw envelope byte through the decoder.
// Returns the frame once the final symbol completes, nil while incomplete.
// The decoder resets itself after an error or a completed frame.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	switch d.state {
	case stateType:
		if b != headerType {
			d.Reset()
			return nil, fmt.Errorf("%w: type 0x%02X", ErrInvalidHeader, b)
		}
		d.state = stateMode
		return nil, nil

	case stateMode:
		switch b {
		case headerNormal:
			d.hold = false
		case headerHold:
			d.hold = true
		default:
			d.Reset()
			return nil, fmt.Errorf("%w: mode 0x%02X", ErrInvalidHeader, b)
		}
		d.state = stateLength
		return nil, nil

	case stateLength:
		if int(b) != PayloadSize {
			d.Reset()
			return nil, fmt.Errorf("%w: header says %d, frame needs %d", ErrLengthMismatch, b, PayloadSize)
		}
		d.state = stateReserved
		return nil, nil

	case stateReserved:
		if b != headerReserved {
			d.Reset()
			return nil, fmt.Errorf("%w: reserved byte 0x%02X", ErrInvalidHeader, b)
		}
		d.state = statePreamble
		d.offset = 0
		return nil, nil

	case statePreamble:
		if b != preamble[d.offset] {
			pos := d.offset
			d.Reset()
			return nil, fmt.Errorf("%w: byte %d is 0x%02X", ErrInvalidPreamble, pos, b)
		}
		d.offset++
		if d.offset == len(preamble) {
			d.state = stateSymbols
			d.offset = 0
			d.bitIndex = 0
		}
		return nil, nil

	case stateSymbols:
		d.symbol[d.offset] = b
		d.offset++

		last := d.bitIndex == FrameBits-1
		size := symbolSize
		if last {
			size = lastSymbolSize
		}
		if d.offset < size {
			return nil, nil
		}

		bit, ok := d.decodeSymbol(last)
		if !ok {
			sym := append([]byte(nil), d.symbol[:size]...)
			index := d.bitIndex
			d.Reset()
			return nil, fmt.Errorf("%w: % X at bit %d", ErrInvalidSymbol, sym, index)
		}
		d.bits[d.bitIndex] = bit
		d.bitIndex++
		d.offset = 0

		if last {
			frame := frameFromBits(d.bits, d.hold)
			d.Reset()
			return &frame, nil
		}
		return nil, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state: %d", d.state)
	}
}

// decodeSymbol maps the buffered symbol back to a bit
func (d *Decoder) decodeSymbol(last bool) (byte, bool) {
	if last {
		var sym [lastSymbolSize]byte
		copy(sym[:], d.symbol[:lastSymbolSize])
		switch sym {
		case symbolLastOne:
			return 1, true
		case symbolLastZero:
			return 0, true
		}
		return 0, false
	}

	var sym [symbolSize]byte
	copy(sym[:], d.symbol[:symbolSize])
	switch sym {
	case symbolOne:
		return 1, true
	case symbolZero:
		return 0, true
	}
	return 0, false
}

// DecodeEnvelopeBytes decodes raw (already base64-decoded) envelope bytes
func DecodeEnvelopeBytes(raw []byte) (Frame, error) {
	d := NewDecoder()
	for i, b := range raw {
		frame, err := d.DecodeByte(b)
		if err != nil {
			return Frame{}, err
		}
		if frame != nil {
			if i != len(raw)-1 {
				return Frame{}, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(raw)-1-i)
			}
			return *frame, nil
		}
	}
	return Frame{}, fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, len(raw), EnvelopeRawBytes)
}

// DecodeEnvelope parses "b64:" transport text back into a frame
func DecodeEnvelope(text string) (Frame, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, EnvelopePrefix) {
		return Frame{}, ErrMissingPrefix
	}

	raw, err := base64.StdEncoding.DecodeString(text[len(EnvelopePrefix):])
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode base64: %w", err)
	}

	return DecodeEnvelopeBytes(raw)
}
