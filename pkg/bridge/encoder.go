// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"encoding/binary"
	"fmt"
)

// Encode creates a complete wire-formatted bridge packet.
// Returns the packet bytes ready for transmission, including framing and byte stuffing.
func Encode(m *Message) ([]byte, error) {
	body, err := encodeCBOR(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR payload: %w", err)
	}

	if len(body) > MaxPayloadSize {
		return nil, fmt.Errorf("CBOR payload too large: %d bytes (max %d)", len(body), MaxPayloadSize)
	}

	// length + CBOR body is what gets CRC'd and byte-stuffed
	data := make([]byte, LengthSize, LengthSize+len(body)+CRCSize)
	binary.BigEndian.PutUint16(data, uint16(len(body)))
	data = append(data, body...)

	crc := CalculateCRC(data)
	data = append(data, byte(crc>>8), byte(crc&0xFF))

	stuffed := stuffBytes(data)

	packet := make([]byte, 0, len(stuffed)+2)
	packet = append(packet, StartByte)
	packet = append(packet, stuffed...)
	packet = append(packet, EndByte)

	return packet, nil
}

// stuffBytes applies byte stuffing to escape special bytes.
// Special bytes (START, END, ESC) are replaced with ESC + (byte XOR EscXor).
func stuffBytes(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)

	for _, b := range data {
		if b == StartByte || b == EndByte || b == EscByte {
			result = append(result, EscByte, b^EscXor)
		} else {
			result = append(result, b)
		}
	}

	return result
}

// UnstuffBytes removes byte stuffing from escaped data.
func UnstuffBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escapeNext := false

	for _, b := range data {
		if escapeNext {
			result = append(result, b^EscXor)
			escapeNext = false
		} else if b == EscByte {
			escapeNext = true
		} else {
			result = append(result, b)
		}
	}

	if escapeNext {
		return nil, fmt.Errorf("incomplete escape sequence at end of data")
	}

	return result, nil
}
