// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bridge implements the framing used to hand transport envelopes to
// an RF bridge over a byte link (UART or WebSocket).
//
// Wire format:
//
//	START | stuffed( length(2, BE) | CBOR [msg_type, payload_map] | CRC16(2, BE) ) | END
//
// The CRC is CRC-16-CCITT over the length and CBOR bytes.
package bridge

// Protocol framing bytes
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Packet size limits
const (
	MaxPayloadSize = 1024
	LengthSize     = 2
	CRCSize        = 2
	MaxPacketSize  = LengthSize + MaxPayloadSize + CRCSize
)

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Message types
const (
	MsgTransmit = 0x10 // controller -> bridge: send an envelope
	MsgAck      = 0x11 // bridge -> controller: envelope sent
	MsgPing     = 0x2F
	MsgPong     = 0x3F
	MsgError    = 0xE0
)

// Payload keys
const (
	KeyEnvelope = 0
	KeySequence = 1
	KeyCode     = 2
)

// Decoder states
const (
	stateIdle = iota
	stateLengthHigh
	stateLengthLow
	statePayload
	stateCRC1
	stateCRC2
	stateEnd
)
