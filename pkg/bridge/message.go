// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode sorts map keys so identical messages encode to identical bytes
var encMode, _ = cbor.CoreDetEncOptions().EncMode()

// Message is one decoded bridge message
type Message struct {
	Type    uint8
	Payload map[int]interface{}
}

// NewTransmit creates a TRANSMIT message carrying one envelope
func NewTransmit(envelope string, sequence uint32) *Message {
	return &Message{
		Type: MsgTransmit,
		Payload: map[int]interface{}{
			KeyEnvelope: envelope,
			KeySequence: uint64(sequence),
		},
	}
}

// NewAck creates an ACK message for a transmit sequence number
func NewAck(sequence uint32) *Message {
	return &Message{
		Type:    MsgAck,
		Payload: map[int]interface{}{KeySequence: uint64(sequence)},
	}
}

// NewError creates an ERROR message rejecting a transmit sequence number
func NewError(sequence uint32, code uint8) *Message {
	return &Message{
		Type: MsgError,
		Payload: map[int]interface{}{
			KeySequence: uint64(sequence),
			KeyCode:     uint64(code),
		},
	}
}

// NewPing creates a PING message
func NewPing() *Message {
	return &Message{Type: MsgPing}
}

// Envelope returns the envelope text of a TRANSMIT message
func (m *Message) Envelope() (string, bool) {
	return GetMapString(m.Payload, KeyEnvelope)
}

// Sequence returns the sequence number of a TRANSMIT or ACK message
func (m *Message) Sequence() (uint32, bool) {
	v, ok := GetMapUint(m.Payload, KeySequence)
	if !ok || v > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(v), true
}

// Code returns the error code of an ERROR message
func (m *Message) Code() (uint8, bool) {
	v, ok := GetMapUint(m.Payload, KeyCode)
	if !ok || v > 0xFF {
		return 0, false
	}
	return uint8(v), true
}

// encodeCBOR creates the CBOR-encoded body: [msg_type, payload_map]
func encodeCBOR(m *Message) ([]byte, error) {
	var msg interface{}
	if len(m.Payload) == 0 {
		msg = []interface{}{uint64(m.Type), nil}
	} else {
		msg = []interface{}{uint64(m.Type), m.Payload}
	}
	return encMode.Marshal(msg)
}

// parseCBOR parses a CBOR message body: [msg_type, payload_map]
func parseCBOR(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR payload")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	m := &Message{}
	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return nil, fmt.Errorf("message type out of range: %d", v)
		}
		m.Type = uint8(v)
	default:
		return nil, fmt.Errorf("expected uint for message type, got %T", msg[0])
	}

	if msg[1] == nil {
		return m, nil
	}

	v, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}
	m.Payload = make(map[int]interface{}, len(v))
	for key, val := range v {
		switch k := key.(type) {
		case uint64:
			m.Payload[int(k)] = val
		case int64:
			m.Payload[int(k)] = val
		default:
			return nil, fmt.Errorf("expected integer map key, got %T", key)
		}
	}

	return m, nil
}

// GetMapUint extracts a uint64 from a CBOR map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}

// GetMapString extracts a string from a CBOR map by key
func GetMapString(m map[int]interface{}, key int) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
