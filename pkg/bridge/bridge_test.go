// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvelope = "b64:sgCqABkMGgAB5DEMDQwNDA0MDQwNDA0MDQwNegwZ"

// decodeAll feeds every byte to a fresh decoder and collects messages
func decodeAll(t *testing.T, data []byte) []*Message {
	t.Helper()
	d := NewDecoder()
	var msgs []*Message
	for _, b := range data {
		msg, err := d.DecodeByte(b)
		require.NoError(t, err)
		if msg != nil {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func TestCalculateCRC_KnownValue(t *testing.T) {
	// CRC-16/CCITT-FALSE check value
	assert.Equal(t, uint16(0x29B1), CalculateCRC([]byte("123456789")))
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"transmit", NewTransmit(testEnvelope, 7)},
		{"ack", NewAck(0xFFFFFFFF)},
		{"ping", NewPing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			require.NoError(t, err)
			assert.Equal(t, byte(StartByte), data[0])
			assert.Equal(t, byte(EndByte), data[len(data)-1])

			msgs := decodeAll(t, data)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.msg.Type, msgs[0].Type)
		})
	}
}

func TestTransmit_Fields(t *testing.T) {
	data, err := Encode(NewTransmit(testEnvelope, 42))
	require.NoError(t, err)

	msgs := decodeAll(t, data)
	require.Len(t, msgs, 1)

	envelope, ok := msgs[0].Envelope()
	require.True(t, ok)
	assert.Equal(t, testEnvelope, envelope)

	seq, ok := msgs[0].Sequence()
	require.True(t, ok)
	assert.Equal(t, uint32(42), seq)
}

func TestError_Fields(t *testing.T) {
	data, err := Encode(NewError(7, 3))
	require.NoError(t, err)

	msgs := decodeAll(t, data)
	require.Len(t, msgs, 1)
	assert.Equal(t, uint8(MsgError), msgs[0].Type)

	seq, ok := msgs[0].Sequence()
	require.True(t, ok)
	assert.Equal(t, uint32(7), seq)

	code, ok := msgs[0].Code()
	require.True(t, ok)
	assert.Equal(t, uint8(3), code)
}

func TestEncode_StuffsFramingBytes(t *testing.T) {
	// sequence 0x7E7F7D forces framing bytes into the CBOR body
	data, err := Encode(NewTransmit("x", 0x7E7F7D))
	require.NoError(t, err)

	for _, b := range data[1 : len(data)-1] {
		assert.NotEqual(t, byte(StartByte), b)
		assert.NotEqual(t, byte(EndByte), b)
	}

	msgs := decodeAll(t, data)
	require.Len(t, msgs, 1)
	seq, _ := msgs[0].Sequence()
	assert.Equal(t, uint32(0x7E7F7D), seq)
}

func TestUnstuffBytes(t *testing.T) {
	raw := []byte{0x01, StartByte, EndByte, EscByte, 0x02}
	got, err := UnstuffBytes(stuffBytes(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = UnstuffBytes([]byte{0x01, EscByte})
	assert.Error(t, err)
}

func TestDecoder_CRCMismatch(t *testing.T) {
	data, err := Encode(NewTransmit(testEnvelope, 1))
	require.NoError(t, err)
	// flip one byte of the envelope text, well away from escapes and framing
	data[10] ^= 0x01

	d := NewDecoder()
	var lastErr error
	for _, b := range data {
		if _, err := d.DecodeByte(b); err != nil {
			lastErr = err
		}
	}
	assert.ErrorContains(t, lastErr, "CRC mismatch")
}

func TestDecoder_UnexpectedEnd(t *testing.T) {
	d := NewDecoder()
	_, err := d.DecodeByte(StartByte)
	require.NoError(t, err)
	_, err = d.DecodeByte(EndByte)
	assert.Error(t, err)
}

func TestDecoder_InvalidLength(t *testing.T) {
	d := NewDecoder()
	for _, b := range []byte{StartByte, 0xFF} {
		_, err := d.DecodeByte(b)
		require.NoError(t, err)
	}
	_, err := d.DecodeByte(0xFF)
	assert.ErrorContains(t, err, "invalid length")
}

func TestDecoder_ResyncAfterGarbage(t *testing.T) {
	data, err := Encode(NewTransmit(testEnvelope, 3))
	require.NoError(t, err)

	stream := append([]byte{0x00, 0x13, 0x37}, data...)
	stream = append(stream, data...)

	d := NewDecoder()
	count := 0
	for _, b := range stream {
		msg, err := d.DecodeByte(b)
		require.NoError(t, err)
		if msg != nil {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

// TestFuzzDecoder_RandomBytes feeds random bytes to the decoder
// and verifies it doesn't crash or panic
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Logf("Seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < 1000; i++ {
		d := NewDecoder()
		data := make([]byte, rng.Intn(2048)+1)
		rng.Read(data)
		for _, b := range data {
			d.DecodeByte(b)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "TRANSMIT envelope=b64:x seq=3\n", FormatMessage(NewTransmit("b64:x", 3)))
	assert.Equal(t, "ERROR seq=9 code=0x01\n", FormatMessage(NewError(9, 1)))
	assert.Equal(t, "PING\n", FormatMessage(NewPing()))
	assert.Equal(t, "UNKNOWN_0x99\n", FormatMessage(&Message{Type: 0x99}))
}
