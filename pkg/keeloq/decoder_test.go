// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package keeloq

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_Golden(t *testing.T) {
	f, err := DecodeEnvelope(goldenDown)
	require.NoError(t, err)

	assert.Equal(t, uint32(testSerial), f.Serial)
	assert.Equal(t, ButtonDown, f.Button)
	assert.Equal(t, uint8(0x00), f.GroupHigh)
	assert.False(t, f.Hold)

	pt, err := f.Decrypt(testKey)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), pt.Counter)
	assert.Equal(t, uint16(testGroup), f.Group(pt))
}

func TestDecodeEnvelope_Hold(t *testing.T) {
	f, err := DecodeEnvelope(goldenHold)
	require.NoError(t, err)
	assert.True(t, f.Hold)
}

func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		group   uint16
		serial  uint32
		button  Button
		counter uint16
		hold    bool
	}{
		{"down", 0x0001, 0x106AA01, ButtonDown, 0, false},
		{"stop hold", 0x0001, 0x106AA01, ButtonStop, 1, true},
		{"up high group", 0xFF10, 0x0ABCDEF, ButtonUp, 0xFFFF, false},
		{"learn", 0x0100, 0x0000001, ButtonLearn, 1234, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := NewFrame(tt.group, tt.serial, tt.button, tt.counter, testKey, tt.hold)
			got, err := DecodeEnvelope(EncodeFrame(want))
			require.NoError(t, err)
			assert.Equal(t, want, got)

			pt, err := got.Decrypt(testKey)
			require.NoError(t, err)
			assert.Equal(t, tt.counter, pt.Counter)
			assert.Equal(t, tt.group, got.Group(pt))
		})
	}
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	valid := EncodeFrameBytes(NewFrame(testGroup, testSerial, ButtonDown, 0, testKey, false))
	encode := func(raw []byte) string {
		return EnvelopePrefix + base64.StdEncoding.EncodeToString(raw)
	}
	mutate := func(index int, value byte) string {
		raw := append([]byte(nil), valid...)
		raw[index] = value
		return encode(raw)
	}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing prefix", strings.TrimPrefix(goldenDown, EnvelopePrefix), ErrMissingPrefix},
		{"bad type", mutate(0, 0x26), ErrInvalidHeader},
		{"bad mode", mutate(1, 0x01), ErrInvalidHeader},
		{"bad length", mutate(2, 0xA9), ErrLengthMismatch},
		{"bad reserved", mutate(3, 0x01), ErrInvalidHeader},
		{"bad preamble", mutate(HeaderSize+3, 0xFF), ErrInvalidPreamble},
		{"bad symbol", mutate(HeaderSize+PreambleSize, 0x00), ErrInvalidSymbol},
		{"bad last symbol", mutate(len(valid)-1, 0x00), ErrInvalidSymbol},
		{"truncated", encode(valid[:len(valid)-1]), ErrTruncated},
		{"trailing", encode(append(append([]byte(nil), valid...), 0x00)), ErrTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeEnvelope_InvalidBase64(t *testing.T) {
	_, err := DecodeEnvelope("b64:not base64!")
	assert.Error(t, err)
}

func TestDecoder_ResetsAfterFrame(t *testing.T) {
	d := NewDecoder()
	raw := EncodeFrameBytes(NewFrame(testGroup, testSerial, ButtonUp, 3, testKey, false))

	for pass := 0; pass < 2; pass++ {
		var frame *Frame
		for _, b := range raw {
			f, err := d.DecodeByte(b)
			require.NoError(t, err)
			if f != nil {
				frame = f
			}
		}
		require.NotNil(t, frame, "pass %d", pass)
		assert.Equal(t, ButtonUp, frame.Button)
	}
}

func TestFormatFrame(t *testing.T) {
	f := NewFrame(0x0102, testSerial, ButtonLearn, 5, testKey, false)

	out := FormatFrame(f, nil)
	assert.Contains(t, out, "LEARN (0xA)")
	assert.Contains(t, out, "serial=0x106AA01")
	assert.Contains(t, out, "Group High: 0x01")

	pt, err := f.Decrypt(testKey)
	require.NoError(t, err)
	out = FormatFrame(f, &pt)
	assert.Contains(t, out, "Group: 0x0102")
	assert.Contains(t, out, "Counter: 5")
}

func TestFormatBits(t *testing.T) {
	out := FormatBits(NewFrame(testGroup, testSerial, ButtonDown, 0, testKey, false))
	assert.Len(t, strings.ReplaceAll(out, " ", ""), FrameBits)
	assert.Equal(t, 8, strings.Count(out, " "))
}

func TestButton_String(t *testing.T) {
	assert.Equal(t, "DOWN", ButtonDown.String())
	assert.Equal(t, "STOP", ButtonStop.String())
	assert.Equal(t, "UP", ButtonUp.String())
	assert.Equal(t, "LEARN", ButtonLearn.String())
	assert.Equal(t, "BUTTON_0x1", Button(0x1).String())
}

func TestParseButton(t *testing.T) {
	tests := map[string]Button{
		"up":    ButtonUp,
		"OPEN":  ButtonUp,
		"down":  ButtonDown,
		"close": ButtonDown,
		" stop": ButtonStop,
		"learn": ButtonLearn,
	}
	for name, want := range tests {
		got, err := ParseButton(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseButton("sideways")
	assert.Error(t, err)
}
