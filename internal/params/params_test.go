// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package params

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		bits    int
		want    uint64
		wantErr bool
	}{
		{"prefixed", "0x106aa01", 32, 0x106aa01, false},
		{"upper prefix", "0X00FF", 16, 0xFF, false},
		{"bare", "abcd", 16, 0xABCD, false},
		{"whitespace", "  0x12 ", 8, 0x12, false},
		{"empty uses default", "", 16, 0x55, false},
		{"blank uses default", "   ", 16, 0x55, false},
		{"too wide", "0x10000", 16, 0, true},
		{"nibble", "0xf", 4, 0xF, false},
		{"nibble overflow", "0x10", 4, 0, true},
		{"prefix only", "0x", 16, 0, true},
		{"not hex", "0xzz", 16, 0, true},
		{"signed", "-1", 16, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.text, 0x55, tt.bits)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHex_RangeError(t *testing.T) {
	_, err := ParseHex("0x1ffff", 0, 16)
	assert.ErrorIs(t, err, strconv.ErrRange)
}

func TestButton(t *testing.T) {
	tests := []struct {
		text string
		want keeloq.Button
	}{
		{"", keeloq.ButtonDown},
		{"0x2", keeloq.ButtonDown},
		{"0x4", keeloq.ButtonStop},
		{"8", keeloq.ButtonUp},
		{"0xa", keeloq.ButtonLearn},
		{"up", keeloq.ButtonUp},
		{"Down", keeloq.ButtonDown},
		{"stop", keeloq.ButtonStop},
		{"learn", keeloq.ButtonLearn},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Button(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Button("0x1F")
	assert.ErrorIs(t, err, ErrParse)
	_, err = Button("sideways")
	assert.ErrorIs(t, err, ErrParse)
}

func TestRepeatDelay(t *testing.T) {
	d, err := RepeatDelay("")
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, d)

	d, err = RepeatDelay("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = RepeatDelay("0")
	require.NoError(t, err)
	assert.Zero(t, d)

	for _, bad := range []string{"-0.1", "soon", "NaN", "+Inf"} {
		_, err := RepeatDelay(bad)
		assert.ErrorIs(t, err, ErrParse, bad)
	}
}

func TestRepeatCount(t *testing.T) {
	n, err := RepeatCount("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = RepeatCount(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = RepeatCount("-1")
	assert.ErrorIs(t, err, ErrParse)
	_, err = RepeatCount("two")
	assert.ErrorIs(t, err, ErrParse)
}

func TestHold(t *testing.T) {
	for text, want := range map[string]bool{"": false, "true": true, "1": true, "False": false} {
		got, err := Hold(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}

	_, err := Hold("maybe")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseRequest_Defaults(t *testing.T) {
	req, err := ParseRequest(nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0001), req.Group)
	assert.Equal(t, uint32(0x106aa01), req.Serial)
	assert.Equal(t, keeloq.ButtonDown, req.Button)
	assert.Zero(t, req.Counter)
	assert.True(t, req.AutoCounter())
	assert.False(t, req.Hold)
	assert.Zero(t, req.RepeatCount)
	assert.Equal(t, 200*time.Millisecond, req.RepeatDelay)
}

func TestParseRequest_Values(t *testing.T) {
	req, err := ParseRequest(map[string]string{
		ParamGroup:       "0x0102",
		ParamSerial:      "0x0ABCDEF",
		ParamButton:      "0x8",
		ParamCounter:     "0x0010",
		ParamHold:        "true",
		ParamRepeatCount: "3",
		ParamRepeatDelay: "0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0102), req.Group)
	assert.Equal(t, uint32(0xABCDEF), req.Serial)
	assert.Equal(t, keeloq.ButtonUp, req.Button)
	assert.Equal(t, uint32(0x10), req.Counter)
	assert.False(t, req.AutoCounter())
	assert.True(t, req.Hold)
	assert.Equal(t, 3, req.RepeatCount)
	assert.Equal(t, 500*time.Millisecond, req.RepeatDelay)
}

func TestParseRequest_Errors(t *testing.T) {
	tests := []struct {
		param string
		value string
	}{
		{ParamGroup, "0x10000"},
		{ParamSerial, "serial"},
		{ParamButton, "0x10"},
		{ParamCounter, "0x100000000"},
		{ParamHold, "yes please"},
		{ParamRepeatCount, "-3"},
		{ParamRepeatDelay, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			_, err := ParseRequest(map[string]string{tt.param: tt.value})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.param, pe.Param)
			assert.Equal(t, tt.value, pe.Value)
			assert.Contains(t, pe.Error(), tt.param)
		})
	}
}
