// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/Thermoquad/jarolift/pkg/bridge"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeStream(t *testing.T, msgs ...*bridge.Message) *bytes.Reader {
	t.Helper()
	var stream []byte
	for _, m := range msgs {
		data, err := bridge.Encode(m)
		require.NoError(t, err)
		stream = append(stream, data...)
	}
	return bytes.NewReader(stream)
}

func TestLogMessages_DecryptsEnvelope(t *testing.T) {
	envelope := keeloq.Build(0x0001, 0x106aa01, keeloq.ButtonUp, 5, testKey, false)
	r := encodeStream(t, bridge.NewTransmit(envelope, 1), bridge.NewAck(1))

	var out bytes.Buffer
	require.NoError(t, logMessages(r, &out, &testKey))

	text := out.String()
	assert.Contains(t, text, "TRANSMIT envelope="+envelope+" seq=1")
	assert.Contains(t, text, "serial=0x106AA01")
	assert.Contains(t, text, "Counter: 5")
	assert.Contains(t, text, "ACK seq=1")
}

func TestLogMessages_WithoutKey(t *testing.T) {
	envelope := keeloq.Build(0x0001, 0x106aa01, keeloq.ButtonDown, 9, testKey, false)
	r := encodeStream(t, bridge.NewTransmit(envelope, 2), bridge.NewTransmit("garbage", 3))

	var out bytes.Buffer
	require.NoError(t, logMessages(r, &out, nil))

	text := out.String()
	assert.Contains(t, text, "serial=0x106AA01")
	assert.NotContains(t, text, "Counter:")
	assert.Contains(t, text, "not a Jarolift envelope")
}

func TestLogMessages_ReportsFramingErrors(t *testing.T) {
	r := bytes.NewReader([]byte{bridge.StartByte, bridge.EndByte})

	var out bytes.Buffer
	require.NoError(t, logMessages(r, &out, nil))
	assert.Contains(t, out.String(), "[ERROR]")
}
