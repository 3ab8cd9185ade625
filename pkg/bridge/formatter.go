// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"
	"sort"
	"strings"
)

// FormatMessageType returns the name of a message type
func FormatMessageType(t uint8) string {
	switch t {
	case MsgTransmit:
		return "TRANSMIT"
	case MsgAck:
		return "ACK"
	case MsgPing:
		return "PING"
	case MsgPong:
		return "PONG"
	case MsgError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN_0x%02X", t)
	}
}

// FormatMessage renders a message as one log line
func FormatMessage(m *Message) string {
	var b strings.Builder
	b.WriteString(FormatMessageType(m.Type))

	keys := make([]int, 0, len(m.Payload))
	for k := range m.Payload {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		switch k {
		case KeyEnvelope:
			fmt.Fprintf(&b, " envelope=%v", m.Payload[k])
		case KeySequence:
			fmt.Fprintf(&b, " seq=%v", m.Payload[k])
		case KeyCode:
			if code, ok := m.Code(); ok {
				fmt.Fprintf(&b, " code=0x%02X", code)
			} else {
				fmt.Fprintf(&b, " code=%v", m.Payload[k])
			}
		default:
			fmt.Fprintf(&b, " %d=%v", k, m.Payload[k])
		}
	}
	b.WriteString("\n")
	return b.String()
}
