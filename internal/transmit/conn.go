// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transmit

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

// Conn is a byte link to an RF bridge
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// serialConn wraps a serial port
type serialConn struct {
	port serial.Port
}

func (s *serialConn) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *serialConn) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *serialConn) Close() error {
	return s.port.Close()
}

// websocketConn carries bridge frames in binary WebSocket messages
type websocketConn struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *websocketConn) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *websocketConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *websocketConn) Close() error {
	return w.conn.Close()
}

// OpenSerial opens a UART-attached bridge at 8N1
func OpenSerial(portName string, baudRate int) (Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &serialConn{port: port}, nil
}

// OpenWebSocket dials a WebSocket-attached bridge with optional HTTP Basic auth
func OpenWebSocket(ctx context.Context, wsURL, username, password string, skipSSLVerify bool) (Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &websocketConn{conn: conn}, nil
}
