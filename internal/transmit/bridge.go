// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transmit hands transport envelopes to RF hardware.
package transmit

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Thermoquad/jarolift/internal/syncutil"
	"github.com/Thermoquad/jarolift/pkg/bridge"
)

// Transmit errors
var (
	ErrAckTimeout = errors.New("bridge did not acknowledge")
	ErrRejected   = errors.New("bridge rejected envelope")
	ErrLinkClosed = errors.New("bridge link closed")
)

// BridgeOptions configures a Bridge
type BridgeOptions struct {
	// AckTimeout waits for the bridge's ACK after each envelope.
	// Zero sends without waiting.
	AckTimeout time.Duration
	Logger     *log.Logger
}

// Bridge sends envelopes as framed TRANSMIT messages over a byte link
type Bridge struct {
	mu         syncutil.Mutex
	conn       Conn
	sequence   uint32
	ackTimeout time.Duration
	logger     *log.Logger

	msgs    chan *bridge.Message
	readErr chan error
	done    chan struct{}
}

// NewBridge wraps conn. With an ack timeout a reader goroutine consumes
// the link until Close.
func NewBridge(conn Conn, opts BridgeOptions) *Bridge {
	b := &Bridge{
		conn:       conn,
		ackTimeout: opts.AckTimeout,
		logger:     opts.Logger,
		done:       make(chan struct{}),
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard, "", 0)
	}
	if b.ackTimeout > 0 {
		b.msgs = make(chan *bridge.Message, 16)
		b.readErr = make(chan error, 1)
		go b.readLoop()
	}
	return b
}

// Transmit frames one envelope and, if configured, waits for its ACK
func (b *Bridge) Transmit(envelope string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sequence++
	seq := b.sequence

	data, err := bridge.Encode(bridge.NewTransmit(envelope, seq))
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	n, err := b.conn.Write(data)
	if err != nil {
		return fmt.Errorf("write to bridge: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("write to bridge: %w", io.ErrShortWrite)
	}

	if b.ackTimeout == 0 {
		return nil
	}
	return b.awaitAck(seq)
}

// awaitAck waits for the ACK or ERROR of one sequence number
func (b *Bridge) awaitAck(seq uint32) error {
	timer := time.NewTimer(b.ackTimeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-b.msgs:
			got, ok := msg.Sequence()
			switch {
			case msg.Type == bridge.MsgAck && ok && got == seq:
				return nil
			case msg.Type == bridge.MsgError && ok && got == seq:
				code, _ := msg.Code()
				return fmt.Errorf("%w: sequence %d code 0x%02X", ErrRejected, seq, code)
			default:
				b.logger.Printf("Ignoring bridge message type 0x%02X (sequence %d) while waiting for %d", msg.Type, got, seq)
			}
		case err := <-b.readErr:
			// keep the error visible to later calls
			b.readErr <- err
			return fmt.Errorf("%w: %v", ErrLinkClosed, err)
		case <-timer.C:
			return fmt.Errorf("%w: sequence %d after %s", ErrAckTimeout, seq, b.ackTimeout)
		}
	}
}

// readLoop decodes bridge messages until the link fails or Close is called
func (b *Bridge) readLoop() {
	decoder := bridge.NewDecoder()
	buf := make([]byte, 256)

	for {
		n, err := b.conn.Read(buf)
		for i := 0; i < n; i++ {
			msg, derr := decoder.DecodeByte(buf[i])
			if derr != nil {
				b.logger.Printf("Bridge decode error: %v", derr)
				continue
			}
			if msg == nil {
				continue
			}
			select {
			case b.msgs <- msg:
			case <-b.done:
				return
			}
		}
		if err != nil {
			b.readErr <- err
			return
		}
	}
}

// Close closes the link and stops the reader
func (b *Bridge) Close() error {
	select {
	case <-b.done:
		return nil
	default:
		close(b.done)
	}
	return b.conn.Close()
}
