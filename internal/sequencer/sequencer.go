// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sequencer turns cover commands into KeeLoq packet bursts.
//
// Every burst runs to completion under one lock shared by all bursts of the
// process: read counter, then build/transmit/sleep per step, then write the
// advanced counter and sleep the minimum inter-command delay. Only then is
// the lock released.
package sequencer

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Thermoquad/jarolift/internal/counter"
	"github.com/Thermoquad/jarolift/internal/syncutil"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
)

// Transmitter hands one transport envelope to the RF hardware
type Transmitter interface {
	Transmit(envelope string) error
}

// Event describes one completed transmission
type Event struct {
	Command  Command
	Serial   uint32
	Group    uint16
	Button   keeloq.Button
	Counter  uint32
	Step     int
	Envelope string
	Time     time.Time
}

// Options configures a Sequencer
type Options struct {
	Key         keeloq.ManufacturerKey
	Store       counter.Store
	Transmitter Transmitter

	// Locker serializes bursts. Sequencers sharing one transmitter must share
	// one Locker. Defaults to a private syncutil.Mutex.
	Locker sync.Locker

	// MinDelay is slept after each burst while still holding the lock
	MinDelay time.Duration

	Sleep      func(time.Duration) // defaults to time.Sleep
	Now        func() time.Time    // defaults to time.Now
	Logger     *log.Logger
	OnTransmit func(Event) // called under the lock after each successful transmission
}

// Sequencer runs send, learn, clear and raw bursts
type Sequencer struct {
	key        keeloq.ManufacturerKey
	store      counter.Store
	tx         Transmitter
	lock       sync.Locker
	minDelay   time.Duration
	sleep      func(time.Duration)
	now        func() time.Time
	logger     *log.Logger
	onTransmit func(Event)
}

// New creates a sequencer
func New(opts Options) (*Sequencer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: counter store is required", ErrInvalidRequest)
	}
	if opts.Transmitter == nil {
		return nil, fmt.Errorf("%w: transmitter is required", ErrInvalidRequest)
	}
	if opts.MinDelay < 0 {
		return nil, fmt.Errorf("%w: negative minimum delay %s", ErrInvalidRequest, opts.MinDelay)
	}

	s := &Sequencer{
		key:        opts.Key,
		store:      opts.Store,
		tx:         opts.Transmitter,
		lock:       opts.Locker,
		minDelay:   opts.MinDelay,
		sleep:      opts.Sleep,
		now:        opts.Now,
		logger:     opts.Logger,
		onTransmit: opts.OnTransmit,
	}
	if s.lock == nil {
		s.lock = &syncutil.Mutex{}
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s, nil
}

// Send transmits one button RepeatCount+1 times
func (s *Sequencer) Send(req Request) error {
	return s.run(CommandSend, req)
}

// Learn puts the receiver into learning mode so it pairs with this serial
func (s *Sequencer) Learn(req Request) error {
	req.Hold = false
	return s.run(CommandLearn, req)
}

// Clear erases every remote paired with the receiver
func (s *Sequencer) Clear(req Request) error {
	req.Hold = false
	return s.run(CommandClear, req)
}

// SendRaw relays a prebuilt envelope under the burst lock
func (s *Sequencer) SendRaw(envelope string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.logger.Printf("Sending raw packet (%d bytes)", len(envelope))
	if err := s.tx.Transmit(envelope); err != nil {
		return &TransmitError{Command: CommandRaw, Err: err}
	}
	s.notify(Event{Command: CommandRaw, Envelope: envelope, Time: s.now()})
	return nil
}

// run executes a burst plan while holding the lock
func (s *Sequencer) run(cmd Command, req Request) error {
	plan, err := NewPlan(cmd, req)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	auto := req.AutoCounter()
	base := req.Counter
	if auto {
		base, err = s.store.Read(req.Serial)
		if err != nil {
			return fmt.Errorf("%s: read counter: %w", cmd, err)
		}
	}

	// next is the lowest counter not yet on the air
	next := base
	for i, step := range plan.Steps {
		c := base + step.Offset
		envelope := keeloq.Build(req.Group, req.Serial, step.Button, uint16(c), s.key, step.Hold)

		s.logger.Printf("Sending: %s group: 0x%04X Serial: 0x%08X counter: %d repeat: %d",
			step.Button, req.Group, req.Serial, c, i)

		if err := s.tx.Transmit(envelope); err != nil {
			txErr := error(&TransmitError{Command: cmd, Step: i, Counter: c, Err: err})
			if auto && next != base {
				if werr := s.store.Write(req.Serial, next); werr != nil {
					return errors.Join(txErr, werr)
				}
			}
			return txErr
		}
		if c+1 > next {
			next = c + 1
		}

		s.notify(Event{
			Command:  cmd,
			Serial:   req.Serial,
			Group:    req.Group,
			Button:   step.Button,
			Counter:  c,
			Step:     i,
			Envelope: envelope,
			Time:     s.now(),
		})

		if step.Delay > 0 {
			s.sleep(step.Delay)
		}
	}

	if auto {
		if err := s.store.Write(req.Serial, base+plan.Advance); err != nil {
			return fmt.Errorf("%s: write counter: %w", cmd, err)
		}
	}

	// minimum spacing between distinct cover commands
	if s.minDelay > 0 {
		s.sleep(s.minDelay)
	}

	return nil
}

func (s *Sequencer) notify(e Event) {
	if s.onTransmit != nil {
		s.onTransmit(e)
	}
}
