// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sequencer

import (
	"fmt"
	"time"

	"github.com/Thermoquad/jarolift/pkg/keeloq"
)

// Command selects the burst a sequencer runs
type Command int

const (
	CommandSend Command = iota
	CommandLearn
	CommandClear
	CommandRaw
)

// Fixed timings of the vendor pairing sequences
const (
	SettleDelay    = 1 * time.Second
	ClearStopDelay = 500 * time.Millisecond
	ClearStops     = 6
)

// DefaultRepeatDelay is the pause between repeats of a send burst
const DefaultRepeatDelay = 200 * time.Millisecond

// String returns the command name used in logs
func (c Command) String() string {
	switch c {
	case CommandSend:
		return "send_command"
	case CommandLearn:
		return "learn"
	case CommandClear:
		return "clear"
	case CommandRaw:
		return "send_raw"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Request carries the parameters of one burst.
// Counter 0 means "use and advance the stored counter".
type Request struct {
	Group       uint16
	Serial      uint32
	Button      keeloq.Button
	Counter     uint32
	Hold        bool
	RepeatCount int
	RepeatDelay time.Duration
}

// AutoCounter reports whether the burst draws from the stored counter
func (r Request) AutoCounter() bool {
	return r.Counter == 0
}

// Step is one transmission of a burst
type Step struct {
	Button keeloq.Button
	Offset uint32        // added to the burst's base counter
	Hold   bool
	Delay  time.Duration // pause after transmitting, before the next step
}

// Plan is the full sequence of transmissions of a burst
type Plan struct {
	Command Command
	Steps   []Step
	Advance uint32 // stored counter delta when the burst used the auto counter
}

// NewPlan expands a command into its transmission steps
func NewPlan(cmd Command, req Request) (Plan, error) {
	switch cmd {
	case CommandSend:
		return sendPlan(req)
	case CommandLearn:
		return learnPlan(), nil
	case CommandClear:
		return clearPlan(), nil
	default:
		return Plan{}, fmt.Errorf("%w: %s has no burst plan", ErrInvalidRequest, cmd)
	}
}

// sendPlan repeats one button RepeatCount+1 times. With the auto counter
// every repeat uses the next counter value, an explicit counter is replayed
// unchanged.
func sendPlan(req Request) (Plan, error) {
	if req.RepeatCount < 0 {
		return Plan{}, fmt.Errorf("%w: negative repeat count %d", ErrInvalidRequest, req.RepeatCount)
	}
	if req.RepeatDelay < 0 {
		return Plan{}, fmt.Errorf("%w: negative repeat delay %s", ErrInvalidRequest, req.RepeatDelay)
	}
	if !req.Button.Valid() {
		return Plan{}, fmt.Errorf("%w: button 0x%X does not fit 4 bits", ErrInvalidRequest, uint8(req.Button))
	}

	count := req.RepeatCount + 1
	plan := Plan{
		Command: CommandSend,
		Steps:   make([]Step, count),
		Advance: uint32(count),
	}
	for i := range plan.Steps {
		step := Step{Button: req.Button, Hold: req.Hold}
		if req.AutoCounter() {
			step.Offset = uint32(i)
		}
		if i < count-1 {
			step.Delay = req.RepeatDelay
		}
		plan.Steps[i] = step
	}
	return plan, nil
}

// learnPlan puts the receiver into learning mode: LEARN, settle, STOP
func learnPlan() Plan {
	return Plan{
		Command: CommandLearn,
		Steps: []Step{
			{Button: keeloq.ButtonLearn, Offset: 0, Delay: SettleDelay},
			{Button: keeloq.ButtonStop, Offset: 1},
		},
		Advance: 2,
	}
}

// clearPlan erases all paired remotes: LEARN, six STOPs, UP
func clearPlan() Plan {
	steps := make([]Step, 0, ClearStops+2)
	steps = append(steps, Step{Button: keeloq.ButtonLearn, Offset: 0, Delay: SettleDelay})
	for i := 1; i <= ClearStops; i++ {
		step := Step{Button: keeloq.ButtonStop, Offset: uint32(i), Delay: ClearStopDelay}
		if i == ClearStops {
			step.Delay += SettleDelay
		}
		steps = append(steps, step)
	}
	steps = append(steps, Step{Button: keeloq.ButtonUp, Offset: ClearStops + 1})

	return Plan{
		Command: CommandClear,
		Steps:   steps,
		Advance: ClearStops + 2,
	}
}
