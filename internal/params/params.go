// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package params parses the text parameters of a cover command into a
// sequencer request. Every value is checked before anything is transmitted.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
)

// Parameter names
const (
	ParamGroup       = "group"
	ParamSerial      = "serial"
	ParamButton      = "button"
	ParamCounter     = "counter"
	ParamHold        = "hold"
	ParamRepeatCount = "rep_count"
	ParamRepeatDelay = "rep_delay"
)

// Defaults applied when a parameter is absent or empty
const (
	DefaultGroup       uint16 = 0x0001
	DefaultSerial      uint32 = 0x106aa01
	DefaultButton             = keeloq.ButtonDown
	DefaultCounter     uint32 = 0x0000
	DefaultRepeatDelay        = 0.2 // seconds
)

// ErrParse matches every parameter parsing failure
var ErrParse = errors.New("invalid parameter")

// ParseError names the parameter that failed to parse
type ParseError struct {
	Param string
	Value string
	Err   error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

// Unwrap exposes ErrParse and the underlying cause
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ParseHex parses a hexadecimal value with optional 0x prefix into at most
// bits bits. Empty text yields def.
func ParseHex(text string, def uint64, bits int) (uint64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return def, nil
	}
	digits := text
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	if digits == "" {
		return 0, errors.New("no hex digits")
	}
	v, err := strconv.ParseUint(digits, 16, bits)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	return v, nil
}

// Group parses a 16-bit group mask
func Group(text string) (uint16, error) {
	v, err := ParseHex(text, uint64(DefaultGroup), 16)
	if err != nil {
		return 0, &ParseError{Param: ParamGroup, Value: text, Err: err}
	}
	return uint16(v), nil
}

// Serial parses a device serial. Only the low 28 bits reach the frame.
func Serial(text string) (uint32, error) {
	v, err := ParseHex(text, uint64(DefaultSerial), 32)
	if err != nil {
		return 0, &ParseError{Param: ParamSerial, Value: text, Err: err}
	}
	return uint32(v), nil
}

// Button parses a 4-bit button code or one of the names up, down, stop, learn
func Button(text string) (keeloq.Button, error) {
	if b, err := keeloq.ParseButton(text); err == nil {
		return b, nil
	}
	v, err := ParseHex(text, uint64(DefaultButton), 4)
	if err != nil {
		return 0, &ParseError{Param: ParamButton, Value: text, Err: err}
	}
	return keeloq.Button(v), nil
}

// Counter parses an explicit counter, 0 meaning "use the stored counter"
func Counter(text string) (uint32, error) {
	v, err := ParseHex(text, uint64(DefaultCounter), 32)
	if err != nil {
		return 0, &ParseError{Param: ParamCounter, Value: text, Err: err}
	}
	return uint32(v), nil
}

// RepeatCount parses the number of extra transmissions
func RepeatCount(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ParseError{Param: ParamRepeatCount, Value: text, Err: err}
	}
	if n < 0 {
		return 0, &ParseError{Param: ParamRepeatCount, Value: text, Err: errors.New("must not be negative")}
	}
	return n, nil
}

// RepeatDelay parses the pause between repeats in seconds
func RepeatDelay(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Seconds(DefaultRepeatDelay), nil
	}
	s, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{Param: ParamRepeatDelay, Value: text, Err: err}
	}
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, &ParseError{Param: ParamRepeatDelay, Value: text, Err: errors.New("must be a non-negative number of seconds")}
	}
	return Seconds(s), nil
}

// Hold parses the long-press flag
func Hold(text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(text)
	if err != nil {
		return false, &ParseError{Param: ParamHold, Value: text, Err: err}
	}
	return v, nil
}

// Seconds converts fractional seconds to a duration
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseRequest builds a send request from named text parameters, filling
// absent ones with their defaults
func ParseRequest(values map[string]string) (sequencer.Request, error) {
	var req sequencer.Request
	var err error

	if req.Group, err = Group(values[ParamGroup]); err != nil {
		return sequencer.Request{}, err
	}
	if req.Serial, err = Serial(values[ParamSerial]); err != nil {
		return sequencer.Request{}, err
	}
	if req.Button, err = Button(values[ParamButton]); err != nil {
		return sequencer.Request{}, err
	}
	if req.Counter, err = Counter(values[ParamCounter]); err != nil {
		return sequencer.Request{}, err
	}
	if req.Hold, err = Hold(values[ParamHold]); err != nil {
		return sequencer.Request{}, err
	}
	if req.RepeatCount, err = RepeatCount(values[ParamRepeatCount]); err != nil {
		return sequencer.Request{}, err
	}
	if req.RepeatDelay, err = RepeatDelay(values[ParamRepeatDelay]); err != nil {
		return sequencer.Request{}, err
	}
	return req, nil
}
