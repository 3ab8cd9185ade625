// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the manufacturer key, timing and cover definitions
// from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/jarolift/internal/params"
	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the manufacturer key
const (
	EnvMSB = "JAROLIFT_MSB"
	EnvLSB = "JAROLIFT_LSB"
)

// Counter store backends
const (
	StoreFile   = "file"
	StoreBolt   = "bolt"
	StoreMemory = "memory"
)

// DefaultCounterPath is the base path of counter files
const DefaultCounterPath = "counter_"

// ErrConfig matches every configuration failure
var ErrConfig = errors.New("invalid configuration")

// Config is the on-disk configuration
type Config struct {
	MSB         string  `yaml:"msb"`
	LSB         string  `yaml:"lsb"`
	Delay       float64 `yaml:"delay"`
	CounterPath string  `yaml:"counter_path"`
	Store       string  `yaml:"store"`
	Covers      []Cover `yaml:"covers"`
}

// Cover is one configured motorized cover
type Cover struct {
	Name        string   `yaml:"name"`
	Group       string   `yaml:"group"`
	Serial      string   `yaml:"serial"`
	RepeatCount int      `yaml:"repeat_count"`
	RepeatDelay *float64 `yaml:"repeat_delay"`
	Reverse     bool     `yaml:"reverse"`
}

// Default returns a configuration with no key and no covers
func Default() *Config {
	return &Config{
		CounterPath: DefaultCounterPath,
		Store:       StoreFile,
	}
}

// Load reads the configuration at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	if cfg.CounterPath == "" {
		cfg.CounterPath = DefaultCounterPath
	}
	if cfg.Store == "" {
		cfg.Store = StoreFile
	}
	return cfg, nil
}

// ApplyEnv overrides the key halves from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvMSB); v != "" {
		c.MSB = v
	}
	if v := getenv(EnvLSB); v != "" {
		c.LSB = v
	}
}

// Validate checks value ranges and cover uniqueness
func (c *Config) Validate() error {
	if c.Delay < 0 || math.IsNaN(c.Delay) || math.IsInf(c.Delay, 0) {
		return fmt.Errorf("%w: delay must be a non-negative number of seconds", ErrConfig)
	}
	switch c.Store {
	case StoreFile, StoreBolt, StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrConfig, c.Store)
	}

	type ident struct {
		serial uint32
		group  uint16
	}
	seen := make(map[ident]string, len(c.Covers))
	names := make(map[string]bool, len(c.Covers))
	for i := range c.Covers {
		cv := &c.Covers[i]
		if strings.TrimSpace(cv.Name) == "" {
			return fmt.Errorf("%w: cover %d has no name", ErrConfig, i)
		}
		key := strings.ToLower(cv.Name)
		if names[key] {
			return fmt.Errorf("%w: duplicate cover name %q", ErrConfig, cv.Name)
		}
		names[key] = true

		req, err := cv.Request(keeloq.ButtonStop)
		if err != nil {
			return err
		}
		id := ident{req.Serial, req.Group}
		if other, ok := seen[id]; ok {
			return fmt.Errorf("%w: covers %q and %q share serial 0x%X group 0x%04X",
				ErrConfig, other, cv.Name, req.Serial, req.Group)
		}
		seen[id] = cv.Name
	}
	return nil
}

// Key parses the manufacturer key
func (c *Config) Key() (keeloq.ManufacturerKey, error) {
	if c.MSB == "" || c.LSB == "" {
		return keeloq.ManufacturerKey{}, fmt.Errorf("%w: manufacturer key not set (msb/lsb, %s/%s)", ErrConfig, EnvMSB, EnvLSB)
	}
	high, err := params.ParseHex(c.MSB, 0, 32)
	if err != nil {
		return keeloq.ManufacturerKey{}, fmt.Errorf("%w: msb %q: %v", ErrConfig, c.MSB, err)
	}
	low, err := params.ParseHex(c.LSB, 0, 32)
	if err != nil {
		return keeloq.ManufacturerKey{}, fmt.Errorf("%w: lsb %q: %v", ErrConfig, c.LSB, err)
	}
	return keeloq.ManufacturerKey{High: uint32(high), Low: uint32(low)}, nil
}

// MinDelay returns the post-burst delay
func (c *Config) MinDelay() time.Duration {
	return params.Seconds(c.Delay)
}

// Cover finds a cover by case-insensitive name
func (c *Config) Cover(name string) (*Cover, error) {
	for i := range c.Covers {
		if strings.EqualFold(c.Covers[i].Name, name) {
			return &c.Covers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no cover named %q", ErrConfig, name)
}

// Open returns the button that raises the cover
func (cv *Cover) Open() keeloq.Button {
	if cv.Reverse {
		return keeloq.ButtonDown
	}
	return keeloq.ButtonUp
}

// Close returns the button that lowers the cover
func (cv *Cover) Close() keeloq.Button {
	if cv.Reverse {
		return keeloq.ButtonUp
	}
	return keeloq.ButtonDown
}

// Stop returns the stop button
func (cv *Cover) Stop() keeloq.Button {
	return keeloq.ButtonStop
}

// Request builds a sequencer request for one button press on this cover
func (cv *Cover) Request(button keeloq.Button) (sequencer.Request, error) {
	group, err := params.Group(cv.Group)
	if err != nil {
		return sequencer.Request{}, fmt.Errorf("%w: cover %q: %w", ErrConfig, cv.Name, err)
	}
	serial, err := params.Serial(cv.Serial)
	if err != nil {
		return sequencer.Request{}, fmt.Errorf("%w: cover %q: %w", ErrConfig, cv.Name, err)
	}
	if cv.RepeatCount < 0 {
		return sequencer.Request{}, fmt.Errorf("%w: cover %q: negative repeat_count", ErrConfig, cv.Name)
	}

	delay := sequencer.DefaultRepeatDelay
	if cv.RepeatDelay != nil {
		d := *cv.RepeatDelay
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return sequencer.Request{}, fmt.Errorf("%w: cover %q: negative repeat_delay", ErrConfig, cv.Name)
		}
		delay = params.Seconds(d)
	}

	return sequencer.Request{
		Group:       group,
		Serial:      serial,
		Button:      button,
		RepeatCount: cv.RepeatCount,
		RepeatDelay: delay,
	}, nil
}
