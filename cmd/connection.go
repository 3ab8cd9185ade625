// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Thermoquad/jarolift/internal/config"
	"github.com/Thermoquad/jarolift/internal/counter"
	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/internal/transmit"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
)

// session bundles everything one command invocation needs
type session struct {
	cfg      *config.Config
	key      keeloq.ManufacturerKey
	store    counter.Store
	seq      *sequencer.Sequencer
	connInfo string
	closers  []io.Closer
}

// Close releases the transmitter and counter store
func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// loadConfig reads --config and applies the environment and key flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if keyMSB != "" {
		cfg.MSB = keyMSB
	}
	if keyLSB != "" {
		cfg.LSB = keyLSB
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the configured counter store. Dry runs never persist.
func openStore(cfg *config.Config) (counter.Store, io.Closer, error) {
	if dryRun {
		return counter.NewMemoryStore(), nil, nil
	}

	switch cfg.Store {
	case config.StoreBolt:
		store, err := counter.OpenBoltStore(cfg.CounterPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StoreMemory:
		return counter.NewMemoryStore(), nil, nil
	default:
		store := counter.NewFileStore(cfg.CounterPath)
		store.Logger = debugLogger()
		return store, nil, nil
	}
}

// openTransmitter opens the transmitter selected by the connection flags
func openTransmitter(out io.Writer) (sequencer.Transmitter, io.Closer, string, error) {
	if dryRun {
		return transmit.NewWriter(out), nil, "Dry run: stdout", nil
	}

	conn, connInfo, err := openConnection()
	if err != nil {
		return nil, nil, "", err
	}

	b := transmit.NewBridge(conn, transmit.BridgeOptions{
		AckTimeout: ackTimeout,
		Logger:     debugLogger(),
	})
	return b, b, connInfo, nil
}

// openConnection opens either a serial or WebSocket connection based on flags
func openConnection() (transmit.Conn, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = transmit.Password()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := transmit.OpenWebSocket(context.Background(), wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		conn, err := transmit.OpenSerial(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port, --url or --dry-run must be specified")
}

// openSession loads configuration and opens the store, transmitter and
// sequencer for one command. Raw relays run without a manufacturer key.
func openSession(out io.Writer, onTransmit func(sequencer.Event), needKey bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	key, err := cfg.Key()
	if err != nil && needKey {
		return nil, err
	}

	s := &session{cfg: cfg, key: key}

	store, storeCloser, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	s.store = store
	if storeCloser != nil {
		s.closers = append(s.closers, storeCloser)
	}

	tx, txCloser, connInfo, err := openTransmitter(out)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.connInfo = connInfo
	if txCloser != nil {
		s.closers = append(s.closers, txCloser)
	}

	s.seq, err = sequencer.New(sequencer.Options{
		Key:         key,
		Store:       store,
		Transmitter: tx,
		MinDelay:    cfg.MinDelay(),
		Logger:      debugLogger(),
		OnTransmit:  onTransmit,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// debugLogger writes to stderr when JAROLIFT_DEBUG is set
func debugLogger() *log.Logger {
	if os.Getenv("JAROLIFT_DEBUG") != "" {
		return log.New(os.Stderr, "jarolift: ", log.LstdFlags|log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}
