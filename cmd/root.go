// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Bridge flags
	ackTimeout time.Duration
	dryRun     bool

	// Configuration flags
	configPath string
	keyMSB     string
	keyLSB     string
)

var rootCmd = &cobra.Command{
	Use:   "jarolift",
	Short: "Jarolift KeeLoq remote control",
	Long: `Jarolift - Build and transmit KeeLoq rolling-code commands for Jarolift covers.

Commands are encrypted with the manufacturer key, encoded into the RF bridge's
pulse-width envelope and handed to the bridge over a serial port or WebSocket.
Rolling counters are persisted per serial so every packet uses a fresh code.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Dry run:   --dry-run (print envelopes, counters are not persisted)

The manufacturer key is read from the config file (msb/lsb), the
JAROLIFT_MSB/JAROLIFT_LSB environment variables, or --msb/--lsb, in
increasing order of precedence.

For WebSocket authentication, the password is read from the JAROLIFT_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Bridge flags
	rootCmd.PersistentFlags().DurationVar(&ackTimeout, "ack-timeout", 0, "Wait this long for the bridge to acknowledge each packet (0 disables)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print envelopes to stdout instead of transmitting")

	// Configuration flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&keyMSB, "msb", "", "Manufacturer key high 32 bits (hex)")
	rootCmd.PersistentFlags().StringVar(&keyLSB, "lsb", "", "Manufacturer key low 32 bits (hex)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
