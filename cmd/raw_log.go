// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Thermoquad/jarolift/internal/transmit"
	"github.com/Thermoquad/jarolift/pkg/bridge"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/spf13/cobra"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display bridge traffic in human-readable format",
	Long: `Continuously decode and display RF bridge messages as they arrive.

TRANSMIT messages carrying a Jarolift envelope are decoded down to their frame
fields. With a manufacturer key available the KeeLoq block is decrypted too.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	var key *keeloq.ManufacturerKey
	if cfg, err := loadConfig(); err == nil {
		if k, err := cfg.Key(); err == nil {
			key = &k
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Jarolift - Raw Bridge Log\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	return logMessages(conn, out, key)
}

// logMessages decodes bridge traffic from r until the link closes
func logMessages(r io.Reader, out io.Writer, key *keeloq.ManufacturerKey) error {
	decoder := bridge.NewDecoder()
	buf := make([]byte, 128)

	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			msg, derr := decoder.DecodeByte(buf[i])
			if derr != nil {
				fmt.Fprintf(out, "[ERROR] %v\n", derr)
				continue
			}
			if msg != nil {
				fmt.Fprintf(out, "[%s] %s", time.Now().Format("15:04:05.000"), bridge.FormatMessage(msg))
				logEnvelope(out, msg, key)
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, transmit.ErrConnectionClosed) || errors.Is(err, io.EOF) {
			log.Printf("Connection closed")
			return nil
		}
		return fmt.Errorf("read error: %w", err)
	}
}

// logEnvelope prints the frame carried by a TRANSMIT message
func logEnvelope(out io.Writer, msg *bridge.Message, key *keeloq.ManufacturerKey) {
	if msg.Type != bridge.MsgTransmit {
		return
	}
	envelope, ok := msg.Envelope()
	if !ok {
		return
	}
	frame, err := keeloq.DecodeEnvelope(envelope)
	if err != nil {
		fmt.Fprintf(out, "  (not a Jarolift envelope: %v)\n", err)
		return
	}
	if key == nil {
		fmt.Fprint(out, keeloq.FormatFrame(frame, nil))
		return
	}
	pt, err := frame.Decrypt(*key)
	if err != nil {
		fmt.Fprint(out, keeloq.FormatFrame(frame, nil))
		fmt.Fprintf(out, "  (%v)\n", err)
		return
	}
	fmt.Fprint(out, keeloq.FormatFrame(frame, &pt))
}
