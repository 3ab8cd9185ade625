// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/jarolift/pkg/bridge"
	"github.com/spf13/cobra"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test the bridge link with a PING",
	Long: `Send a PING to the RF bridge and wait for its PONG until timeout.

Invalid bytes and unrelated messages are ignored while waiting.

Exit codes:
  0 - PONG received before timeout
  1 - Timeout reached without a PONG
  2 - Connection error

Nothing is transmitted over the air.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a PONG")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Jarolift - Bridge Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)

	ping, err := bridge.Encode(bridge.NewPing())
	if err != nil {
		return err
	}
	if _, err := conn.Write(ping); err != nil {
		fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("PING sent, waiting for PONG...\n\n")

	decoder := bridge.NewDecoder()
	buf := make([]byte, 128)

	pongChan := make(chan *bridge.Message, 1)
	errChan := make(chan error, 1)

	go func() {
		invalidBytes := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				msg, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					invalidBytes++
					continue
				}
				if msg != nil && msg.Type == bridge.MsgPong {
					if invalidBytes > 0 {
						fmt.Printf("(skipped %d invalid bytes before sync)\n", invalidBytes)
					}
					pongChan <- msg
					return
				}
			}
		}
	}()

	start := time.Now()
	select {
	case msg := <-pongChan:
		fmt.Printf("SUCCESS: Received %s after %s\n", bridge.FormatMessageType(msg.Type), time.Since(start).Round(time.Millisecond))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(packetTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No PONG received within %d seconds\n", packetTestTimeout)
		os.Exit(1)
	}

	return nil
}
