// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Thermoquad/jarolift/internal/params"
	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/spf13/cobra"
)

var (
	sendSerial      string
	sendGroup       string
	sendButton      string
	sendCounter     string
	sendHold        bool
	sendRepeatCount string
	sendRepeatDelay string
	sendCover       string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Transmit a button press",
	Long: `Encrypt and transmit one button press, repeated --repeat-count extra times.

With --counter 0 (the default) the stored rolling counter for the serial is
used and advanced by the number of packets sent. An explicit counter is
replayed unchanged and leaves the stored counter alone.

Buttons: down (0x2), stop (0x4), up (0x8), learn (0xA), or any 4-bit hex code.`,
	Example: `  jarolift send --dry-run --serial 0x106aa01 --group 0x0001 --button up
  jarolift send -p /dev/ttyUSB0 --button 0x2 --repeat-count 2 --repeat-delay 0.5`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Pair a serial with a receiver in learning mode",
	Long: `Send LEARN, wait one second, then STOP.

Put the receiver into learning mode first (usually by pressing its pairing
button). Consumes two counter values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairing(cmd, sequencer.CommandLearn)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all remotes paired with a receiver",
	Long: `Send LEARN, six STOPs half a second apart, then UP.

Consumes eight counter values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPairing(cmd, sequencer.CommandClear)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(clearCmd)

	for _, c := range []*cobra.Command{sendCmd, learnCmd, clearCmd} {
		c.Flags().StringVar(&sendSerial, "serial", "", "Device serial (hex, default 0x106aa01)")
		c.Flags().StringVar(&sendGroup, "group", "", "Group mask (hex, default 0x0001)")
		c.Flags().StringVar(&sendCounter, "counter", "", "Explicit counter (hex, 0 uses the stored counter)")
		c.Flags().StringVar(&sendCover, "cover", "", "Take serial and group from a configured cover")
	}
	sendCmd.Flags().StringVar(&sendButton, "button", "", "Button name or hex code (default down)")
	sendCmd.Flags().BoolVar(&sendHold, "hold", false, "Send as a long press")
	sendCmd.Flags().StringVar(&sendRepeatCount, "repeat-count", "", "Extra transmissions after the first (default 0)")
	sendCmd.Flags().StringVar(&sendRepeatDelay, "repeat-delay", "", "Seconds between transmissions (default 0.2)")
}

// flagRequest parses the shared flags into a request
func flagRequest(s *session) (sequencer.Request, error) {
	req, err := params.ParseRequest(map[string]string{
		params.ParamSerial:      sendSerial,
		params.ParamGroup:       sendGroup,
		params.ParamButton:      sendButton,
		params.ParamCounter:     sendCounter,
		params.ParamHold:        strconv.FormatBool(sendHold),
		params.ParamRepeatCount: sendRepeatCount,
		params.ParamRepeatDelay: sendRepeatDelay,
	})
	if err != nil {
		return sequencer.Request{}, err
	}
	if sendCover == "" {
		return req, nil
	}

	cv, err := s.cfg.Cover(sendCover)
	if err != nil {
		return sequencer.Request{}, err
	}
	coverReq, err := cv.Request(req.Button)
	if err != nil {
		return sequencer.Request{}, err
	}
	req.Serial = coverReq.Serial
	req.Group = coverReq.Group
	return req, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.OutOrStdout(), reportTransmit(cmd.ErrOrStderr()), true)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := flagRequest(s)
	if err != nil {
		return err
	}
	return s.seq.Send(req)
}

func runPairing(cmd *cobra.Command, command sequencer.Command) error {
	s, err := openSession(cmd.OutOrStdout(), reportTransmit(cmd.ErrOrStderr()), true)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := flagRequest(s)
	if err != nil {
		return err
	}

	if command == sequencer.CommandClear {
		return s.seq.Clear(req)
	}
	return s.seq.Learn(req)
}

// reportTransmit prints one status line per packet sent
func reportTransmit(w io.Writer) func(sequencer.Event) {
	return func(e sequencer.Event) {
		if e.Command == sequencer.CommandRaw {
			fmt.Fprintf(w, "Sent raw envelope (%d bytes)\n", len(e.Envelope))
			return
		}
		fmt.Fprintf(w, "Sent %-5s serial 0x%07X group 0x%04X counter %d\n",
			e.Button, e.Serial, e.Group, e.Counter)
	}
}

var rawCmd = &cobra.Command{
	Use:   "raw <envelope>",
	Short: "Relay a prebuilt envelope",
	Long: `Hand a complete transport envelope (b64:...) to the bridge unchanged.

No counter is read or written.`,
	Args: cobra.ExactArgs(1),
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.OutOrStdout(), reportTransmit(cmd.ErrOrStderr()), false)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := keeloq.DecodeEnvelope(args[0]); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: envelope does not decode as a Jarolift frame: %v\n", err)
	}
	return s.seq.SendRaw(args[0])
}
