// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/jarolift/internal/config"
	"github.com/Thermoquad/jarolift/internal/sequencer"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for configured covers",
	Long: `Control the covers of the configuration file via an interactive terminal UI.

Keys:
  up/down, j/k  select cover
  o             open (raise) the selected cover
  c             close (lower) the selected cover
  s             stop
  L             learn (pair the cover's serial with a receiver in learning mode)
  X             clear (erase every remote paired with the receiver)
  tab           edit the counter override (empty or 0 uses the stored counter)
  q             quit

Bursts run one at a time. Supports serial, WebSocket and --dry-run.`,
	Args: cobra.NoArgs,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

func runControl(cmd *cobra.Command, args []string) error {
	var p *tea.Program

	// dry-run envelopes would corrupt the alt screen, so they are logged instead
	s, err := openSession(io.Discard, func(e sequencer.Event) {
		if p != nil {
			p.Send(transmitMsg(e))
		}
	}, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(s.cfg.Covers) == 0 {
		return fmt.Errorf("no covers configured (see --config)")
	}

	m := initialControlModel(s.cfg.Covers, s.connInfo, sequencerBurst(s.seq))
	p = tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// sequencerBurst runs TUI actions on the session's sequencer
func sequencerBurst(seq *sequencer.Sequencer) burstFunc {
	return func(cv config.Cover, command sequencer.Command, button keeloq.Button, counter uint32) error {
		req, err := cv.Request(button)
		if err != nil {
			return err
		}
		req.Counter = counter

		switch command {
		case sequencer.CommandLearn:
			return seq.Learn(req)
		case sequencer.CommandClear:
			return seq.Clear(req)
		default:
			return seq.Send(req)
		}
	}
}
