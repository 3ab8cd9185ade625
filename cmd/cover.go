// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/jarolift/internal/config"
	"github.com/Thermoquad/jarolift/internal/params"
	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/spf13/cobra"
)

var coverCounter string

// coverAction picks the button for a cover, honouring reverse
type coverAction func(cv *config.Cover) keeloq.Button

func newCoverCmd(use, short string, action coverAction) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <cover>",
		Short: short,
		Long: short + `.

The cover is looked up by name in the configuration file. Its serial, group,
repeat settings and reverse flag apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.OutOrStdout(), reportTransmit(cmd.ErrOrStderr()), true)
			if err != nil {
				return err
			}
			defer s.Close()

			cv, err := s.cfg.Cover(args[0])
			if err != nil {
				return err
			}
			req, err := cv.Request(action(cv))
			if err != nil {
				return err
			}
			if req.Counter, err = params.Counter(coverCounter); err != nil {
				return err
			}
			return s.seq.Send(req)
		},
	}
	c.Flags().StringVar(&coverCounter, "counter", "", "Explicit counter (hex, 0 uses the stored counter)")
	return c
}

func init() {
	rootCmd.AddCommand(newCoverCmd("open", "Raise a configured cover", (*config.Cover).Open))
	rootCmd.AddCommand(newCoverCmd("close", "Lower a configured cover", (*config.Cover).Close))
	rootCmd.AddCommand(newCoverCmd("stop", "Stop a configured cover", (*config.Cover).Stop))
}
