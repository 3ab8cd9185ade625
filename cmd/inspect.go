// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/jarolift/pkg/keeloq"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <envelope>",
	Short: "Decode a transport envelope",
	Long: `Decode a b64: transport envelope back into its frame fields.

When a manufacturer key is available (--msb/--lsb, environment or config)
the KeeLoq block is decrypted too and checked against the frame's serial.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	frame, err := keeloq.DecodeEnvelope(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	key, keyErr := cfg.Key()
	if keyErr != nil {
		fmt.Fprint(out, keeloq.FormatFrame(frame, nil))
		return nil
	}

	pt, err := frame.Decrypt(key)
	if errors.Is(err, keeloq.ErrSerialMismatch) {
		fmt.Fprint(out, keeloq.FormatFrame(frame, nil))
		return fmt.Errorf("wrong manufacturer key: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(out, keeloq.FormatFrame(frame, &pt))
	return nil
}
