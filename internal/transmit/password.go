// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transmit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// EnvPassword holds the WebSocket Basic auth password
const EnvPassword = "JAROLIFT_PASSWORD"

// Password returns the bridge password from the environment, or prompts
// for it on the terminal without echo
func Password() (string, error) {
	if pw := os.Getenv(EnvPassword); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	return readPasswordLine(os.Stdin)
}

// readPasswordLine reads one line when stdin is not a terminal
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
