// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/GitNik1/vebus/pkg/vebus"
)

// GetPassword retrieves the bridge password from the environment, or
// prompts interactively with echo disabled if unset.
func GetPassword() (string, error) {
	if pw := os.Getenv("VEBUS_BRIDGE_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// openTransport opens either a serial or bridge transport based on the
// persistent connection flags, along with a human-readable description
// for status output.
func openTransport() (vebus.Transport, string, error) {
	if bridgeURL != "" {
		password := ""
		if bridgeUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		t, err := vebus.DialBridgeTransport(bridgeURL, bridgeUsername, password, bridgeNoVerify)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("bridge: %s", bridgeURL), nil
	}

	if portName != "" {
		// No RS-485 enable-pin control is available from a CLI running on
		// a development host; adapters that need it wire their own GPIO
		// behind a DirectionFunc in an embedding application instead.
		t, err := vebus.OpenSerialTransport(portName, baudRate, nil)
		if err != nil {
			return nil, "", err
		}
		return t, fmt.Sprintf("serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}
