// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge connection flags
	bridgeURL      string
	bridgeUsername string
	bridgeNoVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "vebusctl",
	Short: "VE.Bus master protocol CLI",
	Long: `vebusctl talks the VE.Bus master protocol to a Victron MultiPlus
inverter/charger, either over a local RS-485 adapter or through a remote
serial-to-WebSocket bridge.

Connection modes:
  Serial: --port /dev/ttyUSB0 [--baud 2400]
  Bridge: --url ws://host/path [--username user]

For bridge authentication, the password is read from the
VEBUS_BRIDGE_PASSWORD environment variable, or prompted interactively if
unset. There is no --password flag, to avoid leaking credentials into
shell history.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 2400, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&bridgeURL, "url", "u", "", "Bridge WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&bridgeUsername, "username", "", "Username for bridge HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&bridgeNoVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
