// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GitNik1/vebus/pkg/vebus"
)

var identifyTimeout int

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Read the inverter's software version and device state",
	Long: `VE.Bus is a fixed point-to-point master/inverter link, not a
discoverable multi-device bus, so there is no broadcast discovery request
to send. The closest equivalent is asking the one device on the other end
who it is: its software version word and its current device state.

Exit codes:
  0 - Both responses received
  1 - Timeout before both responses arrived
  2 - Connection error`,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().IntVar(&identifyTimeout, "timeout", 5, "Timeout in seconds")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer transport.Close()

	fmt.Printf("vebusctl identify\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	v := vebus.New(transport, vebus.Config{})

	var version, deviceState uint32
	var haveVersion, haveState bool
	done := make(chan struct{})
	v.RegisterResponseCb(func(r vebus.ResponseData) {
		switch r.Command {
		case vebus.SendSoftwareVersionPart0:
			version = r.Value.U32
			haveVersion = true
		case vebus.GetSetDeviceState:
			deviceState = r.Value.U32
			haveState = true
		}
		if haveVersion && haveState {
			close(done)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(identifyTimeout)*time.Second)
	defer cancel()

	go func() { _ = v.Run(ctx) }()
	go func() { _ = v.Maintain(ctx, maintainInterval) }()

	v.ReadSoftwareVersion()
	v.CommandReadDeviceState()

	select {
	case <-done:
		fmt.Printf("software_version=0x%08X device_state=%d\n", version, deviceState)
		os.Exit(0)
	case <-ctx.Done():
		if haveVersion || haveState {
			fmt.Printf("partial response: have_version=%t have_state=%t\n", haveVersion, haveState)
		}
		fmt.Fprintf(os.Stderr, "TIMEOUT: no response within %d seconds\n", identifyTimeout)
		os.Exit(1)
	}

	return nil
}
