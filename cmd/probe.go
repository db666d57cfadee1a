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

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connectivity by waiting for a sync frame",
	Long: `Open the configured connection and wait for the inverter's first
sync frame. VE.Bus has no multi-device discovery handshake — a sync frame
on the wire is the strongest signal that something is actually answering.

Exit codes:
  0 - Sync frame received before timeout
  1 - Timeout reached without receiving a sync frame
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a sync frame")
}

func runProbe(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer transport.Close()

	fmt.Printf("vebusctl probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for a sync frame...\n\n")

	v := vebus.New(transport, vebus.Config{})
	synced := make(chan []byte, 1)
	v.RegisterReceiveCb(func(frame []byte) {
		if len(frame) < 5 || frame[0] != vebus.MPID0 || frame[1] != vebus.MPID1 || frame[2] != vebus.SyncFrame {
			return
		}
		select {
		case synced <- frame:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(probeTimeout)*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- v.Run(ctx) }()
	go func() { _ = v.Maintain(ctx, maintainInterval) }()

	select {
	case frame := <-synced:
		fmt.Printf("SUCCESS: received a sync frame\n")
		fmt.Printf("  bytes: % X\n", frame)
		os.Exit(0)
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "TIMEOUT: no sync frame received within %d seconds\n", probeTimeout)
		os.Exit(1)
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "TIMEOUT: no sync frame received within %d seconds\n", probeTimeout)
		os.Exit(1)
	}

	return nil
}
