// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/GitNik1/vebus/pkg/vebus"
)

// maintainInterval is how often the maintainer context polls for
// timeouts, harvests responses, and drains the receive queue.
const maintainInterval = 10 * time.Millisecond

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Log every VE.Bus frame and decoded response as it arrives",
	Long: `Continuously print every raw frame off the bus, plus every decoded
response delivered to the response callback, until interrupted.

Supports both serial and bridge connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	fmt.Printf("vebusctl raw_log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	v := vebus.New(transport, vebus.Config{})
	v.RegisterReceiveCb(func(frame []byte) {
		fmt.Printf("frame: % X\n", frame)
	})
	v.RegisterResponseCb(func(r vebus.ResponseData) {
		fmt.Printf("response: %s\n", vebus.FormatResponseData(r))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := v.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("engine stopped: %v", err)
		}
	}()
	return v.Maintain(ctx, maintainInterval)
}
