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

var (
	snapshotOutput string
	snapshotWait   int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the current status store as CBOR for offline diagnosis",
	Long: `Run the protocol engine just long enough to pick up broadcast
status frames, then serialize the current Status aggregate (LED,
MultiPlus status, DC info, AC info per phase) to CBOR and write it to
stdout or --output.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "Output file (default: stdout)")
	snapshotCmd.Flags().IntVar(&snapshotWait, "wait", 2, "Seconds to let status settle before capturing")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	transport, _, err := openTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	v := vebus.New(transport, vebus.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(snapshotWait)*time.Second)
	defer cancel()

	go func() { _ = v.Run(ctx) }()
	go func() { _ = v.Maintain(ctx, maintainInterval) }()
	<-ctx.Done()

	data, err := vebus.EncodeSnapshot(v.Snapshot())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if snapshotOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(snapshotOutput, data, 0o644)
}
