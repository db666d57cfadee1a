// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var bridgeTestCmd = &cobra.Command{
	Use:   "bridge_test",
	Short: "Test raw bridge connection stability",
	Long: `Open the configured connection and just listen, logging any bytes
received, without running the protocol engine on top. Useful for
debugging a flaky WebSocket bridge independently of VE.Bus framing.

Exit codes:
  0 - Test completed normally
  1 - Test failed
  2 - Connection error`,
	RunE: runBridgeTest,
}

var bridgeTestDuration int

func init() {
	rootCmd.AddCommand(bridgeTestCmd)
	bridgeTestCmd.Flags().IntVar(&bridgeTestDuration, "duration", 30, "Test duration in seconds")
}

func runBridgeTest(cmd *cobra.Command, args []string) error {
	transport, connInfo, err := openTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer transport.Close()

	fmt.Printf("Connection stability test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", bridgeTestDuration)

	type chunk struct {
		bytes []byte
		err   error
	}
	readChan := make(chan chunk, 100)

	go func() {
		for {
			if !transport.RxAvailable() {
				time.Sleep(time.Millisecond)
				continue
			}
			b, err := transport.ReadByte()
			if err != nil {
				readChan <- chunk{err: err}
				return
			}
			readChan <- chunk{bytes: []byte{b}}
		}
	}()

	endTime := time.Now().Add(time.Duration(bridgeTestDuration) * time.Second)
	bytesReceived := 0

	fmt.Printf("Listening for data...\n\n")

	for time.Now().Before(endTime) {
		select {
		case c := <-readChan:
			if c.err != nil {
				fmt.Printf("\n[%s] Connection error: %v\n", time.Now().Format("15:04:05.000"), c.err)
				fmt.Printf("\n--- Test Results ---\nBytes received: %d\nResult: FAILED (connection error)\n", bytesReceived)
				os.Exit(1)
			}
			bytesReceived += len(c.bytes)
			fmt.Printf("[%s] % X\n", time.Now().Format("15:04:05.000"), c.bytes)

		case <-time.After(1 * time.Second):
			remaining := time.Until(endTime).Seconds()
			fmt.Printf("[%s] Still connected... (%.0fs remaining)\n", time.Now().Format("15:04:05.000"), remaining)
		}
	}

	fmt.Printf("\n--- Test Results ---\n")
	fmt.Printf("Duration: %d seconds\n", bridgeTestDuration)
	fmt.Printf("Bytes received: %d\n", bytesReceived)
	fmt.Printf("Result: PASSED (connection stable)\n")

	return nil
}
