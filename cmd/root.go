// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Config and logging flags
	configPath string
	logLevel   string
	logFile    string

	// Link timing flags
	bitDurationMS int

	// Pin driver flags
	txPinName     string
	rxPinName     string
	statusPinName string
	serialPort    string
	serialBaud    int
	useLoopback   bool
)

var rootCmd = &cobra.Command{
	Use:   "heliograph",
	Short: "Free-space optical link bridge",
	Long: `Heliograph - Bridge TCP/JSON clients over a free-space optical link.

The link carries an asynchronous framed byte protocol over any light
emitter/sensor pair: characters travel as start/stop-bit frames paced by a
fixed bit duration, messages are delimited by '#' and '*', and images move
as base64 text split across chunk-tagged messages. There is no
acknowledgment, retransmission or CRC on the channel.

Pin drivers:
  GPIO:     --tx-pin GPIO17 / --rx-pin GPIO27 (periph.io pin names)
  Serial:   --serial-port /dev/ttyUSB0 (emit on DTR, sense on CTS)
  Loopback: --loopback (in-memory channel, dry runs only)

For WebSocket monitor authentication, the password is read from the
HELIOGRAPH_PASSWORD environment variable, or prompted interactively if not
set. A --password flag is intentionally not provided to avoid leaking
credentials in shell history.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Rotating log file (in addition to stderr)")

	rootCmd.PersistentFlags().IntVar(&bitDurationMS, "bit-ms", 50, "Bit duration in milliseconds")

	rootCmd.PersistentFlags().StringVar(&txPinName, "tx-pin", "", "GPIO pin driving the light emitter")
	rootCmd.PersistentFlags().StringVar(&rxPinName, "rx-pin", "", "GPIO pin reading the light sensor")
	rootCmd.PersistentFlags().StringVar(&statusPinName, "status-pin", "", "GPIO pin for the transmit status blink")
	rootCmd.PersistentFlags().StringVarP(&serialPort, "serial-port", "p", "", "Serial port for modem-line pin driver")
	rootCmd.PersistentFlags().IntVarP(&serialBaud, "baud", "b", 115200, "Baud rate (serial driver only)")
	rootCmd.PersistentFlags().BoolVar(&useLoopback, "loopback", false, "Use the in-memory loopback channel")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
