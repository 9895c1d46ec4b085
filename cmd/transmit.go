// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/bridge"
	"github.com/luxcomm/heliograph/pkg/photon"
)

var transmitListen string

var transmitCmd = &cobra.Command{
	Use:   "transmit",
	Short: "Run the transmit bridge daemon",
	Long: `Accept TCP clients speaking newline-delimited JSON and transmit their
text and image requests over the optical link. Each request is
acknowledged once its last bit has left the emitter.`,
	RunE: runTransmit,
}

func init() {
	transmitCmd.Flags().StringVar(&transmitListen, "listen", "", "Listen address (default :9000)")
	rootCmd.AddCommand(transmitCmd)
}

func runTransmit(_ *cobra.Command, _ []string) error {
	log := initLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if transmitListen != "" {
		cfg.Transmit.Listen = transmitListen
	}

	emitter, err := openEmitter(cfg)
	if err != nil {
		return err
	}

	clk := photon.NewBitClock(time.Duration(cfg.Link.BitDurationMS) * time.Millisecond)
	tx := photon.NewTransmitter(emitter, clk)

	status, err := openStatusIndicator(cfg)
	if err != nil {
		return err
	}
	if status != nil {
		tx.SetStatusIndicator(status)
	}

	log.Info().
		Dur("bit_duration", clk.BitDuration()).
		Str("listen", cfg.Transmit.Listen).
		Msg("starting transmit bridge")

	return bridge.NewTransmitBridge(tx, log).ListenAndServe(cfg.Transmit.Listen)
}
