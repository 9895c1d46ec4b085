// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/photon"
)

var linkTestTimeout time.Duration

var linkTestCmd = &cobra.Command{
	Use:   "link_test",
	Short: "Wait for one valid message on the optical link",
	Long: `Listen on the light sensor until one complete framed message decodes,
then exit. Point a transmitter at the sensor and run "send" from the
far side to verify alignment and timing end to end.

Exit codes: 0 message received, 1 timed out, 2 sensor unavailable.`,
	Run: runLinkTest,
}

func init() {
	linkTestCmd.Flags().DurationVar(&linkTestTimeout, "timeout", 30*time.Second, "Give up after this long")
	rootCmd.AddCommand(linkTestCmd)
}

func runLinkTest(_ *cobra.Command, _ []string) {
	log := initLogging()

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("configuration")
		os.Exit(2)
	}

	sensor, err := openSensor(cfg)
	if err != nil {
		log.Error().Err(err).Msg("sensor unavailable")
		os.Exit(2)
	}

	clk := photon.NewBitClock(time.Duration(cfg.Link.BitDurationMS) * time.Millisecond)
	rx := photon.NewReceiver(sensor, clk)

	got := make(chan photon.Event, 1)
	asm := photon.NewAssembler(rx.Stats(), func(ev photon.Event) {
		select {
		case got <- ev:
		default:
		}
	})

	// The decode loop has no cancellation point; on timeout the process
	// exits with the goroutine still blocked in WaitForStart.
	go func() {
		for {
			c, ok := rx.ReceiveChar()
			if !ok {
				continue
			}
			asm.Feed(c)
		}
	}()

	log.Info().
		Dur("bit_duration", clk.BitDuration()).
		Dur("timeout", linkTestTimeout).
		Msg("waiting for a framed message")

	select {
	case ev := <-got:
		switch ev.Kind {
		case photon.EventText:
			log.Info().Str("text", ev.Text).Msg("link ok")
		case photon.EventImage:
			log.Info().Str("name", ev.Name).Msg("link ok, image received")
		}
		os.Exit(0)
	case <-time.After(linkTestTimeout):
		log.Error().Str("stats", rx.Stats().String()).Msg("no message within timeout")
		os.Exit(1)
	}
}
