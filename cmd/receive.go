// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/bridge"
	"github.com/luxcomm/heliograph/pkg/capture"
	"github.com/luxcomm/heliograph/pkg/photon"
)

var (
	receiveListen  string
	monitorListen  string
	monitorUser    string
	capturePath    string
	statsInterval  time.Duration
	disableMonitor bool
)

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Run the receive bridge daemon",
	Long: `Decode characters from the light sensor continuously and push every
completed message to the registered TCP client as a JSON notification.
A WebSocket mirror of the notification stream is served on the monitor
port; protect it with HTTP Basic auth by setting --monitor-user and the
HELIOGRAPH_PASSWORD environment variable.`,
	RunE: runReceive,
}

func init() {
	receiveCmd.Flags().StringVar(&receiveListen, "listen", "", "Listen address (default :9001)")
	receiveCmd.Flags().StringVar(&monitorListen, "monitor", "", "Monitor WebSocket address (default :9002)")
	receiveCmd.Flags().StringVar(&monitorUser, "monitor-user", "", "Username for monitor Basic auth")
	receiveCmd.Flags().StringVar(&capturePath, "capture", "", "Capture received events to a CBOR file")
	receiveCmd.Flags().DurationVar(&statsInterval, "stats-interval", 0, "Log link statistics at this interval (0 disables)")
	receiveCmd.Flags().BoolVar(&disableMonitor, "no-monitor", false, "Disable the WebSocket monitor mirror")
	rootCmd.AddCommand(receiveCmd)
}

func runReceive(_ *cobra.Command, _ []string) error {
	log := initLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if receiveListen != "" {
		cfg.Receive.Listen = receiveListen
	}
	if monitorListen != "" {
		cfg.Receive.Monitor = monitorListen
	}
	if monitorUser != "" {
		cfg.Receive.MonitorUser = monitorUser
	}
	if capturePath != "" {
		cfg.Receive.Capture = capturePath
	}

	sensor, err := openSensor(cfg)
	if err != nil {
		return err
	}

	clk := photon.NewBitClock(time.Duration(cfg.Link.BitDurationMS) * time.Millisecond)
	rx := photon.NewReceiver(sensor, clk)
	b := bridge.NewReceiveBridge(rx, log)

	if cfg.Receive.Capture != "" {
		w, err := capture.Create(cfg.Receive.Capture)
		if err != nil {
			return err
		}
		defer w.Close()
		b.SetCapture(w)
		log.Info().Str("path", cfg.Receive.Capture).Msg("capturing received events")
	}

	if cfg.Receive.MonitorUser != "" {
		pass, err := getPassword()
		if err != nil {
			return err
		}
		b.SetMonitorAuth(cfg.Receive.MonitorUser, pass)
	}

	go b.RunDecodeLoop()

	if !disableMonitor {
		go func() {
			if err := b.ServeMonitor(cfg.Receive.Monitor); err != nil {
				log.Error().Err(err).Msg("monitor mirror stopped")
			}
		}()
	}

	if statsInterval > 0 {
		go func() {
			for range time.Tick(statsInterval) {
				log.Info().Str("stats", b.Stats().String()).Msg("link statistics")
			}
		}()
	}

	log.Info().
		Dur("bit_duration", clk.BitDuration()).
		Str("listen", cfg.Receive.Listen).
		Msg("starting receive bridge")

	return b.ListenAndServe(cfg.Receive.Listen)
}
