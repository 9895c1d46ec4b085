// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/luxcomm/heliograph/pkg/bridge"
)

// Config is the optional TOML configuration file. Values act as defaults;
// flags given explicitly on the command line win.
type Config struct {
	Link     LinkConfig     `toml:"link"`
	Transmit TransmitConfig `toml:"transmit"`
	Receive  ReceiveConfig  `toml:"receive"`
}

type LinkConfig struct {
	BitDurationMS int    `toml:"bit_duration_ms"`
	TxPin         string `toml:"tx_pin"`
	RxPin         string `toml:"rx_pin"`
	StatusPin     string `toml:"status_pin"`
	SerialPort    string `toml:"serial_port"`
	Baud          int    `toml:"baud"`
}

type TransmitConfig struct {
	Listen string `toml:"listen"`
}

type ReceiveConfig struct {
	Listen      string `toml:"listen"`
	Monitor     string `toml:"monitor"`
	MonitorUser string `toml:"monitor_user"`
	Capture     string `toml:"capture"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Link: LinkConfig{BitDurationMS: 50, Baud: 115200},
		Transmit: TransmitConfig{
			Listen: fmt.Sprintf(":%d", bridge.DefaultTransmitPort),
		},
		Receive: ReceiveConfig{
			Listen:  fmt.Sprintf(":%d", bridge.DefaultReceivePort),
			Monitor: fmt.Sprintf(":%d", bridge.DefaultMonitorPort),
		},
	}
}

// loadConfig merges defaults, the optional config file, and explicit flags
// (highest precedence).
func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("bit-ms") {
		cfg.Link.BitDurationMS = bitDurationMS
	}
	if flags.Changed("tx-pin") {
		cfg.Link.TxPin = txPinName
	}
	if flags.Changed("rx-pin") {
		cfg.Link.RxPin = rxPinName
	}
	if flags.Changed("status-pin") {
		cfg.Link.StatusPin = statusPinName
	}
	if flags.Changed("serial-port") {
		cfg.Link.SerialPort = serialPort
	}
	if flags.Changed("baud") {
		cfg.Link.Baud = serialBaud
	}

	if cfg.Link.BitDurationMS <= 0 {
		return nil, fmt.Errorf("bit duration must be positive, got %d ms", cfg.Link.BitDurationMS)
	}
	return cfg, nil
}
