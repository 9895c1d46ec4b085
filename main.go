// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs
//
// Heliograph - Free-Space Optical Link Bridge
//
// Bridges TCP clients exchanging newline-delimited JSON to an optical
// channel carrying an asynchronous framed byte protocol.

package main

import (
	"os"

	"github.com/luxcomm/heliograph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
