// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

// Package bridge connects the optical link to TCP clients speaking
// newline-delimited JSON: the transmit bridge turns requests into framed
// transmissions, the receive bridge turns decoded frames into
// notifications pushed to a single registered client.
package bridge

import "time"

// Request is a transmit-side client request.
type Request struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// Reply is a transmit-side response to a request.
type Reply struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Notification is a receive-side push event.
type Notification struct {
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Name      string  `json:"name,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// Request and reply type tags
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeAck      = "ack"
	TypeError    = "error"
	TypeStatus   = "status"
	TypeReceived = "received"
)

// Default listen ports
const (
	DefaultTransmitPort = 9000
	DefaultReceivePort  = 9001
	DefaultMonitorPort  = 9002
)

// unixSeconds returns t as Unix seconds with sub-second precision, the
// notification timestamp format.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
