// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import "sync"

// Emitter is the transmit-side light source. SetLevel changes the output
// level immediately; all timing is the transmitter's responsibility.
type Emitter interface {
	SetLevel(on bool)
}

// Sensor is the receive-side light detector. Read returns the current
// level as an instantaneous sample with no implicit delay.
type Sensor interface {
	Read() bool
}

// MemoryLink is a virtual optical channel: a shared level the emitter side
// writes and the sensor side reads. It backs the --loopback driver and the
// package tests.
type MemoryLink struct {
	mu    sync.Mutex
	level bool
}

// NewMemoryLink creates a loopback link with the level low.
func NewMemoryLink() *MemoryLink {
	return &MemoryLink{}
}

// SetLevel implements Emitter.
func (l *MemoryLink) SetLevel(on bool) {
	l.mu.Lock()
	l.level = on
	l.mu.Unlock()
}

// Read implements Sensor.
func (l *MemoryLink) Read() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}
