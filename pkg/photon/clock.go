// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// BitClock paces the protocol. Every delay in the transmitter and receiver
// is expressed as a multiple of the bit duration and slept through the
// embedded clock, so tests can substitute a fake clock and drive the
// timeline deterministically.
type BitClock struct {
	clock clockwork.Clock
	bit   time.Duration
}

// NewBitClock creates a real-time bit clock.
func NewBitClock(bit time.Duration) *BitClock {
	return NewBitClockWithClock(bit, clockwork.NewRealClock())
}

// NewBitClockWithClock creates a bit clock over an explicit clock source.
func NewBitClockWithClock(bit time.Duration, clock clockwork.Clock) *BitClock {
	if bit <= 0 {
		bit = DefaultBitDuration
	}
	return &BitClock{clock: clock, bit: bit}
}

// BitDuration returns the configured bit duration.
func (c *BitClock) BitDuration() time.Duration {
	return c.bit
}

// Now returns the clock's current time.
func (c *BitClock) Now() time.Time {
	return c.clock.Now()
}

// SleepBit sleeps for exactly one bit duration.
func (c *BitClock) SleepBit() {
	c.clock.Sleep(c.bit)
}

// SleepBits sleeps for a fractional multiple of the bit duration.
func (c *BitClock) SleepBits(n float64) {
	c.clock.Sleep(time.Duration(n * float64(c.bit)))
}

// SleepQuarterBit sleeps for the start-bit polling quantum.
func (c *BitClock) SleepQuarterBit() {
	c.clock.Sleep(c.bit / StartPollDivisor)
}

// SleepBlinkPhase sleeps for one phase of the status blink.
func (c *BitClock) SleepBlinkPhase() {
	c.clock.Sleep(c.bit / StatusBlinkDivisor)
}

// Sleep sleeps for an absolute duration, for delays that are not bit
// multiples (the inter-chunk settle delay).
func (c *BitClock) Sleep(d time.Duration) {
	c.clock.Sleep(d)
}
