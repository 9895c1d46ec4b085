// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

// Receiver samples a Sensor and recovers characters from the optical
// protocol's bit timing.
//
// There is no shared clock between the two ends: the receiver blocks in
// WaitForStart until the line goes high, and that start-bit edge is the
// only synchronization point. Every character resynchronizes independently,
// so a mistimed character corrupts at most itself.
type Receiver struct {
	sensor Sensor
	clk    *BitClock
	stats  *Statistics
}

// NewReceiver creates a receiver over the given sensor and clock.
func NewReceiver(sensor Sensor, clk *BitClock) *Receiver {
	return &Receiver{sensor: sensor, clk: clk, stats: NewStatistics()}
}

// Clock returns the receiver's bit clock.
func (r *Receiver) Clock() *BitClock {
	return r.clk
}

// Stats returns the receiver's counters.
func (r *Receiver) Stats() *Statistics {
	return r.stats
}

// SampleBit reads the sensor once, with no delay.
func (r *Receiver) SampleBit() byte {
	if r.sensor.Read() {
		return 1
	}
	return 0
}

// sampleBitStable takes three consecutive samples and returns the majority
// value, suppressing single-sample transients.
func (r *Receiver) sampleBitStable() byte {
	ones := 0
	for i := 0; i < StableVotes; i++ {
		if r.sensor.Read() {
			ones++
		}
	}
	if ones > StableVotes/2 {
		return 1
	}
	return 0
}

// WaitForStart polls the sensor at a quarter-bit cadence until it observes
// a high level. It blocks indefinitely; the protocol defines no timeout.
func (r *Receiver) WaitForStart() {
	for r.SampleBit() == 0 {
		r.clk.SleepQuarterBit()
	}
}

// ReceiveChar blocks until a start bit arrives, then samples one character
// frame. The first data bit is sampled 1.5 bit durations after the start
// edge, centering every sample in its bit slot; the stop bit is skipped
// with a final one-bit sleep.
//
// If the decoded value falls outside the printable range it is channel
// noise: ReceiveChar returns ok=false and the caller retries.
func (r *Receiver) ReceiveChar() (byte, bool) {
	r.WaitForStart()
	r.clk.SleepBits(1.5)

	var c byte
	for i := 0; i < DataBits; i++ {
		c = c<<1 | r.sampleBitStable()
		r.clk.SleepBit()
	}
	r.clk.SleepBit() // stop bit

	if c < PrintableMin || c > PrintableMax {
		r.stats.NoiseChars++
		return 0, false
	}
	r.stats.CharsDecoded++
	return c, true
}
