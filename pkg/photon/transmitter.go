// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import (
	"encoding/base64"
	"fmt"
	"sync"
)

// Transmitter drives an Emitter with the optical protocol's bit timing.
//
// All public send operations serialize behind one mutex, so concurrent
// callers (the transmit bridge handles each TCP connection on its own
// goroutine) cannot interleave bits on the shared output.
type Transmitter struct {
	mu      sync.Mutex
	emitter Emitter
	status  Emitter
	clk     *BitClock
}

// NewTransmitter creates a transmitter over the given emitter and clock.
func NewTransmitter(emitter Emitter, clk *BitClock) *Transmitter {
	return &Transmitter{emitter: emitter, clk: clk}
}

// SetStatusIndicator attaches a status light flashed after each completed
// message. It must not be the data emitter: blinking the data channel
// would feed the far receiver garbage edges between messages.
func (t *Transmitter) SetStatusIndicator(status Emitter) {
	t.status = status
}

// Clock returns the transmitter's bit clock.
func (t *Transmitter) Clock() *BitClock {
	return t.clk
}

// SendBit holds the output at the bit's level for one bit duration.
func (t *Transmitter) SendBit(bit byte) {
	t.mu.Lock()
	t.sendBit(bit)
	t.mu.Unlock()
}

func (t *Transmitter) sendBit(bit byte) {
	t.emitter.SetLevel(bit != 0)
	t.clk.SleepBit()
}

// SendChar transmits one character frame: start bit (1), eight data bits
// MSB-first, stop bit (0), then half a bit duration of inter-character gap.
func (t *Transmitter) SendChar(c byte) {
	t.mu.Lock()
	t.sendChar(c)
	t.mu.Unlock()
}

func (t *Transmitter) sendChar(c byte) {
	t.sendBit(1)
	for i := DataBits - 1; i >= 0; i-- {
		t.sendBit((c >> i) & 1)
	}
	t.sendBit(0)
	t.clk.SleepBits(0.5)
}

// SendMessage transmits text framed between the start and end markers,
// with a two-bit gap after the opening marker and before the closing one.
// If a status indicator is attached, a fixed-count blink follows the
// frame; it is not protocol payload.
func (t *Transmitter) SendMessage(text string) {
	t.mu.Lock()
	t.sendMessage(text)
	t.mu.Unlock()
}

func (t *Transmitter) sendMessage(text string) {
	t.sendChar(StartMarker)
	t.clk.SleepBits(2)
	for i := 0; i < len(text); i++ {
		t.sendChar(text[i])
	}
	t.clk.SleepBits(2)
	t.sendChar(EndMarker)
	t.statusBlink()
}

// statusBlink flashes the status indicator a fixed number of times as a
// transmit acknowledgment, leaving it off.
func (t *Transmitter) statusBlink() {
	if t.status == nil {
		return
	}
	for i := 0; i < StatusBlinkCount; i++ {
		t.status.SetLevel(true)
		t.clk.SleepBlinkPhase()
		t.status.SetLevel(false)
		t.clk.SleepBlinkPhase()
	}
}

// SendBinary base64-encodes data and transmits it as chunk-tagged messages
// of at most chunkSize base64 characters each. The window that reaches the
// end of the payload is always tagged IMG_END, including a payload that
// fits in a single window; earlier windows are IMG_START and IMG_CHUNK.
// Consecutive chunks are separated by the settle delay.
func (t *Transmitter) SendBinary(data []byte, chunkSize int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sendBinary(data, chunkSize)
}

func (t *Transmitter) sendBinary(data []byte, chunkSize int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("invalid chunk size: %d", chunkSize)
	}

	bodies := ChunkMessages(base64.StdEncoding.EncodeToString(data), chunkSize)
	for i, body := range bodies {
		if i > 0 {
			t.clk.Sleep(ChunkSettleDelay)
		}
		t.sendMessage(body)
	}

	return nil
}

// ChunkMessages splits an encoded payload into tagged chunk message bodies
// of at most chunkSize payload characters. The end-of-payload check runs
// before the first-window check, so a payload that fits in a single window
// is tagged IMG_END, never left as a dangling IMG_START. An empty payload
// still yields one (empty) IMG_END so the receive side's session is always
// consumed.
func ChunkMessages(encoded string, chunkSize int) []string {
	var bodies []string
	for start := 0; start < len(encoded) || start == 0; start += chunkSize {
		end := start + chunkSize
		if end > len(encoded) {
			end = len(encoded)
		}

		var tag string
		switch {
		case start+chunkSize >= len(encoded):
			tag = TagChunkEnd
		case start == 0:
			tag = TagChunkStart
		default:
			tag = TagChunkMid
		}

		bodies = append(bodies, tag+":"+encoded[start:end])
	}
	return bodies
}

// SendImage transmits the IMAGE announcement for name, waits out the
// settle delay, then transmits data via SendBinary with the default chunk
// size. The whole sequence holds the transmit lock so concurrent requests
// cannot interleave chunks of different transfers.
func (t *Transmitter) SendImage(name string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sendMessage(TagImage + ":" + name)
	t.clk.Sleep(ChunkSettleDelay)
	return t.sendBinary(data, DefaultChunkSize)
}
