// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

// Package photon provides the reference Go implementation of the Heliograph
// optical link protocol.
//
// The protocol carries printable-ASCII characters over a single light
// channel as asynchronous serial frames: one start bit, eight data bits
// MSB-first, one stop bit, paced by a fixed bit duration. Characters are
// grouped into messages delimited by '#' and '*', and large binary payloads
// travel as base64 text split across chunk-tagged messages. The channel has
// no acknowledgment, retransmission or CRC support; noise is rejected by
// majority-vote sampling and by discarding non-printable characters.
package photon

import "time"

// Message framing markers
const (
	StartMarker = '#'
	EndMarker   = '*'
)

// Chunked transfer tags (message body prefixes, colon-delimited)
const (
	TagImage      = "IMAGE"
	TagChunkStart = "IMG_START"
	TagChunkMid   = "IMG_CHUNK"
	TagChunkEnd   = "IMG_END"
)

// Timing
const (
	// DefaultBitDuration is the master timing constant: how long the
	// channel holds one bit's level. Both ends must agree on it.
	DefaultBitDuration = 50 * time.Millisecond

	// StartPollDivisor sets the start-bit polling cadence to a quarter
	// of the bit duration.
	StartPollDivisor = 4

	// ChunkSettleDelay separates consecutive chunk transmissions, and the
	// IMAGE announcement from the first chunk, to give the receiver time
	// to drain its frame buffer.
	ChunkSettleDelay = time.Second
)

// Character frame layout
const (
	DataBits    = 8
	StableVotes = 3 // samples per data bit, majority wins
)

// Printable-ASCII range accepted by the receiver. Anything decoded outside
// this range is channel noise and never reaches the frame assembler.
const (
	PrintableMin = 0x20
	PrintableMax = 0x7E
)

// Chunked transfer sizing
const (
	// DefaultChunkSize is the number of base64 characters carried per
	// chunk message.
	DefaultChunkSize = 10000
)

// Transmit status blink: a fixed-count visual indicator flashed on the
// dedicated status pin after each completed message. Not part of the
// protocol payload.
const (
	StatusBlinkCount    = 3
	StatusBlinkDivisor  = 10 // blink phase = bit duration / 10
)
