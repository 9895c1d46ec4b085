// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import (
	"fmt"
	"time"
)

// Statistics tracks decode activity and every silent drop path. The
// protocol deliberately discards noise characters, empty messages, stray
// end markers and orphaned transfers without surfacing errors; these
// counters make each drop independently observable.
type Statistics struct {
	StartTime time.Time

	// Character layer
	CharsDecoded uint64
	NoiseChars   uint64 // decoded outside the printable range, dropped

	// Frame layer
	FramesStarted     uint64
	FramesAborted     uint64 // '#' arrived with a partial body buffered
	MessagesCompleted uint64
	EmptyMessages     uint64 // completed frames with empty bodies, dropped
	StrayEndMarkers   uint64 // '*' while not recording, ignored

	// Application layer
	TextMessages       uint64
	TransfersAnnounced uint64
	ChunksReceived     uint64
	OrphanChunkDrops   uint64 // IMG_END with no usable session, dropped
	ImagesReassembled  uint64
}

// NewStatistics creates a zeroed statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// CharRate returns decoded characters per second since start.
func (s *Statistics) CharRate() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.CharsDecoded) / elapsed
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Link Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Chars Decoded:   %8d (%.1f/sec)\n", s.CharsDecoded, s.CharRate())
	result += fmt.Sprintf("Messages:        %8d\n", s.MessagesCompleted)
	result += fmt.Sprintf("Text Messages:   %8d\n", s.TextMessages)
	result += fmt.Sprintf("Images:          %8d (%d chunks)\n", s.ImagesReassembled, s.ChunksReceived)

	if s.NoiseChars > 0 {
		result += fmt.Sprintf("Noise Chars:     %8d\n", s.NoiseChars)
	}
	if s.FramesAborted > 0 {
		result += fmt.Sprintf("Frames Aborted:  %8d\n", s.FramesAborted)
	}
	if s.EmptyMessages > 0 {
		result += fmt.Sprintf("Empty Messages:  %8d\n", s.EmptyMessages)
	}
	if s.StrayEndMarkers > 0 {
		result += fmt.Sprintf("Stray End Marks: %8d\n", s.StrayEndMarkers)
	}
	if s.OrphanChunkDrops > 0 {
		result += fmt.Sprintf("Orphan Chunks:   %8d\n", s.OrphanChunkDrops)
	}

	result += "======================================\n"
	return result
}

// Reset zeroes all counters and restarts the rate window.
func (s *Statistics) Reset() {
	*s = Statistics{StartTime: time.Now()}
}
