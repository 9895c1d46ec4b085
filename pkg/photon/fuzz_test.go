// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomPrintable returns a random printable string without framing markers.
func randomPrintable(rng *rand.Rand, maxLen int) string {
	length := rng.Intn(maxLen + 1)
	b := make([]byte, 0, length)
	for len(b) < length {
		c := byte(PrintableMin + rng.Intn(PrintableMax-PrintableMin+1))
		if c == StartMarker || c == EndMarker {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}

// ============================================================
// Assembler Fuzz Tests
// ============================================================

// TestFuzzAssembler_RandomChars feeds random printable characters to the
// assembler and verifies it doesn't panic and never emits an empty event
func TestFuzzAssembler_RandomChars(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		asm := NewAssembler(nil, func(ev Event) {
			if ev.Kind == EventText && ev.Text == "" {
				t.Fatal("assembler emitted an empty text event")
			}
		})

		length := rng.Intn(512) + 1
		for j := 0; j < length; j++ {
			// Bias toward markers so frames actually open and close
			switch rng.Intn(8) {
			case 0:
				asm.Feed(StartMarker)
			case 1:
				asm.Feed(EndMarker)
			default:
				asm.Feed(byte(PrintableMin + rng.Intn(PrintableMax-PrintableMin+1)))
			}
		}
	}
}

// TestFuzzAssembler_RandomMessages frames random bodies and verifies each
// one round-trips through the assembler unchanged
func TestFuzzAssembler_RandomMessages(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		body := randomPrintable(rng, 64)
		if body == "" || strings.ContainsRune(body, ':') {
			// Empty bodies are dropped and colons can collide with the
			// chunk tag syntax; both are covered by their own tests.
			continue
		}

		var got []Event
		asm := NewAssembler(nil, func(ev Event) { got = append(got, ev) })
		asm.FeedString(string(StartMarker) + body + string(EndMarker))

		if len(got) != 1 {
			t.Fatalf("round %d: expected 1 event for body %q, got %d", i, body, len(got))
		}
		if got[0].Kind != EventText || got[0].Text != body {
			t.Fatalf("round %d: body %q round-tripped as %q", i, body, got[0].Text)
		}
	}
}

// TestFuzzChunking_RandomPayloads splits random payloads with random window
// sizes and verifies the chunk bodies reassemble to the original
func TestFuzzChunking_RandomPayloads(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	const b64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

	for i := 0; i < rounds; i++ {
		length := rng.Intn(256)
		payload := make([]byte, length)
		for j := range payload {
			payload[j] = b64[rng.Intn(len(b64))]
		}
		chunkSize := rng.Intn(64) + 1

		bodies := ChunkMessages(string(payload), chunkSize)
		if len(bodies) == 0 {
			t.Fatalf("round %d: no chunk bodies for %d chars", i, length)
		}
		if !strings.HasPrefix(bodies[len(bodies)-1], TagChunkEnd+":") {
			t.Fatalf("round %d: last body not tagged %s: %q", i, TagChunkEnd, bodies[len(bodies)-1])
		}

		var got []Event
		asm := NewAssembler(nil, func(ev Event) { got = append(got, ev) })
		asm.FeedString(string(StartMarker) + TagImage + ":fuzz.bin" + string(EndMarker))
		for _, body := range bodies {
			asm.FeedString(string(StartMarker) + body + string(EndMarker))
		}

		if len(got) != 1 {
			t.Fatalf("round %d: expected 1 event, got %d", i, len(got))
		}
		if got[0].Kind != EventImage || got[0].Data != string(payload) {
			t.Fatalf("round %d: payload of %d chars (window %d) reassembled to %d chars",
				i, length, chunkSize, len(got[0].Data))
		}
	}
}
