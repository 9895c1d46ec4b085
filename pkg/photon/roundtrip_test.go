// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package photon

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/jonboulle/clockwork"
)

// runLink wires a transmitter and a receiver+assembler to the same
// MemoryLink on one fake clock, runs send, and advances virtual time in
// lockstep until wantEvents application events have been assembled.
func runLink(t *testing.T, send func(tx *Transmitter), wantEvents int) []Event {
	t.Helper()

	fc := clockwork.NewFakeClock()
	link := NewMemoryLink()
	tx := NewTransmitter(link, NewBitClockWithClock(testBit, fc))
	rx := NewReceiver(link, NewBitClockWithClock(testBit, fc))

	eventCh := make(chan Event, wantEvents+4)
	asm := NewAssembler(rx.Stats(), func(ev Event) {
		eventCh <- ev
	})

	// Decode loop, as the receive bridge runs it: retry on noise, feed
	// every good character to the assembler. Runs for the whole test.
	go func() {
		for {
			c, ok := rx.ReceiveChar()
			if !ok {
				continue
			}
			asm.Feed(c)
		}
	}()

	txDone := make(chan struct{})
	go func() {
		send(tx)
		close(txDone)
	}()

	var events []Event
	sleepers := 2
	for i := 0; i < 1000000; i++ {
		for len(eventCh) > 0 {
			events = append(events, <-eventCh)
		}
		if len(events) >= wantEvents {
			return events
		}

		select {
		case <-txDone:
			sleepers = 1
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), maxAdvanceSlop)
		err := fc.BlockUntilContext(ctx, sleepers)
		cancel()
		if err != nil {
			continue
		}
		fc.Advance(testStep)
	}

	t.Fatalf("link did not produce %d events", wantEvents)
	return nil
}

func TestRoundTrip_TextMessage(t *testing.T) {
	events := runLink(t, func(tx *Transmitter) {
		tx.SendMessage("hi")
	}, 1)

	ev := events[0]
	if ev.Kind != EventText || ev.Text != "hi" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestRoundTrip_LongerText(t *testing.T) {
	const text = "The five boxing wizards jump quickly (1985)!"
	events := runLink(t, func(tx *Transmitter) {
		tx.SendMessage(text)
	}, 1)

	if events[0].Text != text {
		t.Errorf("expected %q, got %q", text, events[0].Text)
	}
}

func TestRoundTrip_BackToBackMessages(t *testing.T) {
	events := runLink(t, func(tx *Transmitter) {
		tx.SendMessage("one")
		tx.SendMessage("two")
	}, 2)

	if events[0].Text != "one" || events[1].Text != "two" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestRoundTrip_Image(t *testing.T) {
	payload := []byte("ABCD")

	events := runLink(t, func(tx *Transmitter) {
		tx.SendMessage(TagImage + ":pic.png")
		if err := tx.SendBinary(payload, 4); err != nil {
			t.Errorf("SendBinary: %v", err)
		}
	}, 1)

	ev := events[0]
	if ev.Kind != EventImage || ev.Name != "pic.png" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Data != "QUJDRA==" {
		t.Errorf("expected base64 %q, got %q", "QUJDRA==", ev.Data)
	}
	decoded, err := base64.StdEncoding.DecodeString(ev.Data)
	if err != nil || string(decoded) != string(payload) {
		t.Errorf("payload mismatch: %q (%v)", decoded, err)
	}
}

func TestRoundTrip_SendImage(t *testing.T) {
	// SendImage announces, settles, and transfers under one lock; a
	// small payload fits one window and must arrive as a single IMG_END.
	events := runLink(t, func(tx *Transmitter) {
		if err := tx.SendImage("logo.png", []byte{0xDE, 0xAD, 0xBE, 0xEF}); err != nil {
			t.Errorf("SendImage: %v", err)
		}
	}, 1)

	ev := events[0]
	if ev.Kind != EventImage || ev.Name != "logo.png" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	decoded, err := base64.StdEncoding.DecodeString(ev.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if len(decoded) != len(want) {
		t.Fatalf("expected %d bytes, got %d", len(want), len(decoded))
	}
	for i := range want {
		if decoded[i] != want[i] {
			t.Errorf("byte %d: expected 0x%02X, got 0x%02X", i, want[i], decoded[i])
		}
	}
}
