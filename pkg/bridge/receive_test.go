// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package bridge

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxcomm/heliograph/pkg/capture"
	"github.com/luxcomm/heliograph/pkg/photon"
)

// newReceiveBridge builds a bridge whose decode loop is never started;
// tests drive handleEvent directly, exactly as the decode goroutine would.
func newReceiveBridge(t *testing.T) *ReceiveBridge {
	t.Helper()
	rx := photon.NewReceiver(photon.NewMemoryLink(), photon.NewBitClock(photon.DefaultBitDuration))
	return NewReceiveBridge(rx, zerolog.Nop())
}

func startReceiveBridge(t *testing.T) (*ReceiveBridge, net.Conn) {
	t.Helper()

	b := newReceiveBridge(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go b.Serve(ln)
	t.Cleanup(func() { b.Close() })

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return b, conn
}

func readNotification(t *testing.T, r *bufio.Reader, conn net.Conn) Notification {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read notification: %v", err)
	}
	var n Notification
	if err := json.Unmarshal([]byte(line), &n); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	return n
}

// waitForClient blocks until the accept loop has registered a client.
func waitForClient(t *testing.T, b *ReceiveBridge) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !b.Notifier().HasClient() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for client registration")
		}
		time.Sleep(time.Millisecond)
	}
}

// ============================================================
// Notifier
// ============================================================

func TestNotifier_PushWithoutClientIsNoop(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	if n.Push(Notification{Type: TypeReceived, Content: "x"}) {
		t.Error("push with no client should report undelivered")
	}
}

func TestNotifier_RegisterThenPush(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	client, server := net.Pipe()
	defer client.Close()

	n.Register(server)

	got := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(client).ReadString('\n')
		got <- line
	}()

	if !n.Push(Notification{Type: TypeReceived, Content: "hello", Timestamp: 1}) {
		t.Fatal("push with registered client should deliver")
	}

	select {
	case line := <-got:
		var note Notification
		if err := json.Unmarshal([]byte(line), &note); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		if note.Content != "hello" {
			t.Errorf("unexpected notification: %+v", note)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("notification never arrived")
	}
}

func TestNotifier_WriteFailureUnregisters(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	client, server := net.Pipe()

	n.Register(server)
	client.Close() // force the next write to fail

	if n.Push(Notification{Type: TypeReceived, Content: "lost"}) {
		t.Error("push to a dead client should report undelivered")
	}
	if n.HasClient() {
		t.Error("dead client should have been unregistered")
	}

	// Events are not queued: the slot is simply empty afterwards.
	if n.Push(Notification{Type: TypeReceived, Content: "also lost"}) {
		t.Error("no client is registered, push should be a no-op")
	}
}

func TestNotifier_UnregisterOnlyMatchingConn(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	_, a := net.Pipe()
	_, b := net.Pipe()

	n.Register(a)
	n.Unregister(b) // stale disconnect from a replaced client
	if !n.HasClient() {
		t.Error("unregistering a non-registered conn must not clear the slot")
	}
	n.Unregister(a)
	if n.HasClient() {
		t.Error("slot should be empty")
	}
}

// ============================================================
// Receive bridge
// ============================================================

func TestReceiveBridge_StatusOnConnect(t *testing.T) {
	_, conn := startReceiveBridge(t)

	note := readNotification(t, bufio.NewReader(conn), conn)
	if note.Type != TypeStatus || note.Content != "Receiving" {
		t.Errorf("unexpected status notification: %+v", note)
	}
	if note.Timestamp == 0 {
		t.Error("status notification should carry a timestamp")
	}
}

func TestReceiveBridge_TextNotification(t *testing.T) {
	b, conn := startReceiveBridge(t)
	r := bufio.NewReader(conn)
	readNotification(t, r, conn) // status push
	waitForClient(t, b)

	b.handleEvent(photon.Event{Kind: photon.EventText, Text: "hello"})

	note := readNotification(t, r, conn)
	if note.Type != TypeReceived || note.Content != "hello" || note.Name != "" {
		t.Errorf("unexpected notification: %+v", note)
	}
}

func TestReceiveBridge_ImageNotification(t *testing.T) {
	b, conn := startReceiveBridge(t)
	r := bufio.NewReader(conn)
	readNotification(t, r, conn)
	waitForClient(t, b)

	b.handleEvent(photon.Event{Kind: photon.EventImage, Name: "pic.png", Data: "QUJDRA=="})

	note := readNotification(t, r, conn)
	if note.Type != TypeReceived || note.Name != "pic.png" || note.Content != "QUJDRA==" {
		t.Errorf("unexpected notification: %+v", note)
	}
}

func TestReceiveBridge_EventWithoutClient(t *testing.T) {
	b := newReceiveBridge(t)
	// No client, no listener: the event is dropped without error.
	b.handleEvent(photon.Event{Kind: photon.EventText, Text: "nobody home"})
}

func TestReceiveBridge_Capture(t *testing.T) {
	b := newReceiveBridge(t)

	path := filepath.Join(t.TempDir(), "events.cbor")
	w, err := capture.Create(path)
	if err != nil {
		t.Fatalf("create capture: %v", err)
	}
	b.SetCapture(w)

	b.handleEvent(photon.Event{Kind: photon.EventText, Text: "note"})
	b.handleEvent(photon.Event{Kind: photon.EventImage, Name: "pic.png", Data: "QUJDRA=="})
	if err := w.Close(); err != nil {
		t.Fatalf("close capture: %v", err)
	}

	records, err := capture.ReadAll(path)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Kind != "text" || string(records[0].Body) != "note" {
		t.Errorf("unexpected text record: %+v", records[0])
	}
	if records[1].Kind != "image" || records[1].Name != "pic.png" || string(records[1].Body) != "ABCD" {
		t.Errorf("unexpected image record: %+v", records[1])
	}
}
