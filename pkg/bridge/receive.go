// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package bridge

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/luxcomm/heliograph/pkg/capture"
	"github.com/luxcomm/heliograph/pkg/photon"
)

// ReceiveBridge runs the decode loop against the light sensor and pushes
// every completed application event to its registered TCP client and to
// any WebSocket mirrors. The decode loop lives for the whole process,
// independent of connection state.
type ReceiveBridge struct {
	rx       *photon.Receiver
	asm      *photon.Assembler
	notifier *Notifier
	log      zerolog.Logger
	ln       net.Listener

	cap *capture.Writer

	wsUpgrader websocket.Upgrader
	wsHub      *wsHub
	wsUser     string
	wsPass     string
}

// NewReceiveBridge creates a bridge decoding from rx.
func NewReceiveBridge(rx *photon.Receiver, log zerolog.Logger) *ReceiveBridge {
	b := &ReceiveBridge{
		rx:       rx,
		notifier: NewNotifier(log),
		log:      log,
		wsHub:    newWSHub(log),
	}
	b.asm = photon.NewAssembler(rx.Stats(), b.handleEvent)
	return b
}

// Notifier exposes the single-slot notifier, mainly for tests.
func (b *ReceiveBridge) Notifier() *Notifier {
	return b.notifier
}

// Stats returns the shared receiver/assembler counters.
func (b *ReceiveBridge) Stats() *photon.Statistics {
	return b.rx.Stats()
}

// SetCapture attaches a capture writer recording every received event.
func (b *ReceiveBridge) SetCapture(w *capture.Writer) {
	b.cap = w
}

// SetMonitorAuth enables HTTP Basic auth on the WebSocket mirror.
func (b *ReceiveBridge) SetMonitorAuth(username, password string) {
	b.wsUser = username
	b.wsPass = password
}

// RunDecodeLoop decodes characters forever, feeding the frame assembler.
// Noise characters are dropped by the receiver and simply retried. Run it
// on its own goroutine; it never returns.
func (b *ReceiveBridge) RunDecodeLoop() {
	b.log.Info().
		Dur("bit_duration", b.rx.Clock().BitDuration()).
		Msg("decode loop running")
	for {
		c, ok := b.rx.ReceiveChar()
		if !ok {
			continue
		}
		b.asm.Feed(c)
	}
}

// handleEvent runs synchronously on the decode goroutine for every
// completed message.
func (b *ReceiveBridge) handleEvent(ev photon.Event) {
	now := time.Now()

	var note Notification
	switch ev.Kind {
	case photon.EventText:
		b.log.Info().Int("chars", len(ev.Text)).Msg("received text")
		note = Notification{Type: TypeReceived, Content: ev.Text, Timestamp: unixSeconds(now)}
	case photon.EventImage:
		b.log.Info().Str("name", ev.Name).Int("b64_chars", len(ev.Data)).Msg("received image")
		note = Notification{Type: TypeReceived, Content: ev.Data, Name: ev.Name, Timestamp: unixSeconds(now)}
	default:
		return
	}

	b.capture(ev, now)
	b.publish(note)
}

func (b *ReceiveBridge) capture(ev photon.Event, now time.Time) {
	if b.cap == nil {
		return
	}

	rec := capture.Record{Time: now}
	switch ev.Kind {
	case photon.EventText:
		rec.Kind = "text"
		rec.Body = []byte(ev.Text)
	case photon.EventImage:
		rec.Kind = "image"
		rec.Name = ev.Name
		data, err := base64.StdEncoding.DecodeString(ev.Data)
		if err != nil {
			// Reassembled data that fails to decode is still worth
			// keeping for diagnosis; store the raw base64 text.
			b.log.Warn().Err(err).Str("name", ev.Name).Msg("image data is not valid base64")
			rec.Body = []byte(ev.Data)
		} else {
			rec.Body = data
		}
	}

	if err := b.cap.Append(rec); err != nil {
		b.log.Error().Err(err).Msg("capture append failed")
	}
}

func (b *ReceiveBridge) publish(note Notification) {
	b.notifier.Push(note)
	b.wsHub.broadcast(note)
}

// ListenAndServe binds addr and serves notification clients until the
// listener fails.
func (b *ReceiveBridge) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("receive bridge listen on %s: %w", addr, err)
	}
	return b.Serve(ln)
}

// Serve accepts notification clients on ln. Each new client takes over
// the single notifier slot and immediately receives a status push.
func (b *ReceiveBridge) Serve(ln net.Listener) error {
	b.ln = ln
	b.log.Info().Str("addr", ln.Addr().String()).Msg("receive bridge listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive bridge accept: %w", err)
		}
		go b.handleClient(conn)
	}
}

// Close stops the accept loop.
func (b *ReceiveBridge) Close() error {
	if b.ln != nil {
		return b.ln.Close()
	}
	return nil
}

func (b *ReceiveBridge) handleClient(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	b.log.Info().Str("remote", remote).Msg("notification client connected")

	b.notifier.Register(conn)
	b.notifier.Push(Notification{
		Type:      TypeStatus,
		Content:   "Receiving",
		Timestamp: unixSeconds(time.Now()),
	})

	// Clients send no payload; reads only detect disconnect.
	buf := make([]byte, 256)
	for {
		if _, err := conn.Read(buf); err != nil {
			break
		}
	}

	b.notifier.Unregister(conn)
	conn.Close()
	b.log.Info().Str("remote", remote).Msg("notification client disconnected")
}

// ServeMonitor serves the WebSocket notification mirror on addr at /ws.
// Mirrors are fan-out only and independent of the single TCP slot.
func (b *ReceiveBridge) ServeMonitor(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.handleWS)

	b.log.Info().Str("addr", addr).Msg("monitor mirror listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("monitor mirror on %s: %w", addr, err)
	}
	return nil
}

func (b *ReceiveBridge) handleWS(w http.ResponseWriter, r *http.Request) {
	if b.wsPass != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != b.wsUser || pass != b.wsPass {
			w.Header().Set("WWW-Authenticate", `Basic realm="heliograph"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := b.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	b.wsHub.add(conn)
}
