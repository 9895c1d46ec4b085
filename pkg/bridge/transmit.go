// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package bridge

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/luxcomm/heliograph/pkg/photon"
)

// TransmitBridge accepts TCP clients and turns their newline-delimited
// JSON requests into optical transmissions. Connections are handled
// concurrently; the transmitter's own lock serializes their access to the
// shared output, so requests from different clients transmit back to back
// rather than bit-interleaved.
type TransmitBridge struct {
	tx  *photon.Transmitter
	log zerolog.Logger
	ln  net.Listener
}

// NewTransmitBridge creates a bridge driving tx.
func NewTransmitBridge(tx *photon.Transmitter, log zerolog.Logger) *TransmitBridge {
	return &TransmitBridge{tx: tx, log: log}
}

// ListenAndServe binds addr and serves until the listener fails.
func (b *TransmitBridge) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transmit bridge listen on %s: %w", addr, err)
	}
	return b.Serve(ln)
}

// Serve accepts connections on ln, one goroutine per client.
func (b *TransmitBridge) Serve(ln net.Listener) error {
	b.ln = ln
	b.log.Info().Str("addr", ln.Addr().String()).Msg("transmit bridge listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("transmit bridge accept: %w", err)
		}
		go b.handleConn(conn)
	}
}

// Close stops the accept loop.
func (b *TransmitBridge) Close() error {
	if b.ln != nil {
		return b.ln.Close()
	}
	return nil
}

func (b *TransmitBridge) handleConn(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	log := b.log.With().Str("remote", remote).Logger()
	log.Info().Msg("client connected")
	defer func() {
		conn.Close()
		log.Info().Msg("client disconnected")
	}()

	// ReadBytes holds any trailing incomplete fragment internally, so a
	// request split across TCP segments reassembles transparently.
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		b.handleLine(conn, log, bytes.TrimSpace(line))
	}
}

// handleLine processes one complete newline-delimited request.
func (b *TransmitBridge) handleLine(conn net.Conn, log zerolog.Logger, line []byte) {
	if len(line) == 0 {
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		// Malformed JSON gets a diagnostic, never a reply; the stream
		// continues with the next fragment.
		log.Warn().Err(err).Msg("malformed request")
		return
	}

	switch req.Type {
	case TypeText:
		b.log.Info().Int("chars", len(req.Content)).Msg("transmitting text")
		b.tx.SendMessage(req.Content)
		b.reply(conn, log, Reply{
			Type:    TypeAck,
			Content: fmt.Sprintf("Transmitted: %c%s%c", photon.StartMarker, req.Content, photon.EndMarker),
		})

	case TypeImage:
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("image_%d.jpg", time.Now().Unix())
		}

		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			b.reply(conn, log, Reply{
				Type:    TypeError,
				Content: fmt.Sprintf("invalid base64 image content: %v", err),
			})
			return
		}

		b.log.Info().Str("name", name).Int("bytes", len(data)).Msg("transmitting image")
		if err := b.tx.SendImage(name, data); err != nil {
			b.reply(conn, log, Reply{
				Type:    TypeError,
				Content: fmt.Sprintf("image transmission failed: %v", err),
			})
			return
		}
		b.reply(conn, log, Reply{Type: TypeAck, Content: "Transmitted image: " + name})

	default:
		log.Warn().Str("type", req.Type).Msg("unknown request type")
	}
}

func (b *TransmitBridge) reply(conn net.Conn, log zerolog.Logger, r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		log.Error().Err(err).Msg("marshal reply")
		return
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		log.Warn().Err(err).Msg("reply write failed")
	}
}
