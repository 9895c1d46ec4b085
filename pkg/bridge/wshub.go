// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package bridge

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// wsHub fans notifications out to the WebSocket mirror clients. Unlike
// the TCP notifier there is no single-slot rule here; mirrors are
// read-only observers.
type wsHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   zerolog.Logger
}

func newWSHub(log zerolog.Logger) *wsHub {
	return &wsHub{conns: make(map[*websocket.Conn]struct{}), log: log}
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("monitor connected")

	// Reads only detect disconnect; mirrors send nothing.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(conn)
	}()
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *wsHub) broadcast(note Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(note); err != nil {
			h.log.Warn().Err(err).Msg("monitor write failed, dropping")
			delete(h.conns, conn)
			conn.Close()
		}
	}
}
