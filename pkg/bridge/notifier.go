// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package bridge

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

// Notifier owns the receive bridge's single client slot. The slot is
// mutated under one lock by the accept loop (register on connect,
// unregister on disconnect) and by Push (unregister on write failure), so
// a half-closed connection can never be written twice.
//
// Events are never queued: a push with no registered client is a no-op,
// and a failed push drops the event along with the client.
type Notifier struct {
	mu   sync.Mutex
	conn net.Conn
	log  zerolog.Logger
}

// NewNotifier creates an empty notifier.
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{log: log}
}

// Register installs conn as the active client, closing any previous one.
func (n *Notifier) Register(conn net.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		n.log.Info().Str("remote", n.conn.RemoteAddr().String()).
			Msg("replacing registered client")
		n.conn.Close()
	}
	n.conn = conn
}

// Unregister clears the slot if conn is still the registered client.
func (n *Notifier) Unregister(conn net.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == conn {
		n.conn = nil
	}
}

// Push serializes note and writes it to the registered client, if any.
// Returns true if the event was delivered. On write failure the client is
// dropped and the event is lost; the caller does not retry.
func (n *Notifier) Push(note Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return false
	}

	data, err := json.Marshal(note)
	if err != nil {
		n.log.Error().Err(err).Msg("marshal notification")
		return false
	}
	data = append(data, '\n')

	if _, err := n.conn.Write(data); err != nil {
		n.log.Warn().Err(err).Msg("client write failed, unregistering")
		n.conn.Close()
		n.conn = nil
		return false
	}
	return true
}

// HasClient reports whether a client is currently registered.
func (n *Notifier) HasClient() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn != nil
}
