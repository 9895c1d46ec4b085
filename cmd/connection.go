// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/luxcomm/heliograph/pkg/bridge"
)

// NotificationStream yields receive-side notifications from either the
// TCP slot or the WebSocket monitor mirror.
type NotificationStream interface {
	Next() (bridge.Notification, error)
	Close() error
}

// tcpStream reads newline-delimited JSON notifications from the receive
// bridge's single client slot.
type tcpStream struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (s *tcpStream) Next() (bridge.Notification, error) {
	var note bridge.Notification
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		return note, err
	}
	if err := json.Unmarshal(line, &note); err != nil {
		return note, fmt.Errorf("parse notification: %w", err)
	}
	return note, nil
}

func (s *tcpStream) Close() error {
	return s.conn.Close()
}

// wsStream reads JSON notifications from the monitor mirror.
type wsStream struct {
	conn *websocket.Conn
}

func (s *wsStream) Next() (bridge.Notification, error) {
	var note bridge.Notification
	err := s.conn.ReadJSON(&note)
	return note, err
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}

func openTCPStream(addr string) (NotificationStream, string, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &tcpStream{conn: conn, reader: bufio.NewReader(conn)}, "TCP: " + addr, nil
}

func openWSStream(rawURL, username string, skipSSLVerify bool) (NotificationStream, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, "", fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipSSLVerify}
	}

	headers := http.Header{}
	if username != "" {
		password, err := getPassword()
		if err != nil {
			return nil, "", err
		}
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, rawURL, headers)
	if err != nil {
		if resp != nil {
			return nil, "", fmt.Errorf("websocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, "", fmt.Errorf("websocket connection failed: %w", err)
	}
	return &wsStream{conn: conn}, "WebSocket: " + rawURL, nil
}

// getPassword reads the password from HELIOGRAPH_PASSWORD, or prompts on
// the terminal without echo.
func getPassword() (string, error) {
	if pw := os.Getenv("HELIOGRAPH_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; fall back to plain line input.
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
