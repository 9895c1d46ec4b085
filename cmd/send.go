// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/bridge"
)

var (
	sendAddr      string
	sendText      string
	sendImagePath string
	sendImageName string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message through a running transmit bridge",
	Long: `Connect to a transmit bridge, submit one text or image request, print
the bridge's reply and exit. Transmission over the link takes roughly
one second per five characters at the default bit duration; the command
blocks until the acknowledgment arrives.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendAddr, "addr", fmt.Sprintf("localhost:%d", bridge.DefaultTransmitPort), "Transmit bridge address")
	sendCmd.Flags().StringVar(&sendText, "text", "", "Text message to transmit")
	sendCmd.Flags().StringVar(&sendImagePath, "image", "", "Image file to transmit")
	sendCmd.Flags().StringVar(&sendImageName, "name", "", "Transmitted image name (default: the file's base name)")
	rootCmd.AddCommand(sendCmd)
}

func buildSendRequest() (*bridge.Request, error) {
	switch {
	case sendText != "" && sendImagePath != "":
		return nil, fmt.Errorf("--text and --image are mutually exclusive")

	case sendText != "":
		return &bridge.Request{Type: bridge.TypeText, Content: sendText}, nil

	case sendImagePath != "":
		data, err := os.ReadFile(sendImagePath)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		name := sendImageName
		if name == "" {
			name = filepath.Base(sendImagePath)
		}
		return &bridge.Request{
			Type:    bridge.TypeImage,
			Content: base64.StdEncoding.EncodeToString(data),
			Name:    name,
		}, nil

	default:
		return nil, fmt.Errorf("nothing to send: use --text or --image")
	}
}

func runSend(cmd *cobra.Command, _ []string) error {
	req, err := buildSendRequest()
	if err != nil {
		return err
	}

	conn, err := net.Dial("tcp", sendAddr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", sendAddr, err)
	}
	defer conn.Close()

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	var reply bridge.Reply
	if err := json.Unmarshal(line, &reply); err != nil {
		return fmt.Errorf("parse reply: %w", err)
	}

	if reply.Type == bridge.TypeError {
		return fmt.Errorf("bridge error: %s", reply.Content)
	}
	cmd.Println(reply.Content)
	return nil
}
