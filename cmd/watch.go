// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/bridge"
)

var (
	watchAddr        string
	watchURL         string
	watchUsername    string
	watchNoSSLVerify bool
	watchSaveDir     string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the receive-side notification stream",
	Long: `Follow received messages live in a terminal UI. Connect to the receive
bridge's TCP slot with --addr (takes over the single slot) or to the
WebSocket monitor mirror with --url (fan-out, leaves the slot free).

Received images can be written to disk with --save-dir.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", fmt.Sprintf("localhost:%d", bridge.DefaultReceivePort), "Receive bridge TCP address")
	watchCmd.Flags().StringVar(&watchURL, "url", "", "Monitor WebSocket URL (ws:// or wss://), overrides --addr")
	watchCmd.Flags().StringVar(&watchUsername, "username", "", "Username for monitor Basic auth")
	watchCmd.Flags().BoolVar(&watchNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss only)")
	watchCmd.Flags().StringVar(&watchSaveDir, "save-dir", "", "Directory to save received images into")
	rootCmd.AddCommand(watchCmd)
}

// Log entry shown in the viewport
type watchEntry struct {
	timestamp time.Time
	kind      string
	text      string
}

// Messages
type noteMsg bridge.Notification
type streamErrMsg struct{ err error }

// watchModel is the TUI state.
type watchModel struct {
	source   string
	saveDir  string
	spinner  spinner.Model
	viewport viewport.Model
	notes    <-chan tea.Msg

	entries   []watchEntry
	received  int
	status    string
	streamErr error
	ready     bool
	width     int
	height    int
	quitting  bool
}

func newWatchModel(source, saveDir string, notes <-chan tea.Msg) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return watchModel{
		source:  source,
		saveDir: saveDir,
		spinner: sp,
		notes:   notes,
		status:  "connecting",
	}
}

func (m watchModel) waitForNote() tea.Cmd {
	return func() tea.Msg {
		return <-m.notes
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForNote(),
		tea.EnterAltScreen,
	)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.renderEntries())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noteMsg:
		m.apply(bridge.Notification(msg))
		if m.ready {
			m.viewport.SetContent(m.renderEntries())
			m.viewport.GotoBottom()
		}
		return m, m.waitForNote()

	case streamErrMsg:
		m.streamErr = msg.err
		m.status = "disconnected"
	}

	return m, nil
}

// apply folds one notification into the log.
func (m *watchModel) apply(note bridge.Notification) {
	ts := time.Unix(0, int64(note.Timestamp*float64(time.Second)))

	switch {
	case note.Type == bridge.TypeStatus:
		m.status = note.Content
		m.entries = append(m.entries, watchEntry{timestamp: ts, kind: "status", text: note.Content})

	case note.Name != "":
		m.received++
		text := fmt.Sprintf("image %s (%d base64 chars)", note.Name, len(note.Content))
		if m.saveDir != "" {
			if path, err := saveImage(m.saveDir, note.Name, note.Content); err != nil {
				text += fmt.Sprintf(" [save failed: %v]", err)
			} else {
				text += " saved to " + path
			}
		}
		m.entries = append(m.entries, watchEntry{timestamp: ts, kind: "image", text: text})

	default:
		m.received++
		m.entries = append(m.entries, watchEntry{timestamp: ts, kind: "text", text: note.Content})
	}

	// Keep only last N entries
	const maxEntries = 500
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}

// saveImage decodes base64 content and writes it under dir. The name is
// flattened to its base to keep remote senders from escaping dir.
func saveImage(dir, name, b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (m watchModel) renderEntries() string {
	timestampStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	imageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var s strings.Builder
	for _, e := range m.entries {
		style := textStyle
		switch e.kind {
		case "image":
			style = imageStyle
		case "status":
			style = statusStyle
		}
		s.WriteString(fmt.Sprintf("%s %s\n",
			timestampStyle.Render(e.timestamp.Format("15:04:05.000")),
			style.Render(e.text),
		))
	}
	if len(m.entries) == 0 {
		s.WriteString(timestampStyle.Render("  (no messages yet)"))
	}
	return s.String()
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("HELIOGRAPH - LINK WATCH"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Received: %d | Press 'q' to quit", m.source, m.received)))
	s.WriteString("\n\n")

	switch {
	case m.streamErr != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Stream closed: %v", m.streamErr)))
	case m.status == "connecting":
		s.WriteString(m.spinner.View())
		s.WriteString(headerStyle.Render(" Waiting for the receive bridge..."))
	default:
		s.WriteString(headerStyle.Render("Status: " + m.status))
	}
	s.WriteString("\n\n")

	if m.ready {
		s.WriteString(boxStyle.Width(m.width - 4).Render(m.viewport.View()))
	}

	return s.String()
}

func runWatch(_ *cobra.Command, _ []string) error {
	var (
		stream NotificationStream
		source string
		err    error
	)
	if watchURL != "" {
		stream, source, err = openWSStream(watchURL, watchUsername, watchNoSSLVerify)
	} else {
		stream, source, err = openTCPStream(watchAddr)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	if watchSaveDir != "" {
		if err := os.MkdirAll(watchSaveDir, 0o755); err != nil {
			return fmt.Errorf("create save directory: %w", err)
		}
	}

	notes := make(chan tea.Msg)
	go func() {
		for {
			note, err := stream.Next()
			if err != nil {
				notes <- streamErrMsg{err: err}
				return
			}
			notes <- noteMsg(note)
		}
	}()

	_, err = tea.NewProgram(newWatchModel(source, watchSaveDir, notes)).Run()
	return err
}
