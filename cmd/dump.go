// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Luxcomm Labs

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luxcomm/heliograph/pkg/capture"
)

var dumpExtractDir string

var dumpCmd = &cobra.Command{
	Use:   "dump <capture-file>",
	Short: "Print the contents of a capture file",
	Long: `Decode a capture file written by "receive --capture" and print one line
per record. With --extract, image bodies are also written out as files.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpExtractDir, "extract", "", "Directory to extract image records into")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	records, err := capture.ReadAll(args[0])
	if err != nil {
		return err
	}

	if dumpExtractDir != "" {
		if err := os.MkdirAll(dumpExtractDir, 0o755); err != nil {
			return fmt.Errorf("create extract directory: %w", err)
		}
	}

	for i, rec := range records {
		ts := rec.Time.Format("2006-01-02 15:04:05.000")
		switch rec.Kind {
		case "text":
			cmd.Printf("%4d  %s  text   %q\n", i, ts, string(rec.Body))
		case "image":
			cmd.Printf("%4d  %s  image  %s (%d bytes)\n", i, ts, rec.Name, len(rec.Body))
			if dumpExtractDir != "" {
				path := filepath.Join(dumpExtractDir, fmt.Sprintf("%03d_%s", i, filepath.Base(rec.Name)))
				if err := os.WriteFile(path, rec.Body, 0o644); err != nil {
					return fmt.Errorf("extract record %d: %w", i, err)
				}
				cmd.Printf("      extracted to %s\n", path)
			}
		default:
			cmd.Printf("%4d  %s  %s (%d bytes)\n", i, ts, rec.Kind, len(rec.Body))
		}
	}

	cmd.Printf("%d records\n", len(records))
	return nil
}
