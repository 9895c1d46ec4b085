// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

// Package capture persists received link events as a stream of CBOR
// records, one per event, for later inspection with the dump command.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record is one captured event. Body holds the text bytes of a text
// message or the decoded binary of a reassembled image.
type Record struct {
	Time time.Time `cbor:"time"`
	Kind string    `cbor:"kind"` // "text" or "image"
	Name string    `cbor:"name,omitempty"`
	Body []byte    `cbor:"body"`
}

// Writer appends records to a capture file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *cbor.Encoder
}

// Create opens path for appending, creating it if needed.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return &Writer{file: f, enc: cbor.NewEncoder(f)}, nil
}

// Append writes one record.
func (w *Writer) Append(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll decodes every record in a capture file.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := cbor.NewDecoder(f)
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("decode capture record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}
