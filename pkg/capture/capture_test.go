// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Luxcomm Labs

package capture

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cap.cbor")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().Truncate(time.Second)
	records := []Record{
		{Time: now, Kind: "text", Body: []byte("hello")},
		{Time: now.Add(time.Second), Kind: "image", Name: "pic.png", Body: []byte{0xDE, 0xAD}},
	}
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i, rec := range records {
		if got[i].Kind != rec.Kind || got[i].Name != rec.Name || string(got[i].Body) != string(rec.Body) {
			t.Errorf("record %d mismatch: %+v", i, got[i])
		}
		if !got[i].Time.Equal(rec.Time) {
			t.Errorf("record %d time mismatch: %v != %v", i, got[i].Time, rec.Time)
		}
	}
}

func TestAppendToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cap.cbor")

	for i := 0; i < 2; i++ {
		w, err := Create(path)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := w.Append(Record{Time: time.Now(), Kind: "text", Body: []byte{byte('a' + i)}}); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records across sessions, got %d", len(got))
	}
	if string(got[0].Body) != "a" || string(got[1].Body) != "b" {
		t.Errorf("unexpected bodies: %q, %q", got[0].Body, got[1].Body)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "absent.cbor")); err == nil {
		t.Error("expected error for missing file")
	}
}
