package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleEntries() []UnmatchedEntry {
	return []UnmatchedEntry{
		{Title: "Obscure B-Side", Artists: []string{"Unknown Artist", "Feature"}, Reason: ReasonNoMatch},
		{Title: "Midnight City", Artists: []string{"M83"}, Reason: ReasonSkipped},
	}
}

func TestWriteUnmatchedReport(t *testing.T) {
	t.Run("writes pretty JSON in order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unmatched_tracks.json")

		if err := WriteUnmatchedReport(sampleEntries(), path); err != nil {
			t.Fatalf("WriteUnmatchedReport() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(string(data), "\n") {
			t.Error("expected trailing newline")
		}

		var got []UnmatchedEntry
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("sidecar is not valid JSON: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d entries, want 2", len(got))
		}
		if got[0].Title != "Obscure B-Side" || got[0].Reason != ReasonNoMatch {
			t.Errorf("entry 0 = %+v", got[0])
		}
		if len(got[1].Artists) != 1 || got[1].Artists[0] != "M83" {
			t.Errorf("entry 1 artists = %v", got[1].Artists)
		}
	})

	t.Run("nil entries write an empty array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unmatched_tracks.json")

		if err := WriteUnmatchedReport(nil, path); err != nil {
			t.Fatalf("WriteUnmatchedReport() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("got %q, want empty array", data)
		}
	})

	t.Run("overwrites a previous report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unmatched_tracks.json")

		if err := WriteUnmatchedReport(sampleEntries(), path); err != nil {
			t.Fatal(err)
		}
		if err := WriteUnmatchedReport(nil, path); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "Midnight City") {
			t.Error("old report content survived overwrite")
		}
	})

	t.Run("bad path returns an error", func(t *testing.T) {
		err := WriteUnmatchedReport(nil, filepath.Join(t.TempDir(), "missing", "out.json"))
		if err == nil {
			t.Error("expected error for unwritable path")
		}
	})
}

func TestUnmatchedToCSV(t *testing.T) {
	data, err := UnmatchedToCSV(sampleEntries())
	if err != nil {
		t.Fatalf("UnmatchedToCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "Title,Artists,Reason" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Unknown Artist; Feature") {
		t.Errorf("artists not joined with semicolons: %q", lines[1])
	}
	if !strings.Contains(lines[2], ReasonSkipped) {
		t.Errorf("missing reason: %q", lines[2])
	}
}

func TestUnmatchedToText(t *testing.T) {
	t.Run("renders a numbered list", func(t *testing.T) {
		text := UnmatchedToText(sampleEntries())

		if !strings.Contains(text, "1. Unknown Artist, Feature - Obscure B-Side (no_match)") {
			t.Errorf("unexpected rendering:\n%s", text)
		}
		if !strings.Contains(text, "2. M83 - Midnight City (skipped)") {
			t.Errorf("unexpected rendering:\n%s", text)
		}
	})

	t.Run("empty list reads as success", func(t *testing.T) {
		if got := UnmatchedToText(nil); !strings.Contains(got, "All tracks transferred") {
			t.Errorf("got %q", got)
		}
	})
}
