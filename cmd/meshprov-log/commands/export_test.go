package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/meshprov/pkg/log"
)

// createTestLogFile creates a temporary log file with the given events.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

func connectEvents(ts time.Time) []log.Event {
	xp := []byte{0xde, 0xad, 0x00, 0xbe, 0xef, 0x00, 0xca, 0xfe}
	connectErr := int32(0)
	took := 1500 * time.Millisecond
	return []log.Event{
		{
			Timestamp: ts,
			RequestID: "3f2a9c1e-1111-4222-8333-944455556666",
			Layer:     log.LayerDriver,
			Category:  log.CategoryOperation,
			Operation: log.OperationConnect,
			NetworkID: xp,
		},
		{
			Timestamp: ts.Add(took),
			RequestID: "3f2a9c1e-1111-4222-8333-944455556666",
			Layer:     log.LayerDriver,
			Category:  log.CategoryResult,
			Operation: log.OperationConnect,
			NetworkID: xp,
			Result: &log.ResultEvent{
				Status:       0,
				StatusName:   "SUCCESS",
				ConnectError: &connectErr,
				Duration:     &took,
			},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, connectEvents(ts))
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("line is not JSON: %v", err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["RequestID"] != "3f2a9c1e-1111-4222-8333-944455556666" {
		t.Errorf("RequestID = %v", lines[0]["RequestID"])
	}
	result, ok := lines[1]["Result"].(map[string]any)
	if !ok {
		t.Fatalf("second event has no Result: %v", lines[1])
	}
	if result["StatusName"] != "SUCCESS" {
		t.Errorf("StatusName = %v, want SUCCESS", result["StatusName"])
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, connectEvents(ts))
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "timestamp" {
		t.Errorf("header = %v", rows[0])
	}
	if got := rows[2]; got[4] != "CONNECT" || got[5] != "dead00beef00cafe" || got[6] != "0" || got[7] != "SUCCESS" {
		t.Errorf("result row = %v", got)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)
	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("RunExport error = %v, want unknown format", err)
	}
}

func TestExportMissingFile(t *testing.T) {
	if err := RunExport(filepath.Join(t.TempDir(), "missing.mlog"), "jsonl", ""); err == nil {
		t.Error("expected error for missing file")
	}
}
