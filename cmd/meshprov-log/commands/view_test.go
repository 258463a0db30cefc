package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mash-protocol/meshprov/pkg/log"
)

func TestFormatResultEvent(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	events := connectEvents(ts)

	var buf bytes.Buffer
	formatEvent(&buf, events[1])
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:01.500000Z",
		"[req:3f2a9c1e]",
		"DRIVER",
		"RESULT",
		"CONNECT",
		"Network: dead00beef00cafe",
		"Status: SUCCESS (0)",
		"ConnectError: 0",
		"Duration: 1.500s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, log.Event{
		Timestamp: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		Layer:     log.LayerDriver,
		Category:  log.CategoryState,
		Operation: log.OperationRevert,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityStaged,
			OldState: "dead00beef00cafe",
			NewState: "EMPTY",
			Reason:   "fail-safe expired",
		},
	})
	output := buf.String()

	for _, want := range []string{"[req:-]", "Entity: STAGED", "dead00beef00cafe -> EMPTY", "Reason: fail-safe expired"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatScanAndErrorEvents(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, log.Event{
		Layer:      log.LayerStack,
		Category:   log.CategoryResult,
		Operation:  log.OperationScan,
		ScanResult: &log.ScanResultEvent{NetworkName: "mesh-a", PANID: 0x1234, Channel: 15, RSSI: -60},
	})
	formatEvent(&buf, log.Event{
		Layer:     log.LayerStack,
		Category:  log.CategoryError,
		Operation: log.OperationAttach,
		Error:     &log.ErrorEventData{Layer: log.LayerStack, Message: "disk full", Context: "persist provision"},
	})
	output := buf.String()

	for _, want := range []string{`Found: "mesh-a" pan=0x1234 channel=15 rssi=-60`, "Message: disk full", "Context: persist provision"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunViewAppliesFilter(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, connectEvents(ts))

	filter, err := BuildFilter(FilterOptions{Category: "result"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()
	if strings.Count(output, "[req:") != 1 {
		t.Errorf("expected one event in output:\n%s", output)
	}
	if strings.Contains(output, "OPERATION") {
		t.Errorf("operation event not filtered:\n%s", output)
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Layer
		wantErr bool
	}{
		{"driver", log.LayerDriver, false},
		{"STACK", log.LayerStack, false},
		{"Server", log.LayerServer, false},
		{"transport", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLayer(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLayer(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseLayer(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{2500 * time.Microsecond, "2.500ms"},
		{3 * time.Second, "3.000s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
