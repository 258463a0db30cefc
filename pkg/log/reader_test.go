package log

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.mlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestReaderFilter(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	netA := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	path := writeEvents(t,
		Event{Timestamp: base, Layer: LayerDriver, Category: CategoryOperation, Operation: OperationConnect, RequestID: "r1", NetworkID: netA},
		Event{Timestamp: base.Add(time.Second), Layer: LayerStack, Category: CategoryResult, Operation: OperationAttach, RequestID: "r1", NetworkID: netA},
		Event{Timestamp: base.Add(2 * time.Second), Layer: LayerDriver, Category: CategoryResult, Operation: OperationScan, RequestID: "r2"},
		Event{Timestamp: base.Add(3 * time.Second), Layer: LayerServer, Category: CategoryState, Operation: OperationFailSafeExpired},
	)

	layerDriver := LayerDriver
	catResult := CategoryResult
	opScan := OperationScan
	end := base.Add(2 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"RequestID", Filter{RequestID: "r1"}, 2},
		{"Layer", Filter{Layer: &layerDriver}, 2},
		{"Category", Filter{Category: &catResult}, 2},
		{"Operation", Filter{Operation: &opScan}, 1},
		{"NetworkID", Filter{NetworkID: netA}, 2},
		{"TimeEnd", Filter{TimeEnd: &end}, 2},
		{"Combined", Filter{RequestID: "r1", Layer: &layerDriver}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			events, err := reader.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestReaderEOF(t *testing.T) {
	path := writeEvents(t)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.mlog")); err == nil {
		t.Error("NewReader() on missing file returned nil error")
	}
}
