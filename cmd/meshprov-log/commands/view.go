// Package commands implements the meshprov-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mash-protocol/meshprov/pkg/log"
)

// RunView prints the events of path that match filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [req:id] LAYER CATEGORY OPERATION
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	reqID := shortenRequestID(event.RequestID)
	if reqID == "" {
		reqID = "-"
	}

	fmt.Fprintf(w, "%s [req:%s] %-6s %-9s %s\n", ts, reqID,
		event.Layer.String(), event.Category.String(), event.Operation.String())

	if id := event.NetworkIDString(); id != "" {
		fmt.Fprintf(w, "  Network: %s\n", id)
	}

	switch {
	case event.Result != nil:
		formatResultDetails(w, event.Result)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.ScanResult != nil:
		formatScanResultDetails(w, event.ScanResult)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenRequestID returns the first 8 characters of the request ID.
func shortenRequestID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatResultDetails(w io.Writer, r *log.ResultEvent) {
	name := r.StatusName
	if name == "" {
		name = "UNKNOWN"
	}
	fmt.Fprintf(w, "  Status: %s (%d)\n", name, r.Status)
	if r.DebugText != "" {
		fmt.Fprintf(w, "  Debug: %s\n", r.DebugText)
	}
	if r.NetworkIndex != nil {
		fmt.Fprintf(w, "  Index: %d\n", *r.NetworkIndex)
	}
	if r.ConnectError != nil {
		fmt.Fprintf(w, "  ConnectError: %d\n", *r.ConnectError)
	}
	if r.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*r.Duration))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatScanResultDetails(w io.Writer, sr *log.ScanResultEvent) {
	fmt.Fprintf(w, "  Found: %q pan=0x%04x channel=%d rssi=%d\n",
		sr.NetworkName, sr.PANID, sr.Channel, sr.RSSI)
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
