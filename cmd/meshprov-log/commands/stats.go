package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mash-protocol/meshprov/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByOperation map[log.Operation]int
	ResultsByStatus   map[string]int
	Requests          map[string]*RequestStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RequestStats holds statistics for a single connect or scan request.
type RequestStats struct {
	Operation log.Operation
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Status    string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByOperation: make(map[log.Operation]int),
		ResultsByStatus:   make(map[string]int),
		Requests:          make(map[string]*RequestStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByOperation[event.Operation]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Result != nil {
		s.ResultsByStatus[event.Result.StatusName]++
	}
	if event.Error != nil {
		s.Errors++
	}

	if event.RequestID == "" {
		return
	}
	req, ok := s.Requests[event.RequestID]
	if !ok {
		req = &RequestStats{
			Operation: event.Operation,
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Requests[event.RequestID] = req
	}
	req.Events++
	if event.Timestamp.After(req.LastSeen) {
		req.LastSeen = event.Timestamp
	}
	if event.Result != nil {
		req.Status = event.Result.StatusName
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Commissioning Event Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerDriver, log.LayerStack, log.LayerServer} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryOperation, log.CategoryResult, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Operation:")
	for op := log.Operation(0); op <= lastOperation; op++ {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-24s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.ResultsByStatus) > 0 {
		names := make([]string, 0, len(stats.ResultsByStatus))
		for name := range stats.ResultsByStatus {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w, "Results by Status:")
		for _, name := range names {
			label := name
			if label == "" {
				label = "UNKNOWN"
			}
			fmt.Fprintf(w, "  %-24s %d\n", label+":", stats.ResultsByStatus[name])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Requests: %d\n", len(stats.Requests))
	if len(stats.Requests) > 0 {
		type reqInfo struct {
			id    string
			stats *RequestStats
		}
		reqs := make([]reqInfo, 0, len(stats.Requests))
		for id, rs := range stats.Requests {
			reqs = append(reqs, reqInfo{id, rs})
		}
		sort.Slice(reqs, func(i, j int) bool {
			return reqs[i].stats.FirstSeen.Before(reqs[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, r := range reqs {
			duration := r.stats.LastSeen.Sub(r.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d events, duration %s", shortenRequestID(r.id),
				r.stats.Operation.String(), r.stats.Events, duration)
			if r.stats.Status != "" {
				fmt.Fprintf(w, ", status %s", r.stats.Status)
			}
			fmt.Fprintln(w)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
