package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mash-protocol/meshprov/pkg/log"
)

// lastOperation is the highest defined log.Operation.
const lastOperation = log.OperationCommissioningComplete

// FilterOptions specifies filtering criteria as given on the command line.
type FilterOptions struct {
	Output    string
	RequestID string
	NetworkID string
	TimeStart string
	TimeEnd   string
	Layer     string
	Category  string
	Operation string
}

// BuildFilter converts command-line options into a log.Filter.
func BuildFilter(opts FilterOptions) (log.Filter, error) {
	filter := log.Filter{RequestID: opts.RequestID}

	if opts.NetworkID != "" {
		id, err := hex.DecodeString(opts.NetworkID)
		if err != nil {
			return filter, fmt.Errorf("invalid network-id: %w", err)
		}
		filter.NetworkID = id
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Layer != "" {
		l, err := parseLayer(opts.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}

	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}

	if opts.Operation != "" {
		o, err := parseOperation(opts.Operation)
		if err != nil {
			return filter, err
		}
		filter.Operation = &o
	}

	return filter, nil
}

// RunFilter copies the events of path that match opts to opts.Output and
// returns how many were written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := BuildFilter(opts)
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}
	return count, nil
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "driver":
		return log.LayerDriver, nil
	case "stack":
		return log.LayerStack, nil
	case "server":
		return log.LayerServer, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be driver, stack, or server)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "operation":
		return log.CategoryOperation, nil
	case "result":
		return log.CategoryResult, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be operation, result, state, or error)", s)
	}
}

// parseOperation parses an operation name such as "connect" or
// "add-or-update" (case-insensitive, '-' and '_' are interchangeable).
func parseOperation(s string) (log.Operation, error) {
	name := strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	for op := log.Operation(0); op <= lastOperation; op++ {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("invalid operation: %s", s)
}
