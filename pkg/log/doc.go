// Package log provides structured commissioning event logging for meshprov.
//
// This package defines the Logger interface and Event types for capturing
// what the network-provisioning driver, the mesh stack and the commissioning
// server did: each operation, its resulting status, slot transitions of the
// staged/saved configuration, scan results and errors. It is separate from
// operational logging (slog) - the event log is a complete machine-readable
// trace of a commissioning session.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	events := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	events, _ := log.NewFileLogger("/var/log/meshprov/device.mlog")
//
//	// Both
//	events := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
//	drv := netcomm.NewDriver(stack, parser, netcomm.WithEventLogger(events))
//
// # Event Types
//
// Events are captured at three layers:
//   - Driver: CRUD, commit/revert, connect and scan submissions
//   - Stack: attach and scan execution inside the mesh stack
//   - Server: fail-safe and commissioning-complete handling
//
// Each event carries at most one payload: a Result, a StateChange, a
// ScanResult or an Error.
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .mlog extension.
// The meshprov-log command provides viewing, statistics and export.
package log
