package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
// Useful during development to see commissioning events on the console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a SlogAdapter that logs at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter logging at level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
		slog.String("op", event.Operation.String()),
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if id := event.NetworkIDString(); id != "" {
		attrs = append(attrs, slog.String("network_id", id))
	}

	switch {
	case event.Result != nil:
		attrs = append(attrs, slog.String("status", event.Result.StatusName))
		if event.Result.DebugText != "" {
			attrs = append(attrs, slog.String("debug_text", event.Result.DebugText))
		}
		if event.Result.NetworkIndex != nil {
			attrs = append(attrs, slog.Uint64("network_index", uint64(*event.Result.NetworkIndex)))
		}
		if event.Result.ConnectError != nil {
			attrs = append(attrs, slog.Int64("connect_error", int64(*event.Result.ConnectError)))
		}
		if event.Result.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Result.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.ScanResult != nil:
		attrs = append(attrs,
			slog.String("network_name", event.ScanResult.NetworkName),
			slog.Uint64("pan_id", uint64(event.ScanResult.PANID)),
			slog.Uint64("channel", uint64(event.ScanResult.Channel)),
			slog.Int("rssi", int(event.ScanResult.RSSI)),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), a.level, "commissioning", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
