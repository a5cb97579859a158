package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("controller_id", event.ControllerID),
		slog.String("category", event.Category.String()),
	}
	if event.StatusType != "" {
		attrs = append(attrs, slog.String("status_type", event.StatusType))
	}

	switch {
	case event.Fetch != nil:
		attrs = append(attrs,
			slog.Duration("duration", event.Fetch.Duration),
			slog.Int("properties", event.Fetch.Properties),
		)
	case event.Setter != nil:
		attrs = append(attrs,
			slog.String("setter", event.Setter.SetterName),
			slog.Any("value", event.Setter.Value),
			slog.Duration("duration", event.Setter.Duration),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("operation", event.Error.Operation),
			slog.String("error", event.Error.Message),
		)
		if event.Error.SetterName != "" {
			attrs = append(attrs, slog.String("setter", event.Error.SetterName))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
