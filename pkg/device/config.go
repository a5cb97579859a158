package device

import (
	"log/slog"

	"github.com/escoand/python-miio/pkg/log"
)

// Config configures a Controller.
type Config struct {
	// ID identifies the controller in trace events.
	// If empty, a random UUID is assigned.
	ID string

	// Owner is the object whose exported methods implement actuators.
	// Setter names not found in the attached actuator table are
	// resolved against Owner by name when the setter is invoked.
	Owner any

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Trace receives fetch and setter events.
	// If nil, tracing is disabled.
	Trace log.Logger
}

// DefaultConfig returns a Config with no owner, logger or trace.
func DefaultConfig() Config {
	return Config{}
}
