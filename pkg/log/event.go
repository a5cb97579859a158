package log

import (
	"time"
)

// Event is one trace record. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint" yaml:"timestamp"`

	// ControllerID identifies the controller instance (UUID).
	ControllerID string `cbor:"2,keyasint" yaml:"controller_id"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint" yaml:"category"`

	// StatusType is the status type name involved, if known.
	StatusType string `cbor:"4,keyasint,omitempty" yaml:"status_type,omitempty"`

	// Type-specific payload (one of these will be set).
	Fetch  *FetchEvent     `cbor:"10,keyasint,omitempty" yaml:"fetch,omitempty"`
	Setter *SetterEvent    `cbor:"11,keyasint,omitempty" yaml:"setter,omitempty"`
	Error  *ErrorEventData `cbor:"12,keyasint,omitempty" yaml:"error,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFetch indicates a status fetch.
	CategoryFetch Category = 0
	// CategorySetter indicates a setter invocation.
	CategorySetter Category = 1
	// CategoryError indicates a failed operation.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFetch:
		return "FETCH"
	case CategorySetter:
		return "SETTER"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FetchEvent captures a completed status fetch.
type FetchEvent struct {
	// Duration of the underlying fetch, stored as nanoseconds.
	Duration time.Duration `cbor:"1,keyasint" yaml:"duration"`

	// Properties is the number of properties on the fetched type.
	Properties int `cbor:"2,keyasint" yaml:"properties"`

	// Payload is the raw payload (CBOR-compatible representation).
	Payload map[string]any `cbor:"3,keyasint,omitempty" yaml:"payload,omitempty"`
}

// SetterEvent captures a completed setter invocation.
type SetterEvent struct {
	// SetterName is the actuator method name.
	SetterName string `cbor:"1,keyasint" yaml:"setter_name"`

	// Value passed to the actuator.
	Value any `cbor:"2,keyasint,omitempty" yaml:"value,omitempty"`

	// Duration of the actuator call, stored as nanoseconds.
	Duration time.Duration `cbor:"3,keyasint" yaml:"duration"`
}

// ErrorEventData captures a failed fetch or setter.
type ErrorEventData struct {
	// Operation is the failed operation ("fetch" or "setter").
	Operation string `cbor:"1,keyasint" yaml:"operation"`

	// Message is the error message.
	Message string `cbor:"2,keyasint" yaml:"message"`

	// SetterName is set when a setter failed.
	SetterName string `cbor:"3,keyasint,omitempty" yaml:"setter_name,omitempty"`
}
