package status

import (
	"errors"
	"fmt"
)

// Status type errors.
var (
	ErrDuplicateProperty = errors.New("property already defined")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrDuplicateType     = errors.New("status type already registered")
	ErrInvalidProperty   = errors.New("invalid property")
)

// KeyError reports a payload key that is absent from a snapshot.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q not in payload", e.Key)
}

// TypeError reports a payload value of an unexpected type.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("key %q: expected %s, got %T", e.Key, e.Want, e.Got)
}

// PanicError wraps a value recovered from a panicking getter.
type PanicError struct {
	Property string
	Value    any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("property %s panicked: %v", e.Property, e.Value)
}

// Unwrap returns the recovered value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
