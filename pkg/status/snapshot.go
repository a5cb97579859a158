package status

import (
	"github.com/escoand/python-miio/pkg/descriptor"
)

// Snapshot is one fetched instance of a status type. It holds the raw
// payload only; descriptors are derived from the type on demand.
type Snapshot struct {
	typ  *Type
	data Data
}

// Type returns the snapshot's status type.
func (s *Snapshot) Type() *Type { return s.typ }

// Data returns a shallow copy of the payload.
func (s *Snapshot) Data() Data {
	out := make(Data, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Get evaluates a property. A panicking getter is reported as a
// *PanicError.
func (s *Snapshot) Get(name string) (any, error) {
	p, err := s.typ.Property(name)
	if err != nil {
		return nil, err
	}
	return s.eval(p)
}

// Values evaluates every property of the merged set. Failing properties
// map to their error.
func (s *Snapshot) Values() map[string]any {
	props := s.typ.Properties()
	out := make(map[string]any, len(props))
	for name, p := range props {
		v, err := s.eval(p)
		if err != nil {
			out[name] = err
			continue
		}
		out[name] = v
	}
	return out
}

func (s *Snapshot) eval(p *Property) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &PanicError{Property: p.name, Value: r}
		}
	}()
	return p.get(s.data)
}

// Descriptors returns fresh descriptors for the snapshot's type.
func (s *Snapshot) Descriptors() map[string]descriptor.Descriptor {
	return s.typ.Descriptors()
}

// Sensors returns the sensor descriptors for the snapshot's type.
func (s *Snapshot) Sensors() map[string]*descriptor.Sensor {
	return s.typ.Sensors()
}

// Switches returns the switch descriptors for the snapshot's type.
func (s *Snapshot) Switches() map[string]*descriptor.Switch {
	return s.typ.Switches()
}

// Settings returns the setting descriptors for the snapshot's type.
func (s *Snapshot) Settings() map[string]descriptor.Setting {
	return s.typ.Settings()
}
