package status

import (
	"fmt"
	"sort"
	"sync"

	"github.com/escoand/python-miio/pkg/descriptor"
)

// Data is the raw decoded payload a snapshot is built from.
type Data map[string]any

// Getter evaluates a property against a snapshot's payload.
type Getter func(d Data) (any, error)

// Field returns a getter that reads key from the payload.
// A missing key fails with *KeyError.
func Field(key string) Getter {
	return func(d Data) (any, error) {
		v, ok := d[key]
		if !ok {
			return nil, &KeyError{Key: key}
		}
		return v, nil
	}
}

// Convert returns a getter that reads key and passes it through conv.
func Convert(key string, conv func(v any) (any, error)) Getter {
	field := Field(key)
	return func(d Data) (any, error) {
		v, err := field(d)
		if err != nil {
			return nil, err
		}
		return conv(v)
	}
}

// Const returns a getter that always yields v.
func Const(v any) Getter {
	return func(Data) (any, error) { return v, nil }
}

// Property is one named accessor of a status type.
type Property struct {
	name       string
	get        Getter
	annotation *descriptor.Annotation
	owner      *Type
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Owner returns the type that defined the property.
func (p *Property) Owner() *Type { return p.owner }

// Annotation returns the descriptor annotation, if any.
func (p *Property) Annotation() (descriptor.Annotation, bool) {
	if p.annotation == nil {
		return descriptor.Annotation{}, false
	}
	return *p.annotation, true
}

// Type is a status type: its own properties plus an optional parent.
type Type struct {
	mu         sync.RWMutex
	name       string
	parent     *Type
	properties map[string]*Property
}

// NewType creates a status type. parent may be nil.
func NewType(name string, parent *Type) *Type {
	return &Type{
		name:       name,
		parent:     parent,
		properties: make(map[string]*Property),
	}
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Parent returns the parent type, nil for a root type.
func (t *Type) Parent() *Type { return t.parent }

// Define adds a property to the type. At most one annotation may be
// given. The annotation is validated immediately: malformed setting
// options are returned as configuration errors here rather than when
// descriptors are requested.
func (t *Type) Define(name string, get Getter, annotations ...descriptor.Annotation) error {
	if name == "" {
		return fmt.Errorf("%w: empty name on %s", ErrInvalidProperty, t.name)
	}
	if get == nil {
		return fmt.Errorf("%w: %s.%s has no getter", ErrInvalidProperty, t.name, name)
	}
	if len(annotations) > 1 {
		return fmt.Errorf("%w: %s.%s has %d annotations", ErrInvalidProperty, t.name, name, len(annotations))
	}

	p := &Property{name: name, get: get, owner: t}
	if len(annotations) == 1 {
		ann := annotations[0]
		if _, err := ann.Build(name); err != nil {
			return fmt.Errorf("%s.%s: %w", t.name, name, err)
		}
		p.annotation = &ann
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.properties[name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateProperty, t.name, name)
	}
	t.properties[name] = p
	return nil
}

// MustDefine is like Define but panics on error. It returns t so that
// definitions can be chained.
func (t *Type) MustDefine(name string, get Getter, annotations ...descriptor.Annotation) *Type {
	if err := t.Define(name, get, annotations...); err != nil {
		panic(err)
	}
	return t
}

// Lineage returns the type and its ancestors, most-derived first.
func (t *Type) Lineage() []*Type {
	var chain []*Type
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

// IsA returns true if other is t or one of t's ancestors.
func (t *Type) IsA(other *Type) bool {
	for cur := t; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Properties returns the merged property set of the type and its
// ancestors. A name defined at several levels resolves to the
// most-derived definition.
func (t *Type) Properties() map[string]*Property {
	merged := make(map[string]*Property)
	lineage := t.Lineage()
	for i := len(lineage) - 1; i >= 0; i-- {
		lt := lineage[i]
		lt.mu.RLock()
		for name, p := range lt.properties {
			merged[name] = p
		}
		lt.mu.RUnlock()
	}
	return merged
}

// PropertyNames returns the merged property names in alphabetical order.
func (t *Type) PropertyNames() []string {
	return sortedNames(t.Properties())
}

func sortedNames(props map[string]*Property) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns a property from the merged set.
func (t *Type) Property(name string) (*Property, error) {
	for cur := t; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		p, ok := cur.properties[name]
		cur.mu.RUnlock()
		if ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, t.name, name)
}

// Descriptors builds a fresh descriptor for every annotated property in
// the merged set, keyed by property name.
func (t *Type) Descriptors() map[string]descriptor.Descriptor {
	out := make(map[string]descriptor.Descriptor)
	for name, p := range t.Properties() {
		if p.annotation == nil {
			continue
		}
		// Annotations are validated in Define and immutable afterwards.
		d, err := p.annotation.Build(name)
		if err != nil {
			continue
		}
		out[name] = d
	}
	return out
}

// Sensors returns the sensor descriptors of the merged set.
func (t *Type) Sensors() map[string]*descriptor.Sensor {
	return Sensors(t.Descriptors())
}

// Switches returns the switch descriptors of the merged set.
func (t *Type) Switches() map[string]*descriptor.Switch {
	return Switches(t.Descriptors())
}

// Settings returns the number and enum setting descriptors of the merged set.
func (t *Type) Settings() map[string]descriptor.Setting {
	return Settings(t.Descriptors())
}

// New creates a snapshot of this type over data.
func (t *Type) New(data Data) *Snapshot {
	return &Snapshot{typ: t, data: data}
}

// String returns the type name.
func (t *Type) String() string { return t.name }

// Sensors filters a descriptor map down to sensors.
func Sensors(descs map[string]descriptor.Descriptor) map[string]*descriptor.Sensor {
	out := make(map[string]*descriptor.Sensor)
	for name, d := range descs {
		if s, ok := d.(*descriptor.Sensor); ok {
			out[name] = s
		}
	}
	return out
}

// Switches filters a descriptor map down to switches.
func Switches(descs map[string]descriptor.Descriptor) map[string]*descriptor.Switch {
	out := make(map[string]*descriptor.Switch)
	for name, d := range descs {
		if s, ok := d.(*descriptor.Switch); ok {
			out[name] = s
		}
	}
	return out
}

// Settings filters a descriptor map down to number and enum settings.
func Settings(descs map[string]descriptor.Descriptor) map[string]descriptor.Setting {
	out := make(map[string]descriptor.Setting)
	for name, d := range descs {
		if s, ok := d.(descriptor.Setting); ok {
			out[name] = s
		}
	}
	return out
}
