// Package statusdef loads status type definitions from YAML.
//
// A file holds one or more YAML documents, each defining one status type:
//
//	name: PurifierStatus
//	parent: DeviceStatus
//	properties:
//	  - name: temperature
//	    key: temp_dec
//	    scale: 0.1
//	    sensor: {name: Temperature, unit: C}
//	  - name: power
//	    switch: {name: Power, setter_name: set_power}
//	  - name: level
//	    setting: {name: Level, setter_name: set_level, min_value: 0, max_value: 2}
//
// Parents are resolved against types defined earlier in the same input and
// against the status registry. Option keys that are not recognized for an
// annotation kind end up in the descriptor's extras.
package statusdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/status"
)

// Definition errors.
var (
	ErrMissingName        = errors.New("missing name")
	ErrUnknownParent      = errors.New("unknown parent type")
	ErrMultipleAnnotation = errors.New("more than one annotation on property")
	ErrMissingSetterName  = errors.New("missing setter_name")
)

// RawTypeDef is a status type definition as it appears in YAML.
type RawTypeDef struct {
	Name        string           `yaml:"name"`
	Parent      string           `yaml:"parent"`
	Description string           `yaml:"description"`
	Properties  []RawPropertyDef `yaml:"properties"`
}

// RawPropertyDef is one property of a RawTypeDef. At most one of Sensor,
// Switch and Setting may be set.
type RawPropertyDef struct {
	Name  string  `yaml:"name"`
	Key   string  `yaml:"key"`   // payload key, defaults to Name
	Scale float64 `yaml:"scale"` // multiplier applied to numeric values
	Const any     `yaml:"const"` // fixed value instead of a payload key

	Sensor  map[string]any `yaml:"sensor"`
	Switch  map[string]any `yaml:"switch"`
	Setting map[string]any `yaml:"setting"`
}

// Parse decodes all YAML documents in data.
func Parse(data []byte) ([]*RawTypeDef, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var defs []*RawTypeDef
	for {
		var def RawTypeDef
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing status def %d: %w", len(defs)+1, err)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("status def %d: %w", len(defs)+1, ErrMissingName)
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

// Build constructs status types from definitions without registering
// them. Types are returned in input order.
func Build(defs []*RawTypeDef) ([]*status.Type, error) {
	built := make(map[string]*status.Type, len(defs))
	types := make([]*status.Type, 0, len(defs))

	for _, def := range defs {
		var parent *status.Type
		if def.Parent != "" {
			var ok bool
			if parent, ok = built[def.Parent]; !ok {
				if parent, ok = status.Lookup(def.Parent); !ok {
					return nil, fmt.Errorf("%s: %w: %s", def.Name, ErrUnknownParent, def.Parent)
				}
			}
		}

		t := status.NewType(def.Name, parent)
		for _, p := range def.Properties {
			if err := defineProperty(t, p); err != nil {
				return nil, fmt.Errorf("%s: %w", def.Name, err)
			}
		}
		built[def.Name] = t
		types = append(types, t)
	}
	return types, nil
}

// Load parses data, builds its types and registers them.
func Load(data []byte) ([]*status.Type, error) {
	defs, err := Parse(data)
	if err != nil {
		return nil, err
	}
	types, err := Build(defs)
	if err != nil {
		return nil, err
	}
	if err := status.RegisterAll(types...); err != nil {
		return nil, err
	}
	return types, nil
}

// LoadFile loads and registers the types defined in a file.
func LoadFile(path string) ([]*status.Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	types, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return types, nil
}

func defineProperty(t *status.Type, p RawPropertyDef) error {
	if p.Name == "" {
		return fmt.Errorf("property: %w", ErrMissingName)
	}

	annotations, err := annotationsOf(p)
	if err != nil {
		return fmt.Errorf("property %s: %w", p.Name, err)
	}
	return t.Define(p.Name, getterOf(p), annotations...)
}

func getterOf(p RawPropertyDef) status.Getter {
	if p.Const != nil {
		return status.Const(p.Const)
	}
	key := p.Key
	if key == "" {
		key = p.Name
	}
	if p.Scale == 0 {
		return status.Field(key)
	}
	scale := p.Scale
	return status.Convert(key, func(v any) (any, error) {
		f, ok := toFloat(v)
		if !ok {
			return nil, &status.TypeError{Key: key, Want: "number", Got: v}
		}
		return f * scale, nil
	})
}

func annotationsOf(p RawPropertyDef) ([]descriptor.Annotation, error) {
	set := 0
	for _, m := range []map[string]any{p.Sensor, p.Switch, p.Setting} {
		if m != nil {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, nil
	case set > 1:
		return nil, ErrMultipleAnnotation
	}

	var (
		opts  map[string]any
		build func(name, setter string, opts ...descriptor.Option) descriptor.Annotation
	)
	switch {
	case p.Sensor != nil:
		opts = p.Sensor
		build = func(name, _ string, o ...descriptor.Option) descriptor.Annotation {
			return descriptor.SensorAnnotation(name, o...)
		}
	case p.Switch != nil:
		opts, build = p.Switch, descriptor.SwitchAnnotation
	default:
		opts, build = p.Setting, descriptor.SettingAnnotation
	}

	opts = copyOpts(opts)
	var name string
	if v, ok := opts[descriptor.OptName]; ok && v != nil {
		name = fmt.Sprint(v)
	}
	delete(opts, descriptor.OptName)

	var setter string
	if p.Sensor == nil {
		setter, _ = opts[descriptor.OptSetterName].(string)
		if setter == "" {
			return nil, ErrMissingSetterName
		}
		delete(opts, descriptor.OptSetterName)
	}

	if raw, ok := opts[descriptor.OptChoices]; ok {
		choices, err := choicesOf(raw)
		if err != nil {
			return nil, err
		}
		opts[descriptor.OptChoices] = choices
	}

	return []descriptor.Annotation{build(name, setter, descriptor.WithOptions(opts))}, nil
}

// choicesOf accepts a list of names or a list of {name, value} mappings.
func choicesOf(raw any) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		return raw, nil
	}
	out := make(descriptor.Choices, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case string:
			out = append(out, descriptor.Choice{Name: it, Value: it})
		case map[string]any:
			name, _ := it["name"].(string)
			if name == "" {
				return nil, fmt.Errorf("%w: choice without name", descriptor.ErrInvalidChoices)
			}
			value, ok := it["value"]
			if !ok {
				value = name
			}
			out = append(out, descriptor.Choice{Name: name, Value: value})
		default:
			return nil, fmt.Errorf("%w: element %v (%T)", descriptor.ErrInvalidChoices, item, item)
		}
	}
	return out, nil
}

func copyOpts(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
