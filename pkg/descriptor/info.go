package descriptor

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Info is a flat, serializable summary of a descriptor for generic clients.
// CBOR encoding uses integer keys for compactness.
type Info struct {
	Property   string         `cbor:"1,keyasint" yaml:"property"`
	Name       string         `cbor:"2,keyasint" yaml:"name"`
	Kind       string         `cbor:"3,keyasint" yaml:"kind"`
	Unit       string         `cbor:"4,keyasint,omitempty" yaml:"unit,omitempty"`
	SetterName string         `cbor:"5,keyasint,omitempty" yaml:"setter_name,omitempty"`
	Min        *float64       `cbor:"6,keyasint,omitempty" yaml:"min_value,omitempty"`
	Max        *float64       `cbor:"7,keyasint,omitempty" yaml:"max_value,omitempty"`
	Step       *float64       `cbor:"8,keyasint,omitempty" yaml:"step,omitempty"`
	Choices    []string       `cbor:"9,keyasint,omitempty" yaml:"choices,omitempty"`
	Extras     map[string]any `cbor:"10,keyasint,omitempty" yaml:"extras,omitempty"`
}

// InfoOf summarizes a descriptor.
func InfoOf(d Descriptor) Info {
	info := Info{
		Property: d.Property(),
		Name:     d.Name(),
		Kind:     d.Kind().String(),
		Unit:     d.Unit(),
	}
	if extras := d.Extras(); len(extras) > 0 {
		info.Extras = extras
	}
	if w, ok := d.(Writable); ok {
		info.SetterName = w.SetterName()
	}
	switch v := d.(type) {
	case *NumberSetting:
		min, max, step := v.Min(), v.Max(), v.Step()
		info.Min, info.Max, info.Step = &min, &max, &step
	case *EnumSetting:
		info.Choices = v.Choices().Names()
	}
	return info
}

// Infos summarizes a descriptor map, sorted by property name.
func Infos[D Descriptor](descs map[string]D) []Info {
	out := make([]Info, 0, len(descs))
	for _, d := range descs {
		out = append(out, InfoOf(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Property < out[j].Property })
	return out
}

// infoEncMode produces deterministic output so equal descriptor sets
// encode to equal bytes.
var infoEncMode cbor.EncMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	infoEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create descriptor CBOR encoder mode: %v", err))
	}
}

// EncodeCBOR encodes descriptor summaries to CBOR.
func EncodeCBOR(infos []Info) ([]byte, error) {
	return infoEncMode.Marshal(infos)
}

// DecodeCBOR decodes descriptor summaries from CBOR.
func DecodeCBOR(data []byte) ([]Info, error) {
	var infos []Info
	if err := cbor.Unmarshal(data, &infos); err != nil {
		return nil, fmt.Errorf("decoding descriptors: %w", err)
	}
	return infos, nil
}

// EncodeYAML encodes descriptor summaries to YAML.
func EncodeYAML(infos []Info) ([]byte, error) {
	return yaml.Marshal(infos)
}
