package descriptor

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Kind identifies the capability variant of a descriptor.
type Kind uint8

const (
	KindSensor Kind = iota
	KindSwitch
	KindNumberSetting
	KindEnumSetting
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSensor:
		return "sensor"
	case KindSwitch:
		return "switch"
	case KindNumberSetting:
		return "number"
	case KindEnumSetting:
		return "enum"
	default:
		return "unknown"
	}
}

// Writable returns true if descriptors of this kind carry a setter.
func (k Kind) Writable() bool {
	return k == KindSwitch || k == KindNumberSetting || k == KindEnumSetting
}

// IsSetting returns true for the number and enum setting kinds.
func (k Kind) IsSetting() bool {
	return k == KindNumberSetting || k == KindEnumSetting
}

// Descriptor errors.
var (
	ErrInvalidBounds  = errors.New("invalid numeric bounds")
	ErrInvalidStep    = errors.New("invalid step")
	ErrEmptyChoices   = errors.New("choice set is empty")
	ErrInvalidChoices = errors.New("invalid choices")
	ErrSetterNotFound = errors.New("setter not found")
	ErrNotBound       = errors.New("setter not bound")
	ErrOutOfRange     = errors.New("value out of range")
	ErrUnknownChoice  = errors.New("unknown choice")
)

// Setter applies a new value through an actuator.
type Setter func(ctx context.Context, value any) error

// Descriptor is the common view of every capability record.
type Descriptor interface {
	// Property is the name of the backing status property.
	Property() string

	// Name is the human-readable label.
	Name() string

	// Kind is the capability variant.
	Kind() Kind

	// Unit is the display unit, empty if none.
	Unit() string

	// Extras returns a copy of the unrecognized annotation options.
	Extras() map[string]any
}

// Writable is implemented by descriptors that can change device state.
type Writable interface {
	Descriptor

	// SetterName is the name of the actuator method.
	SetterName() string

	// Set invokes the bound setter. Returns ErrNotBound if Bind was
	// never applied to this descriptor.
	Set(ctx context.Context, value any) error

	bind(r Resolver) Writable
}

// Setting is a writable number or enum descriptor.
type Setting interface {
	Writable

	isSetting()
}

type base struct {
	property string
	name     string
	unit     string
	extras   map[string]any
}

func (b *base) Property() string { return b.property }
func (b *base) Name() string     { return b.name }
func (b *base) Unit() string     { return b.unit }

func (b *base) Extras() map[string]any {
	return copyExtras(b.extras)
}

type writable struct {
	base
	setterName string
	setter     Setter
}

func (w *writable) SetterName() string { return w.setterName }

func (w *writable) Set(ctx context.Context, value any) error {
	if w.setter == nil {
		return fmt.Errorf("%w: %s", ErrNotBound, w.property)
	}
	return w.setter(ctx, value)
}

// Sensor is a read-only capability.
type Sensor struct {
	base
}

// Kind returns KindSensor.
func (s *Sensor) Kind() Kind { return KindSensor }

// String returns a short description.
func (s *Sensor) String() string {
	return describe(s)
}

// Switch is a writable boolean capability.
type Switch struct {
	writable
}

// Kind returns KindSwitch.
func (s *Switch) Kind() Kind { return KindSwitch }

func (s *Switch) bind(r Resolver) Writable {
	c := *s
	c.setter = resolveThunk(s.setterName, r)
	return &c
}

// String returns a short description.
func (s *Switch) String() string {
	return describe(s)
}

// NumberSetting is a writable numeric capability with bounds.
type NumberSetting struct {
	writable
	min  float64
	max  float64
	step float64
}

// Kind returns KindNumberSetting.
func (n *NumberSetting) Kind() Kind { return KindNumberSetting }

// Min returns the lower bound.
func (n *NumberSetting) Min() float64 { return n.min }

// Max returns the upper bound.
func (n *NumberSetting) Max() float64 { return n.max }

// Step returns the increment, 1 unless annotated otherwise.
func (n *NumberSetting) Step() float64 { return n.step }

// Validate checks that value is a finite number within [Min, Max].
func (n *NumberSetting) Validate(value any) error {
	v, ok := toFloat64(value)
	if !ok || !isFinite(v) {
		return fmt.Errorf("%w: %v is not a number", ErrOutOfRange, value)
	}
	if v < n.min || v > n.max {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, value, n.min, n.max)
	}
	return nil
}

func (n *NumberSetting) bind(r Resolver) Writable {
	c := *n
	c.setter = resolveThunk(n.setterName, r)
	return &c
}

func (n *NumberSetting) isSetting() {}

// String returns a short description.
func (n *NumberSetting) String() string {
	return fmt.Sprintf("%s [%v..%v step %v]", describe(n), n.min, n.max, n.step)
}

// EnumSetting is a writable capability restricted to named choices.
type EnumSetting struct {
	writable
	choices Choices
}

// Kind returns KindEnumSetting.
func (e *EnumSetting) Kind() Kind { return KindEnumSetting }

// Choices returns a copy of the allowed values.
func (e *EnumSetting) Choices() Choices {
	return append(Choices(nil), e.choices...)
}

// Validate checks that value is one of the choices, by value or by name.
func (e *EnumSetting) Validate(value any) error {
	if _, ok := e.choices.Match(value); ok {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownChoice, value)
}

func (e *EnumSetting) bind(r Resolver) Writable {
	c := *e
	c.setter = resolveThunk(e.setterName, r)
	return &c
}

func (e *EnumSetting) isSetting() {}

// String returns a short description.
func (e *EnumSetting) String() string {
	return fmt.Sprintf("%s %v", describe(e), e.choices.Names())
}

func describe(d Descriptor) string {
	s := fmt.Sprintf("%s %s (%q)", d.Kind(), d.Property(), d.Name())
	if u := d.Unit(); u != "" {
		s += " " + u
	}
	return s
}

func copyExtras(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Descriptor = (*Sensor)(nil)
	_ Writable   = (*Switch)(nil)
	_ Setting    = (*NumberSetting)(nil)
	_ Setting    = (*EnumSetting)(nil)
)
