package descriptor

import (
	"fmt"
)

// Recognized annotation option keys.
const (
	OptName       = "name"
	OptUnit       = "unit"
	OptSetterName = "setter_name"
	OptMinValue   = "min_value"
	OptMaxValue   = "max_value"
	OptStep       = "step"
	OptChoices    = "choices"
)

// annotationClass is the declaration used, before a setting is narrowed
// to its number or enum kind.
type annotationClass uint8

const (
	classSensor annotationClass = iota
	classSwitch
	classSetting
)

var recognized = map[annotationClass]map[string]bool{
	classSensor: {OptName: true, OptUnit: true},
	classSwitch: {OptName: true, OptSetterName: true},
	classSetting: {
		OptName: true, OptSetterName: true, OptUnit: true,
		OptMinValue: true, OptMaxValue: true, OptStep: true, OptChoices: true,
	},
}

// Annotation is descriptor metadata attached to a status property when
// its type is defined. Building an Annotation never fails; validation
// happens in Build.
type Annotation struct {
	class      annotationClass
	name       string
	unit       string
	setterName string
	minValue   any
	maxValue   any
	step       any
	choices    any
	extras     map[string]any
}

// Option sets one annotation option.
type Option func(*Annotation)

// SensorAnnotation declares a read-only measured value.
func SensorAnnotation(name string, opts ...Option) Annotation {
	return newAnnotation(classSensor, name, "", opts)
}

// SwitchAnnotation declares a writable boolean driven by the named actuator method.
func SwitchAnnotation(name, setterName string, opts ...Option) Annotation {
	return newAnnotation(classSwitch, name, setterName, opts)
}

// SettingAnnotation declares a writable number or enum driven by the named actuator
// method. Supplying WithChoices makes it an enum setting; otherwise
// WithMin and WithMax are required.
func SettingAnnotation(name, setterName string, opts ...Option) Annotation {
	return newAnnotation(classSetting, name, setterName, opts)
}

func newAnnotation(class annotationClass, name, setterName string, opts []Option) Annotation {
	a := Annotation{
		class:      class,
		name:       name,
		setterName: setterName,
		extras:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithUnit sets the display unit.
func WithUnit(unit string) Option {
	return WithExtra(OptUnit, unit)
}

// WithMin sets the lower bound of a number setting.
func WithMin(v any) Option {
	return WithExtra(OptMinValue, v)
}

// WithMax sets the upper bound of a number setting.
func WithMax(v any) Option {
	return WithExtra(OptMaxValue, v)
}

// WithStep sets the increment of a number setting.
func WithStep(v any) Option {
	return WithExtra(OptStep, v)
}

// WithChoices sets the members of an enum setting. Accepts Choices,
// an Enumeration, []string, or []any of strings or fmt.Stringers.
func WithChoices(v any) Option {
	return WithExtra(OptChoices, v)
}

// WithExtra sets an option by key. Keys recognized for the annotation
// kind fill the matching field; any other key is kept in extras.
func WithExtra(key string, value any) Option {
	return func(a *Annotation) {
		a.set(key, value)
	}
}

// WithOptions applies keyword-style options in the same way as WithExtra.
func WithOptions(opts map[string]any) Option {
	return func(a *Annotation) {
		for k, v := range opts {
			a.set(k, v)
		}
	}
}

func (a *Annotation) set(key string, value any) {
	if !recognized[a.class][key] {
		a.extras[key] = value
		return
	}
	switch key {
	case OptName:
		a.name = fmt.Sprint(value)
	case OptUnit:
		a.unit = fmt.Sprint(value)
	case OptSetterName:
		a.setterName = fmt.Sprint(value)
	case OptMinValue:
		a.minValue = value
	case OptMaxValue:
		a.maxValue = value
	case OptStep:
		a.step = value
	case OptChoices:
		a.choices = value
	}
}

// Kind returns the kind of descriptor Build produces.
func (a Annotation) Kind() Kind {
	switch a.class {
	case classSensor:
		return KindSensor
	case classSwitch:
		return KindSwitch
	}
	if a.choices != nil {
		return KindEnumSetting
	}
	return KindNumberSetting
}

// Name returns the annotated label.
func (a Annotation) Name() string { return a.name }

// SetterName returns the actuator method name, empty for sensors.
func (a Annotation) SetterName() string { return a.setterName }

// Build constructs a new descriptor for the named property. It fails
// with ErrInvalidBounds, ErrInvalidStep, ErrEmptyChoices or
// ErrInvalidChoices when the setting options are malformed. Build never
// reads the property value.
func (a Annotation) Build(property string) (Descriptor, error) {
	b := base{
		property: property,
		name:     a.name,
		unit:     a.unit,
		extras:   copyExtras(a.extras),
	}
	w := writable{base: b, setterName: a.setterName}

	switch a.Kind() {
	case KindSensor:
		return &Sensor{base: b}, nil

	case KindSwitch:
		return &Switch{writable: w}, nil

	case KindEnumSetting:
		choices, err := toChoices(a.choices)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", property, err)
		}
		if len(choices) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyChoices, property)
		}
		return &EnumSetting{writable: w, choices: choices}, nil

	default:
		return a.buildNumber(property, w)
	}
}

func (a Annotation) buildNumber(property string, w writable) (*NumberSetting, error) {
	min, ok := toFloat64(a.minValue)
	if !ok || !isFinite(min) {
		return nil, fmt.Errorf("%w: %s: min_value %v", ErrInvalidBounds, property, a.minValue)
	}
	max, ok := toFloat64(a.maxValue)
	if !ok || !isFinite(max) {
		return nil, fmt.Errorf("%w: %s: max_value %v", ErrInvalidBounds, property, a.maxValue)
	}
	if min >= max {
		return nil, fmt.Errorf("%w: %s: min_value %v >= max_value %v", ErrInvalidBounds, property, min, max)
	}

	step := 1.0
	if a.step != nil {
		s, ok := toFloat64(a.step)
		if !ok || !isFinite(s) || s <= 0 {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidStep, property, a.step)
		}
		step = s
	}

	return &NumberSetting{writable: w, min: min, max: max, step: step}, nil
}
