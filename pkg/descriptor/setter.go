package descriptor

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
)

// Resolver looks up an actuator by setter name.
type Resolver interface {
	ResolveSetter(name string) (Setter, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Setter, error)

// ResolveSetter calls f(name).
func (f ResolverFunc) ResolveSetter(name string) (Setter, error) {
	return f(name)
}

// Bind returns d with a setter that resolves d's setter name through r
// on every invocation. Sensors have no setter and are returned as is.
// The given descriptor is not modified.
func Bind(d Descriptor, r Resolver) Descriptor {
	if w, ok := d.(Writable); ok {
		return w.bind(r)
	}
	return d
}

func resolveThunk(name string, r Resolver) Setter {
	return func(ctx context.Context, value any) error {
		if name == "" {
			return fmt.Errorf("%w: no setter name", ErrSetterNotFound)
		}
		set, err := r.ResolveSetter(name)
		if err != nil {
			return err
		}
		return set(ctx, value)
	}
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// MethodResolver resolves setter names to exported methods of Target.
// A snake_case name such as "set_power" maps to the method SetPower.
// The lookup is done when the setter is called, so it always sees the
// current Target.
//
// Supported method shapes:
//
//	func(ctx context.Context, v T) error
//	func(v T) error
//	func(v T)
type MethodResolver struct {
	Target any
}

// ResolveSetter implements Resolver.
func (m MethodResolver) ResolveSetter(name string) (Setter, error) {
	if m.Target == nil {
		return nil, fmt.Errorf("%w: %s", ErrSetterNotFound, name)
	}
	method := reflect.ValueOf(m.Target).MethodByName(MethodName(name))
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: %s (%T has no method %s)", ErrSetterNotFound, name, m.Target, MethodName(name))
	}

	mt := method.Type()
	withCtx := mt.NumIn() == 2 && mt.In(0).Implements(contextType)
	if !withCtx && mt.NumIn() != 1 {
		return nil, fmt.Errorf("%w: %s has unsupported signature %s", ErrSetterNotFound, name, mt)
	}
	if mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
		return nil, fmt.Errorf("%w: %s has unsupported signature %s", ErrSetterNotFound, name, mt)
	}
	argType := mt.In(mt.NumIn() - 1)

	return func(ctx context.Context, value any) error {
		arg, err := convertArg(value, argType)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		in := []reflect.Value{arg}
		if withCtx {
			in = []reflect.Value{reflect.ValueOf(ctx), arg}
		}
		out := method.Call(in)
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

func convertArg(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot pass nil as %s", t)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(v.Kind()) && isNumber(t.Kind()) {
		if out, ok := convertNumber(v, t); ok {
			return out, nil
		}
		return reflect.Value{}, fmt.Errorf("cannot represent %v as %s", value, t)
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, t)
}

// convertNumber converts v to t only if the value survives unchanged:
// fractions, negative values for unsigned targets and overflows fail.
func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	out := reflect.New(t).Elem()
	switch {
	case out.CanInt():
		var i int64
		switch {
		case v.CanInt():
			i = v.Int()
		case v.CanUint():
			u := v.Uint()
			if u > math.MaxInt64 {
				return reflect.Value{}, false
			}
			i = int64(u)
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, false
			}
			i = int64(f)
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, false
		}
		out.SetInt(i)
	case out.CanUint():
		var u uint64
		switch {
		case v.CanInt():
			i := v.Int()
			if i < 0 {
				return reflect.Value{}, false
			}
			u = uint64(i)
		case v.CanUint():
			u = v.Uint()
		default:
			f := v.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, false
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, false
		}
		out.SetUint(u)
	default:
		var f float64
		switch {
		case v.CanInt():
			f = float64(v.Int())
		case v.CanUint():
			f = float64(v.Uint())
		default:
			f = v.Float()
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
	}
	return out, true
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// MethodName converts a snake_case setter name to an exported Go method
// name. Names that are already CamelCase are returned unchanged.
func MethodName(setterName string) string {
	var sb strings.Builder
	upper := true
	for _, r := range setterName {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
