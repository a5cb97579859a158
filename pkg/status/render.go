package status

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// String renders the snapshot as <TypeName a=1 b=2>, with properties in
// alphabetical order across the whole lineage. It never panics.
func (s *Snapshot) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(s.typ.name)

	props := s.typ.Properties()
	for _, name := range sortedNames(props) {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(s.renderProperty(props[name]))
	}

	sb.WriteString(">")
	return sb.String()
}

// renderProperty evaluates and formats one property, turning any failure
// into the failure's type name.
func (s *Snapshot) renderProperty(p *Property) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ErrorName(&PanicError{Property: p.name, Value: r})
		}
	}()

	v, err := s.eval(p)
	if err != nil {
		return ErrorName(err)
	}
	return FormatValue(v)
}

// ErrorName returns the short type name used to display a failed
// property: the outermost named error type in the Unwrap chain, without
// package path or pointer marker. Wrappers from errors.New and fmt.Errorf
// are skipped, and a chain made only of them renders as "error". A
// PanicError renders as the error it carries, or as "PanicError" when the
// panic value was not an error.
func ErrorName(err error) string {
	if err == nil {
		return "None"
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if pe, ok := e.(*PanicError); ok && pe.Unwrap() != nil {
			continue
		}
		if name := errorTypeName(e); name != "" {
			return name
		}
	}
	return "error"
}

func errorTypeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.PkgPath() {
	case "errors", "fmt":
		return ""
	}
	return t.Name()
}

// FormatValue renders a property value: nil as None, booleans as
// True/False, sequences as a bracketed list, and everything else in its
// default text form.
func FormatValue(v any) string {
	return formatValue(v, false)
}

func formatValue(v any, nested bool) string {
	if v == nil {
		return "None"
	}

	switch x := v.(type) {
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		if nested {
			return strconv.Quote(x)
		}
		return x
	case []byte:
		return fmt.Sprintf("0x%x", x)
	case error:
		return ErrorName(x)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "None"
		}
		return formatValue(rv.Elem().Interface(), nested)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "[]"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface(), true)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	return fmt.Sprint(v)
}
