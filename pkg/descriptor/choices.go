package descriptor

import (
	"fmt"
	"strings"
)

// Choice is one named member of an enum setting.
type Choice struct {
	Name  string
	Value any
}

// Choices is an ordered set of enum members.
type Choices []Choice

// Enumeration is implemented by types that can list their own members.
type Enumeration interface {
	Members() []Choice
}

// ChoicesOf builds choices from the members of an enumeration type.
// Each member's String form becomes the choice name.
func ChoicesOf[T fmt.Stringer](members ...T) Choices {
	c := make(Choices, 0, len(members))
	for _, m := range members {
		c = append(c, Choice{Name: m.String(), Value: m})
	}
	return c
}

// NamedChoices builds choices whose values are their names.
func NamedChoices(names ...string) Choices {
	c := make(Choices, 0, len(names))
	for _, n := range names {
		c = append(c, Choice{Name: n, Value: n})
	}
	return c
}

// Names returns the choice names in order.
func (c Choices) Names() []string {
	names := make([]string, len(c))
	for i, ch := range c {
		names[i] = ch.Name
	}
	return names
}

// Lookup returns the choice with the given name. Names are matched
// case-insensitively.
func (c Choices) Lookup(name string) (Choice, bool) {
	for _, ch := range c {
		if strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return Choice{}, false
}

// Match finds the choice whose value equals v, falling back to a name
// match when v is a string.
func (c Choices) Match(v any) (Choice, bool) {
	for _, ch := range c {
		if ch.Value == v {
			return ch, true
		}
	}
	if s, ok := v.(string); ok {
		return c.Lookup(s)
	}
	return Choice{}, false
}

// toChoices converts an annotation's raw choices option.
func toChoices(v any) (Choices, error) {
	switch c := v.(type) {
	case Choices:
		return append(Choices(nil), c...), nil
	case []Choice:
		return append(Choices(nil), c...), nil
	case Enumeration:
		return Choices(c.Members()), nil
	case []string:
		return NamedChoices(c...), nil
	case []any:
		out := make(Choices, 0, len(c))
		for _, item := range c {
			switch it := item.(type) {
			case string:
				out = append(out, Choice{Name: it, Value: it})
			case fmt.Stringer:
				out = append(out, Choice{Name: it.String(), Value: it})
			default:
				return nil, fmt.Errorf("%w: element %v (%T)", ErrInvalidChoices, item, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidChoices, v)
	}
}
