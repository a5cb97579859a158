package status

import (
	"fmt"
	"sort"
	"sync"
)

var registry = struct {
	sync.RWMutex
	types map[string]*Type
}{types: make(map[string]*Type)}

// Register makes a type available by name to Lookup. Type names are
// unique process-wide.
func Register(t *Type) error {
	registry.Lock()
	defer registry.Unlock()

	if existing, ok := registry.types[t.name]; ok && existing != t {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.name)
	}
	registry.types[t.name] = t
	return nil
}

// RegisterAll registers types as one batch: if any name is already taken
// by a different type, or appears twice in the batch, none of them is
// registered.
func RegisterAll(types ...*Type) error {
	registry.Lock()
	defer registry.Unlock()

	batch := make(map[string]*Type, len(types))
	for _, t := range types {
		if existing, ok := registry.types[t.name]; ok && existing != t {
			return fmt.Errorf("%w: %s", ErrDuplicateType, t.name)
		}
		if other, ok := batch[t.name]; ok && other != t {
			return fmt.Errorf("%w: %s", ErrDuplicateType, t.name)
		}
		batch[t.name] = t
	}
	for name, t := range batch {
		registry.types[name] = t
	}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(t *Type) *Type {
	if err := Register(t); err != nil {
		panic(err)
	}
	return t
}

// Lookup returns a registered type by name.
func Lookup(name string) (*Type, bool) {
	registry.RLock()
	defer registry.RUnlock()
	t, ok := registry.types[name]
	return t, ok
}

// Registered returns the names of all registered types, sorted.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.types))
	for name := range registry.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
