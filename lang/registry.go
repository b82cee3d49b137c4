package lang

import (
	"maps"
	"slices"
)

// Registry is an immutable set of named builtins available to expressions,
// typically callables and module objects. Expressions can only call what the
// registry or the caller's environment provides.
//
// A nil *Registry is empty.
type Registry struct {
	entries map[string]Value
	names   []string
}

// NewRegistry returns a registry holding a copy of entries.
func NewRegistry(entries map[string]Value) *Registry {
	r := &Registry{entries: maps.Clone(entries)}
	if r.entries == nil {
		r.entries = map[string]Value{}
	}

	r.names = slices.Sorted(maps.Keys(r.entries))

	return r
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (Value, bool) {
	if r == nil {
		return None, false
	}

	v, ok := r.entries[name]

	return v, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	return slices.Clone(r.names)
}

// Len returns the number of registered builtins.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.entries)
}

// With returns a new registry extended with entries. Existing names are
// replaced.
func (r *Registry) With(entries map[string]Value) *Registry {
	merged := map[string]Value{}
	if r != nil {
		maps.Copy(merged, r.entries)
	}

	maps.Copy(merged, entries)

	return NewRegistry(merged)
}
