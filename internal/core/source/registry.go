package source

import (
	"fmt"
	"sort"
)

// Registry holds the configured descriptors by name. It is built once at
// startup and read-only afterwards.
type Registry struct {
	byName map[string]Descriptor
}

func NewRegistry(descriptors []Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate source %q", d.Name)
		}
		r.byName[d.Name] = d
	}
	return r, nil
}

func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

func (r *Registry) All() []Descriptor {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, r.byName[n])
	}
	return out
}
