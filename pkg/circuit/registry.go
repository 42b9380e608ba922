package circuit

import "fmt"

// Registry is the ordered set of finalized modules available for
// instantiation. Module names are unique within a registry.
type Registry struct {
	modules []*Module
	byName  map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Module)}
}

// Add appends a module. Adding the same *Module twice is a no-op; adding a
// different module under a taken name fails with ErrDuplicateModule.
func (r *Registry) Add(m *Module) error {
	if existing, ok := r.byName[m.Name]; ok {
		if existing == m {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name)
	}
	r.modules = append(r.modules, m)
	r.byName[m.Name] = m
	return nil
}

// Merge appends every module of other, in order.
func (r *Registry) Merge(other *Registry) error {
	for _, m := range other.modules {
		if err := r.Add(m); err != nil {
			return err
		}
	}
	return nil
}

// Lookup finds a module by name.
func (r *Registry) Lookup(name string) (*Module, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Modules returns the modules in registration order.
func (r *Registry) Modules() []*Module {
	return r.modules
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.modules)
}
